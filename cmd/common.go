package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"curse-catalog/cache"
	"curse-catalog/catalog"
	"curse-catalog/config"
	"curse-catalog/db"
	"curse-catalog/feed"
	"curse-catalog/logger"
	"curse-catalog/ui"
	"curse-catalog/updater"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.uber.org/zap"
)

// app bundles what every command needs after bootstrap.
type app struct {
	cfg     config.Config
	client  *feed.Client
	store   *cache.Store
	updater *updater.Updater
}

// bootstrap handles shared initialization logic for commands.
func bootstrap(path string, updaterOpts ...updater.Option) *app {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logger.Log.Fatalw("Failed to load configuration", zap.Error(err))
	}

	conn, err := db.Open(cfg.DatabasePath)
	if err != nil {
		logger.Log.Fatalw("Failed to open database", zap.Error(err))
	}
	logger.Log.Infow("Database initialized", zap.String("path", cfg.DatabasePath))

	client, err := feed.NewClient(cfg, logger.Log)
	if err != nil {
		logger.Log.Fatalw("Failed to create feed client", zap.Error(err))
	}

	store, err := cache.NewStore(cache.PathsFromConfig(cfg), conn, client, logger.Log)
	if err != nil {
		logger.Log.Fatalw("Failed to open cache", zap.Error(err))
	}
	store.KeepOldSnapshots = cfg.KeepOldSnapshots

	if n, err := store.Scan(); err != nil {
		logger.Log.Warnw("Failed to scan file cache", zap.Error(err))
	} else if n > 0 {
		logger.Log.Infow("Registered files found in cache", zap.Int("count", n))
	}

	opts := append([]updater.Option{
		updater.WithCatalogOptions(
			catalog.WithLogger(logger.Log),
			catalog.WithBundleSection(cfg.BundleSection),
		),
	}, updaterOpts...)

	return &app{
		cfg:     cfg,
		client:  client,
		store:   store,
		updater: updater.New(client, store, logger.Log, opts...),
	}
}

// loadCatalog returns the merged, indexed catalog, downloading the snapshot
// tiers first if nothing is cached yet.
func (a *app) loadCatalog(ctx context.Context) *catalog.Catalog {
	cat, err := a.updater.Load(ctx)
	if errors.Is(err, cache.ErrNoSnapshot) {
		logger.Log.Info("No cached snapshot, syncing first...")
		if _, err := a.updater.Refresh(ctx, feed.Tiers(), false); err != nil {
			logger.Log.Warnw("Sync finished with errors", zap.Error(err))
		}
		cat, err = a.updater.Load(ctx)
	}
	if err != nil {
		logger.Log.Fatalw("Failed to load catalog", zap.Error(err))
	}
	return cat
}

func (a *app) close() {
	a.store.Close()
}

// parseTiers converts tier names to tiers; no names means every tier.
func parseTiers(names []string) ([]feed.Tier, error) {
	if len(names) == 0 {
		return feed.Tiers(), nil
	}
	tiers := make([]feed.Tier, 0, len(names))
	seen := map[feed.Tier]bool{}
	for _, name := range names {
		tier, err := feed.ParseTier(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		if !seen[tier] {
			seen[tier] = true
			tiers = append(tiers, tier)
		}
	}
	return tiers, nil
}

func parseFileID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid file id %q", arg)
	}
	return id, nil
}

// renderRecords prints records as a table, at most limit rows when limit > 0.
func renderRecords(w io.Writer, records []*catalog.Record, limit int) {
	shown := records
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	rows := make([][]string, 0, len(shown))
	for _, r := range shown {
		rows = append(rows, []string{
			strconv.Itoa(r.ID),
			truncate(r.Name, 40),
			truncate(r.PrimaryAuthorName, 20),
			r.Section(),
			truncate(r.PrimaryCategoryName, 24),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "AUTHOR", "SECTION", "CATEGORY").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return ui.TitleStyle
			}
			if row >= 0 && row < len(rows) && col == 3 {
				return lipgloss.NewStyle().Foreground(lipgloss.Color(fmt.Sprintf("#%06x", ui.SectionColor(rows[row][3]))))
			}
			return lipgloss.NewStyle()
		})

	fmt.Fprintln(w, t.Render())
	if len(shown) < len(records) {
		fmt.Fprintln(w, ui.MutedStyle.Render(fmt.Sprintf("%d of %d records shown", len(shown), len(records))))
	} else {
		fmt.Fprintf(w, "%d records\n", len(records))
	}
}

// truncate shortens s to maxLen runes, ending in "..." when cut.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:max(maxLen-3, 0)]) + "..."
}
