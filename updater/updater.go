// Package updater keeps the cached snapshot tiers current and assembles the
// merged catalog from them.
package updater

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"curse-catalog/cache"
	"curse-catalog/catalog"
	"curse-catalog/feed"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Feed is the remote side of a refresh. *feed.Client satisfies it.
type Feed interface {
	LatestVersion(ctx context.Context, tier feed.Tier) (int64, error)
	DownloadSnapshot(ctx context.Context, tier feed.Tier, version int64) ([]byte, error)
}

// Cache is the local side of a refresh. *cache.Store satisfies it.
type Cache interface {
	CachedVersion(tier feed.Tier) (int64, bool)
	SaveSnapshot(tier feed.Tier, version int64, data []byte) error
	LoadSnapshot(tier feed.Tier, opts ...catalog.Option) (*catalog.Catalog, error)
}

// EventType classifies a Progress event.
type EventType string

const (
	EventStatus          EventType = "status"
	EventCheck           EventType = "check"
	EventUpToDate        EventType = "up_to_date"
	EventDownloadStart   EventType = "download_start"
	EventDownloadSuccess EventType = "download_success"
	EventError           EventType = "error"
	EventSummary         EventType = "summary"
)

// Progress reports what a refresh is doing.
type Progress struct {
	Type    EventType
	Tier    feed.Tier
	Version int64
	Message string
}

// Result is the outcome of refreshing one tier.
type Result struct {
	Tier    feed.Tier
	Version int64
	Updated bool
	Err     error
}

// Summary collects the results of a refresh in the order the tiers were given.
type Summary struct {
	Results []Result
}

// Updated returns the number of tiers that were downloaded.
func (s Summary) Updated() int {
	n := 0
	for _, r := range s.Results {
		if r.Updated {
			n++
		}
	}
	return n
}

// Failed returns the number of tiers that could not be refreshed.
func (s Summary) Failed() int {
	n := 0
	for _, r := range s.Results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

func (s Summary) String() string {
	return fmt.Sprintf("Finished. Refreshed %d of %d tiers, %d failed.", s.Updated(), len(s.Results), s.Failed())
}

// Updater refreshes tiers from a Feed into a Cache.
type Updater struct {
	feed  Feed
	cache Cache
	log   *zap.SugaredLogger

	progress    chan<- Progress
	catalogOpts []catalog.Option
	parallel    int
}

// Option configures an Updater.
type Option func(*Updater)

// WithProgress sends Progress events to ch. Sends block, so ch must be drained.
func WithProgress(ch chan<- Progress) Option {
	return func(u *Updater) { u.progress = ch }
}

// WithCatalogOptions passes opts to every catalog the Updater loads.
func WithCatalogOptions(opts ...catalog.Option) Option {
	return func(u *Updater) { u.catalogOpts = append(u.catalogOpts, opts...) }
}

// WithParallelism bounds the number of tiers refreshed at once.
func WithParallelism(n int) Option {
	return func(u *Updater) {
		if n > 0 {
			u.parallel = n
		}
	}
}

// New returns an Updater.
func New(f Feed, c Cache, log *zap.SugaredLogger, opts ...Option) *Updater {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	u := &Updater{
		feed:     f,
		cache:    c,
		log:      log,
		parallel: len(feed.Tiers()),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *Updater) emit(p Progress) {
	if u.progress != nil {
		u.progress <- p
	}
}

// Refresh downloads every tier whose published version differs from the
// cached one, or every tier when force is set. Tiers are refreshed
// concurrently; a failing tier does not stop the others. The returned error
// is the first tier failure, if any.
func (u *Updater) Refresh(ctx context.Context, tiers []feed.Tier, force bool) (Summary, error) {
	summary := Summary{Results: make([]Result, len(tiers))}

	u.emit(Progress{Type: EventStatus, Message: fmt.Sprintf("Checking %d snapshot tiers...", len(tiers))})

	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	g.SetLimit(u.parallel)

	for i, tier := range tiers {
		g.Go(func() error {
			res := u.refreshTier(ctx, tier, force)

			mu.Lock()
			summary.Results[i] = res
			mu.Unlock()

			if res.Err != nil {
				return fmt.Errorf("%s: %w", tier, res.Err)
			}
			return nil
		})
	}

	err := g.Wait()

	u.log.Infow(summary.String())
	u.emit(Progress{Type: EventSummary, Message: summary.String()})
	return summary, err
}

func (u *Updater) refreshTier(ctx context.Context, tier feed.Tier, force bool) Result {
	log := u.log.With(zap.String("tier", tier.String()))
	res := Result{Tier: tier}

	fail := func(err error) Result {
		log.Errorw("Failed to refresh tier", zap.Error(err))
		u.emit(Progress{Type: EventError, Tier: tier, Message: err.Error()})
		res.Err = err
		return res
	}

	u.emit(Progress{Type: EventCheck, Tier: tier})

	latest, err := u.feed.LatestVersion(ctx, tier)
	if err != nil {
		return fail(err)
	}
	res.Version = latest

	cached, ok := u.cache.CachedVersion(tier)
	if ok && cached == latest && !force {
		log.Infow("Tier is already up to date", zap.Int64("version", cached))
		u.emit(Progress{Type: EventUpToDate, Tier: tier, Version: cached})
		return res
	}

	if ok && !force {
		log.Infow("Update available", zap.Int64("current_version", cached), zap.Int64("new_version", latest))
	}

	u.emit(Progress{Type: EventDownloadStart, Tier: tier, Version: latest})
	data, err := u.feed.DownloadSnapshot(ctx, tier, latest)
	if err != nil {
		return fail(err)
	}
	if err := u.cache.SaveSnapshot(tier, latest, data); err != nil {
		return fail(err)
	}

	res.Updated = true
	u.emit(Progress{Type: EventDownloadSuccess, Tier: tier, Version: latest})
	return res
}

// Load opens the cached complete snapshot, merges the other cached tiers on
// top of it in tier order and indexes the result. Tiers that are missing or
// unreadable are skipped; the complete tier is required.
func (u *Updater) Load(ctx context.Context) (*catalog.Catalog, error) {
	base, err := u.cache.LoadSnapshot(feed.Complete, u.catalogOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s snapshot: %w", feed.Complete, err)
	}

	for _, tier := range feed.Tiers() {
		if tier == feed.Complete {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next, err := u.cache.LoadSnapshot(tier, u.catalogOpts...)
		if errors.Is(err, cache.ErrNoSnapshot) {
			u.log.Debugw("Tier not cached, skipping", zap.String("tier", tier.String()))
			continue
		}
		if err != nil {
			u.log.Warnw("Skipping unreadable tier", zap.String("tier", tier.String()), zap.Error(err))
			continue
		}

		if !base.Merge(next) {
			u.log.Infow("Tier is older than the catalog, ignored",
				zap.String("tier", tier.String()),
				zap.Int64("tier_version", next.Timestamp()),
				zap.Int64("catalog_version", base.Timestamp()),
			)
		}
	}

	base.Reindex()
	return base, nil
}
