package cmd

import (
	"context"
	"fmt"

	"curse-catalog/logger"
	"curse-catalog/updater"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type syncOptions struct {
	force bool
	tiers []string
}

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Downloads new snapshot tiers into the local cache",
	Long: `Asks the feed for the latest version of each snapshot tier and downloads
every tier that changed since the last sync. Tiers are refreshed concurrently.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger.Log.Info("Running sync command...")

		force, _ := cmd.Flags().GetBool("force")
		tiers, _ := cmd.Flags().GetStringSlice("tier")
		useTUI, _ := cmd.Flags().GetBool("tui")

		opts := syncOptions{force: force, tiers: tiers}
		if useTUI {
			runSyncTUI(cmd.Context(), opts)
			return
		}
		runSync(cmd.Context(), opts, nil)
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().BoolP("force", "f", false, "Redownload tiers even when the cached version is current")
	syncCmd.Flags().StringSliceP("tier", "t", nil, "Tiers to refresh (complete, weekly, daily, hourly); default all")
	syncCmd.Flags().Bool("tui", false, "Show progress in an interactive view")
}

// runSync refreshes the requested tiers. Progress events go to progress when
// it is non-nil; the channel is not closed.
func runSync(ctx context.Context, opts syncOptions, progress chan<- updater.Progress) updater.Summary {
	tiers, err := parseTiers(opts.tiers)
	if err != nil {
		logger.Log.Fatalw("Invalid tier", zap.Error(err))
	}

	var updaterOpts []updater.Option
	if progress != nil {
		updaterOpts = append(updaterOpts, updater.WithProgress(progress))
	}

	a := bootstrap(configDir, updaterOpts...)
	defer a.close()

	logger.Log.Infof("Checking %d tiers on %s...", len(tiers), a.cfg.CurseHost)

	summary, err := a.updater.Refresh(ctx, tiers, opts.force)
	if err != nil {
		logger.Log.Warnw("Sync finished with errors", zap.Error(err))
	}

	if progress == nil {
		for _, r := range summary.Results {
			switch {
			case r.Err != nil:
				fmt.Printf("%-9s failed: %v\n", r.Tier, r.Err)
			case r.Updated:
				fmt.Printf("%-9s updated to %d\n", r.Tier, r.Version)
			default:
				fmt.Printf("%-9s up to date (%d)\n", r.Tier, r.Version)
			}
		}
		fmt.Println(summary)
	}
	return summary
}

func runSyncTUI(ctx context.Context, opts syncOptions) {
	p := tea.NewProgram(initialSyncModel(ctx, opts))
	if _, err := p.Run(); err != nil {
		logger.Log.Fatalw("Failed to run sync view", zap.Error(err))
	}
}
