package cmd

import (
	"errors"
	"fmt"

	"curse-catalog/cache"
	"curse-catalog/feed"
	"curse-catalog/logger"
	"curse-catalog/ui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rollbackCmd represents the rollback command
var rollbackCmd = &cobra.Command{
	Use:   "rollback [tier]",
	Short: "Restores the previous snapshot of a tier",
	Long: `Restores the most recently archived snapshot of a tier.
Example: curse-catalog rollback hourly

Archives only exist for syncs run with KEEP_OLD_SNAPSHOTS=true. The current
snapshot of the tier is discarded.`,
	Args: cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		tier, err := feed.ParseTier(args[0])
		if err != nil {
			logger.Log.Fatalw("Invalid tier", zap.Error(err))
		}
		rollbackTier(tier)
	},
}

func init() {
	rootCmd.AddCommand(rollbackCmd)
}

// rollbackTier handles the rollback process for a specific tier
func rollbackTier(tier feed.Tier) {
	a := bootstrap(configDir)
	defer a.close()

	log := logger.Log.With(zap.String("tier", tier.String()))

	current, hasCurrent := a.store.CachedVersion(tier)
	log.Infow("Attempting rollback", zap.Int64("current_version", current))

	restored, err := a.store.Rollback(tier)
	if errors.Is(err, cache.ErrNoArchive) {
		log.Warnw("No archived snapshot to restore", zap.Error(err))
		fmt.Printf("No archived snapshot for %s\n", tier)
		return
	}
	if err != nil {
		log.Fatalw("Rollback failed", zap.Error(err))
	}

	log.Infow(ui.Colorize("Rollback successful", ui.SectionColor(tier.String())),
		zap.Int64("restored_version", restored),
	)

	if hasCurrent {
		fmt.Printf("Successfully rolled back %s from %d to %d\n", tier, current, restored)
	} else {
		fmt.Printf("Successfully restored %s at version %d\n", tier, restored)
	}
}
