package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var configDir string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "curse-catalog",
	Short: "Browse and query the CurseForge mod catalog offline",
	Long: `curse-catalog downloads the CurseForge snapshot feed (complete, weekly,
daily and hourly tiers), caches it locally and answers queries against the
merged catalog: sections, categories, game versions, file owners and
modpack manifests.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if len(os.Args) == 1 {
		rootCmd.SetArgs([]string{defaultCmd.Use})
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory containing the .env configuration file")
}
