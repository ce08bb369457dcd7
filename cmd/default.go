package cmd

import (
	"github.com/spf13/cobra"
)

// defaultCmd represents the command that runs when no subcommand is specified
var defaultCmd = &cobra.Command{
	Use:    "default",
	Short:  "Default command when no subcommand is provided",
	Long:   `Refreshes every snapshot tier, the same as running sync without flags.`,
	Hidden: true,
	Run: func(cmd *cobra.Command, args []string) {
		runSync(cmd.Context(), syncOptions{}, nil)
	},
}

func init() {
	rootCmd.AddCommand(defaultCmd)
}
