package cmd

import (
	"fmt"
	"io"

	"curse-catalog/catalog"
	"curse-catalog/ui"

	"github.com/spf13/cobra"
)

// listCommand builds a command that prints one catalog key set, one per line.
func listCommand(use, short string, keys func(*catalog.Catalog) []string, colored bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			a := bootstrap(configDir)
			defer a.close()

			printKeys(cmd.OutOrStdout(), keys(a.loadCatalog(cmd.Context())), colored)
		},
	}
}

func printKeys(w io.Writer, keys []string, colored bool) {
	for _, k := range keys {
		if colored {
			k = ui.Colorize(k, ui.SectionColor(k))
		}
		fmt.Fprintln(w, k)
	}
}

func init() {
	rootCmd.AddCommand(
		listCommand("sections", "Lists every section, sorted", (*catalog.Catalog).Sections, true),
		listCommand("categories", "Lists every category, sorted", (*catalog.Catalog).Categories, false),
		listCommand("versions", "Lists every game version, oldest first", (*catalog.Catalog).SortedVersions, false),
	)
}
