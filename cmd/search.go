package cmd

import (
	"curse-catalog/catalog"

	"github.com/spf13/cobra"
)

type searchOptions struct {
	sections   []string
	categories []string
	versions   []string
	name       string
	author     string
	limit      int
}

// filters returns the pipeline for the options. Index lookups come first so
// the name and author scans run over the smallest set.
func (o searchOptions) filters() []catalog.Filter {
	var fs []catalog.Filter
	for _, s := range o.sections {
		fs = append(fs, catalog.BySection(s))
	}
	for _, c := range o.categories {
		fs = append(fs, catalog.ByCategory(c))
	}
	for _, v := range o.versions {
		fs = append(fs, catalog.ByVersion(v))
	}
	if o.name != "" {
		fs = append(fs, catalog.ByName(o.name))
	}
	if o.author != "" {
		fs = append(fs, catalog.ByAuthor(o.author))
	}
	return fs
}

var searchOpts searchOptions

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Lists catalog records matching every given filter",
	Long: `Lists the records that satisfy all filters at once. Repeating a flag
narrows further, e.g. two --category flags keep records in both categories.

Example: curse-catalog search --section Mods --category Magic --version 1.12.2`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		a := bootstrap(configDir)
		defer a.close()

		cat := a.loadCatalog(cmd.Context())
		results := cat.FilterAll(searchOpts.filters(), nil)
		renderRecords(cmd.OutOrStdout(), results, searchOpts.limit)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringSliceVarP(&searchOpts.sections, "section", "s", nil, "Section name, exact match")
	searchCmd.Flags().StringSliceVarP(&searchOpts.categories, "category", "c", nil, "Category name, case-insensitive")
	searchCmd.Flags().StringSliceVarP(&searchOpts.versions, "version", "v", nil, "Game version, exact match")
	searchCmd.Flags().StringVarP(&searchOpts.name, "name", "n", "", "Substring of the record name")
	searchCmd.Flags().StringVarP(&searchOpts.author, "author", "a", "", "Substring of an author name")
	searchCmd.Flags().IntVarP(&searchOpts.limit, "limit", "l", 50, "Maximum rows to print, 0 for all")
}
