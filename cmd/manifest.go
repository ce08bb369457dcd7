package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"curse-catalog/bundle"
	"curse-catalog/catalog"
	"curse-catalog/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// manifestCmd represents the manifest command
var manifestCmd = &cobra.Command{
	Use:   "manifest [fileID]",
	Short: "Prints the manifest of a modpack file",
	Long: `Finds the modpack that published the file, downloads the archive into
the file cache if needed and prints the mods listed in its manifest.json.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fileID, err := parseFileID(args[0])
		if err != nil {
			logger.Log.Fatalw("Invalid argument", zap.Error(err))
		}

		a := bootstrap(configDir)
		defer a.close()

		cat := a.loadCatalog(cmd.Context())
		err = printManifest(cmd.Context(), cmd.OutOrStdout(), cat, fileID, a.store, bundle.NewReader(logger.Log))
		if errors.Is(err, catalog.ErrNotBundle) {
			logger.Log.Fatalw("File does not belong to a modpack", zap.Error(err))
		} else if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		}
	},
}

func init() {
	rootCmd.AddCommand(manifestCmd)
}

func printManifest(ctx context.Context, w io.Writer, cat *catalog.Catalog, fileID int, artifacts catalog.Artifacts, entries catalog.EntryReader) error {
	m, ok, err := cat.ResolveManifest(ctx, fileID, artifacts, entries)
	if err != nil {
		return err
	}
	if !ok {
		return &catalog.NotFoundError{Resource: "manifest for file", ID: fileID}
	}

	fmt.Fprintf(w, "%s %s by %s (Minecraft %s)\n", m.Name, m.Version, m.Author, m.Minecraft.Version)
	for _, f := range m.Files {
		name := "?"
		if r, ok := cat.Record(f.ProjectID); ok {
			name = r.Name
		}
		required := ""
		if !f.Required {
			required = " (optional)"
		}
		fmt.Fprintf(w, "  %d\t%d\t%s%s\n", f.ProjectID, f.FileID, name, required)
	}
	return nil
}
