package cmd

import (
	"fmt"
	"io"

	"curse-catalog/catalog"
	"curse-catalog/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ownerCmd represents the owner command
var ownerCmd = &cobra.Command{
	Use:   "owner [fileID]",
	Short: "Shows the project that published a file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fileID, err := parseFileID(args[0])
		if err != nil {
			logger.Log.Fatalw("Invalid argument", zap.Error(err))
		}

		a := bootstrap(configDir)
		defer a.close()

		if err := printOwner(cmd.OutOrStdout(), a.loadCatalog(cmd.Context()), fileID); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		}
	},
}

func init() {
	rootCmd.AddCommand(ownerCmd)
}

func printOwner(w io.Writer, cat *catalog.Catalog, fileID int) error {
	owner, ok := cat.OwnerOf(fileID)
	if !ok {
		return &catalog.NotFoundError{Resource: "file", ID: fileID}
	}
	fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", owner.ID, owner.Name, owner.Slug(), owner.Section())
	return nil
}
