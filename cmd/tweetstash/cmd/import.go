package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tweetstash/internal/importer"
)

var importFromClipboard bool

var importCmd = &cobra.Command{
	Use:   "import [file.json]",
	Short: "Import bookmarks from a JSON file or the clipboard",
	Long: `Import reads a JSON array of bookmark records and merges it into the
archive. Records whose id already exists are skipped; import never
overwrites an existing bookmark.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		imp := importer.New(store, log)

		var res importer.Result
		var err error
		switch {
		case importFromClipboard:
			if len(args) > 0 {
				return fmt.Errorf("--clipboard and a file argument are mutually exclusive")
			}
			res, err = imp.FromClipboard()
		case len(args) == 1:
			res, err = imp.FromFile(args[0])
		default:
			return fmt.Errorf("provide a file to import, or --clipboard")
		}
		if err != nil {
			return err
		}

		if err := commit(); err != nil {
			return err
		}

		fmt.Printf("Imported %d bookmarks (%d duplicates skipped), archive now holds %d.\n",
			res.Imported, res.Skipped, store.Len())
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&importFromClipboard, "clipboard", false, "read the JSON array from the system clipboard")
	rootCmd.AddCommand(importCmd)
}
