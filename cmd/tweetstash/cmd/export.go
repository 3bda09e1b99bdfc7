package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tweetstash/internal/export"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export {json|digest}",
	Short: "Export the archive as a JSON snapshot or a markdown digest",
	Long: `Export writes the archive to stdout (or a file with -o).

  json    raw snapshot of all bookmarks and themes
  digest  markdown digest of analyzed bookmarks grouped by theme`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "digest"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var w io.Writer = os.Stdout
		if exportOutput != "" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", exportOutput, err)
			}
			defer f.Close()
			w = f
		}

		snap := store.Snapshot()
		switch args[0] {
		case "json":
			return export.WriteJSON(w, snap)
		case "digest":
			return export.WriteDigest(w, snap)
		default:
			return fmt.Errorf("unknown export format %q (want json or digest)", args[0])
		}
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to a file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}
