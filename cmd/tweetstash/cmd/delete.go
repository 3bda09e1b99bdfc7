package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete bookmarks from the archive by id",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deleted := store.DeleteBookmarks(args)
		if deleted == 0 {
			fmt.Println("No matching bookmarks found.")
			return nil
		}
		if err := commit(); err != nil {
			return err
		}
		fmt.Printf("Deleted %d bookmarks, %d remain.\n", deleted, store.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
