package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"tweetstash/internal/domain"
)

var (
	listTheme  string
	listSearch string
	listSort   string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Browse and filter the archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		bookmarks := filterBookmarks(store.Bookmarks(), listTheme, listSearch)
		if err := sortBookmarks(bookmarks, listSort); err != nil {
			return err
		}

		if len(bookmarks) == 0 {
			fmt.Println("No bookmarks match.")
			return nil
		}

		for _, b := range bookmarks {
			status := "pending"
			if b.Analyzed() {
				status = b.Theme
			}
			text := b.Text
			if len(text) > 80 {
				text = text[:80] + "..."
			}
			fmt.Printf("%s  [%s]  @%s  %s\n", b.ID, status, b.Author, text)
		}
		fmt.Printf("\n%d bookmarks (%d pending), %d themes.\n",
			len(bookmarks), countPending(bookmarks), len(store.Themes()))
		return nil
	},
}

// filterBookmarks applies theme and free-text filters. The search is
// case-insensitive over text and author, matching the original browse
// behavior.
func filterBookmarks(bookmarks []domain.Bookmark, theme, search string) []domain.Bookmark {
	query := strings.ToLower(search)
	var out []domain.Bookmark
	for _, b := range bookmarks {
		if theme != "" && b.Theme != theme {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(b.Text), query) &&
			!strings.Contains(strings.ToLower(b.Author), query) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func sortBookmarks(bookmarks []domain.Bookmark, by string) error {
	switch by {
	case "date":
		sort.SliceStable(bookmarks, func(i, j int) bool {
			return bookmarks[i].Date.After(bookmarks[j].Date)
		})
	case "author":
		sort.SliceStable(bookmarks, func(i, j int) bool {
			return bookmarks[i].Author < bookmarks[j].Author
		})
	case "theme":
		sort.SliceStable(bookmarks, func(i, j int) bool {
			return bookmarks[i].Theme < bookmarks[j].Theme
		})
	case "":
		// keep archive order
	default:
		return fmt.Errorf("unknown sort key %q (want date, author or theme)", by)
	}
	return nil
}

func countPending(bookmarks []domain.Bookmark) int {
	n := 0
	for _, b := range bookmarks {
		if b.Pending() {
			n++
		}
	}
	return n
}

func init() {
	listCmd.Flags().StringVar(&listTheme, "theme", "", "only show bookmarks with this exact theme")
	listCmd.Flags().StringVar(&listSearch, "search", "", "case-insensitive search over text and author")
	listCmd.Flags().StringVar(&listSort, "sort", "", "sort by date, author or theme")
	rootCmd.AddCommand(listCmd)
}
