// Package export renders the archive for consumption outside the
// application: a raw JSON snapshot, or a markdown digest grouped by
// theme. Both are read-only over the archive.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"tweetstash/internal/domain"
)

// WriteJSON writes the archive snapshot as indented JSON.
func WriteJSON(w io.Writer, snap domain.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal archive: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// WriteDigest writes a markdown digest of the archive, one section per
// theme in taxonomy order. Themes with no bookmarks are omitted;
// bookmarks without a theme do not appear in the digest.
func WriteDigest(w io.Writer, snap domain.Snapshot) error {
	byTheme := make(map[string][]domain.Bookmark)
	for _, b := range snap.Bookmarks {
		if b.Theme == "" {
			continue
		}
		byTheme[b.Theme] = append(byTheme[b.Theme], b)
	}

	if _, err := fmt.Fprint(w, "# Twitter Bookmarks Digest\n\n"); err != nil {
		return err
	}

	for _, theme := range snap.Themes {
		bookmarks := byTheme[theme.Name]
		if len(bookmarks) == 0 {
			continue
		}

		fmt.Fprintf(w, "## %s\n\n", theme.Name)
		if theme.Description != "" {
			fmt.Fprintf(w, "%s\n\n", theme.Description)
		}

		for _, b := range bookmarks {
			fmt.Fprintf(w, "### %s\n", b.Author)
			fmt.Fprintf(w, "%s\n\n", b.Text)
			if b.Insight != "" {
				fmt.Fprintf(w, "**Key Insight:** %s\n\n", b.Insight)
			}
			if b.Action != "" {
				fmt.Fprintf(w, "**Action Step:** %s\n\n", b.Action)
			}
			if b.IsLikelyThread {
				fmt.Fprint(w, "*Likely a thread - check the full conversation*\n\n")
			}
			fmt.Fprintf(w, "[View Tweet](%s)\n\n", b.URL)
			if _, err := fmt.Fprint(w, "---\n\n"); err != nil {
				return fmt.Errorf("failed to write digest: %w", err)
			}
		}
	}

	return nil
}
