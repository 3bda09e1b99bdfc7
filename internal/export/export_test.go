package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweetstash/internal/domain"
)

func sampleSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Bookmarks: []domain.Bookmark{
			{
				ID: "bm-1", Text: "a thread on Go generics", Author: "alice",
				URL: "https://x.com/alice/status/1", Theme: "Go",
				Insight: "generics reduce duplication", Action: "refactor the helpers",
				IsLikelyThread: true,
			},
			{
				ID: "bm-2", Text: "still pending", Author: "bob",
				URL: "https://x.com/bob/status/2",
			},
			{
				ID: "bm-3", Text: "shipping beats planning", Author: "carol",
				URL: "https://x.com/carol/status/3", Theme: "Productivity",
				Insight: "ship early",
			},
		},
		Themes: []domain.Theme{
			{Name: "Go", Description: "Go language content", Color: "#00ADD8"},
			{Name: "Productivity", Description: "Getting things done", Color: "#FF6B6B"},
			{Name: "Unused", Description: "No bookmarks reference this", Color: "#CCCCCC"},
		},
	}
}

func TestWriteJSON_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	snap := sampleSnapshot()
	require.NoError(t, WriteJSON(&buf, snap))

	var decoded domain.Snapshot
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, snap, decoded)
}

func TestWriteDigest_GroupsByTheme(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDigest(&buf, sampleSnapshot()))
	digest := buf.String()

	assert.True(t, strings.HasPrefix(digest, "# Twitter Bookmarks Digest\n"))

	// Sections appear in taxonomy order.
	goIdx := strings.Index(digest, "## Go\n")
	prodIdx := strings.Index(digest, "## Productivity\n")
	require.NotEqual(t, -1, goIdx)
	require.NotEqual(t, -1, prodIdx)
	assert.Less(t, goIdx, prodIdx)

	assert.Contains(t, digest, "Go language content")
	assert.Contains(t, digest, "### alice")
	assert.Contains(t, digest, "**Key Insight:** generics reduce duplication")
	assert.Contains(t, digest, "**Action Step:** refactor the helpers")
	assert.Contains(t, digest, "*Likely a thread - check the full conversation*")
	assert.Contains(t, digest, "[View Tweet](https://x.com/alice/status/1)")

	// carol has no action and no thread marker; her section must not
	// invent them.
	assert.Contains(t, digest, "### carol")
	assert.Contains(t, digest, "**Key Insight:** ship early")

	// Unthemed bookmarks and empty themes are omitted.
	assert.NotContains(t, digest, "still pending")
	assert.NotContains(t, digest, "## Unused")
}

func TestWriteDigest_EmptyArchive(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDigest(&buf, domain.Snapshot{}))
	assert.Equal(t, "# Twitter Bookmarks Digest\n\n", buf.String())
}
