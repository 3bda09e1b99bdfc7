package domain

import "time"

// Engagement holds the public interaction counters captured at import time.
type Engagement struct {
	Likes    int `json:"likes"`
	Retweets int `json:"retweets"`
	Replies  int `json:"replies"`
}

// Bookmark represents a single saved post in the archive.
//
// The ID is the sole identity key: import deduplicates on it and the
// enrichment pipeline matches classification results back to it.
type Bookmark struct {
	// Source fields, set at import and never touched afterwards.
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	Author     string     `json:"author"`
	URL        string     `json:"url"`
	Date       time.Time  `json:"date"`
	Engagement Engagement `json:"engagement"`

	// Enrichment fields, absent until the bookmark has been analyzed.
	// They are always written together as a group, never one at a time.
	Theme          string `json:"theme,omitempty"`
	Insight        string `json:"insight,omitempty"`
	Action         string `json:"action,omitempty"`
	IsLikelyThread bool   `json:"isLikelyThread,omitempty"`
}

// Analyzed reports whether the bookmark has been enriched by a
// classification run. Insight is the marker field: a successful merge
// sets the whole enrichment group at once, so a bookmark with no
// insight is still pending.
func (b Bookmark) Analyzed() bool {
	return b.Insight != ""
}

// Pending reports whether the bookmark still awaits enrichment.
func (b Bookmark) Pending() bool {
	return !b.Analyzed()
}
