package domain

// Theme is a taxonomy bucket produced by the classification service.
//
// Name is the identity: themes are deduplicated by exact, case-sensitive
// name, and a bookmark's Theme field references a Theme by that name.
// Description and Color are whatever the first batch that reported the
// name said; later duplicates are discarded.
type Theme struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// Snapshot is the full persisted and exported shape of the archive:
// every bookmark plus the theme taxonomy, in stable order.
type Snapshot struct {
	Bookmarks []Bookmark `json:"bookmarks"`
	Themes    []Theme    `json:"themes"`
}
