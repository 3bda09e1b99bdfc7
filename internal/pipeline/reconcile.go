package pipeline

import (
	"tweetstash/internal/classify"
	"tweetstash/internal/domain"
)

// MergeAnnotations applies a batch's classification result to the
// original bookmarks. For each bookmark the matching annotation (by ID)
// overwrites the whole enrichment group at once; fields the service
// omitted become explicit zero values, never stale leftovers. Bookmarks
// the service did not mention pass through unchanged and stay pending.
func MergeAnnotations(batch []domain.Bookmark, annotations []classify.Annotation) []domain.Bookmark {
	byID := make(map[string]classify.Annotation, len(annotations))
	for _, a := range annotations {
		byID[a.ID] = a
	}

	out := make([]domain.Bookmark, 0, len(batch))
	for _, b := range batch {
		a, ok := byID[b.ID]
		if !ok {
			out = append(out, b)
			continue
		}
		b.Theme = a.Theme
		b.Insight = a.Insight
		b.Action = a.Action
		b.IsLikelyThread = a.IsLikelyThread
		out = append(out, b)
	}
	return out
}

// taxonomy accumulates new themes across the batches of a run,
// deduplicating by exact name against both the persisted taxonomy and
// themes seen earlier in the same run. First writer wins: a later batch
// reporting an existing name is discarded, description and all.
type taxonomy struct {
	seen     map[string]struct{}
	reported map[string]struct{}
	added    []domain.Theme
}

func newTaxonomy(existing []domain.Theme) *taxonomy {
	seen := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		seen[t.Name] = struct{}{}
	}
	return &taxonomy{seen: seen, reported: make(map[string]struct{})}
}

// add records themes not seen before, preserving first-appearance order.
func (tx *taxonomy) add(themes []domain.Theme) {
	for _, t := range themes {
		tx.reported[t.Name] = struct{}{}
		if _, ok := tx.seen[t.Name]; ok {
			continue
		}
		tx.seen[t.Name] = struct{}{}
		tx.added = append(tx.added, t)
	}
}

// distinct returns how many distinct theme names the run produced,
// whether or not they were already in the taxonomy.
func (tx *taxonomy) distinct() int {
	return len(tx.reported)
}
