package pipeline

import "tweetstash/internal/domain"

// SplitBatches partitions bookmarks into contiguous batches of at most
// size elements, preserving order within and across batches. The last
// batch may be short. An empty input yields no batches; size must be
// positive (config validation guarantees it upstream).
func SplitBatches(bookmarks []domain.Bookmark, size int) [][]domain.Bookmark {
	if len(bookmarks) == 0 || size <= 0 {
		return nil
	}

	batches := make([][]domain.Bookmark, 0, (len(bookmarks)+size-1)/size)
	for start := 0; start < len(bookmarks); start += size {
		end := start + size
		if end > len(bookmarks) {
			end = len(bookmarks)
		}
		batches = append(batches, bookmarks[start:end:end])
	}
	return batches
}
