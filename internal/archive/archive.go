package archive

import (
	"sync"

	"github.com/sirupsen/logrus"

	"tweetstash/internal/domain"
)

// Store is the in-memory archive of bookmarks and themes.
//
// Bookmarks keep their insertion order; themes keep the order of first
// appearance. The store is the single mutable surface of the system:
// the pipeline, the importer and the CLI all go through it, and the
// persistence layer serializes whatever Snapshot() returns. A mutex
// guards every operation, but callers are expected to serialize whole
// analysis runs themselves (one run at a time per store).
type Store struct {
	mu        sync.Mutex
	bookmarks []domain.Bookmark
	index     map[string]int // bookmark ID -> position in bookmarks
	themes    []domain.Theme
	themeSet  map[string]struct{}
	log       logrus.FieldLogger
}

// NewStore creates an empty archive store.
func NewStore(logger logrus.FieldLogger) *Store {
	return &Store{
		index:    make(map[string]int),
		themeSet: make(map[string]struct{}),
		log:      logger.WithField("component", "archive"),
	}
}

// Load replaces the store contents with the given snapshot. Used once
// at startup with whatever the persistence layer returns.
func (s *Store) Load(snap domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bookmarks = make([]domain.Bookmark, 0, len(snap.Bookmarks))
	s.index = make(map[string]int, len(snap.Bookmarks))
	s.themes = make([]domain.Theme, 0, len(snap.Themes))
	s.themeSet = make(map[string]struct{}, len(snap.Themes))

	for _, b := range snap.Bookmarks {
		if _, ok := s.index[b.ID]; ok {
			continue // corrupt snapshot, keep the first occurrence
		}
		s.index[b.ID] = len(s.bookmarks)
		s.bookmarks = append(s.bookmarks, b)
	}
	for _, t := range snap.Themes {
		if _, ok := s.themeSet[t.Name]; ok {
			continue
		}
		s.themeSet[t.Name] = struct{}{}
		s.themes = append(s.themes, t)
	}

	s.log.WithFields(logrus.Fields{
		"bookmarks": len(s.bookmarks),
		"themes":    len(s.themes),
	}).Info("Archive loaded")
}

// Snapshot returns a copy of the full archive state.
func (s *Store) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := domain.Snapshot{
		Bookmarks: make([]domain.Bookmark, len(s.bookmarks)),
		Themes:    make([]domain.Theme, len(s.themes)),
	}
	copy(snap.Bookmarks, s.bookmarks)
	copy(snap.Themes, s.themes)
	return snap
}

// Bookmarks returns a copy of all bookmarks in insertion order.
func (s *Store) Bookmarks() []domain.Bookmark {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Bookmark, len(s.bookmarks))
	copy(out, s.bookmarks)
	return out
}

// Pending returns the bookmarks that have not been enriched yet.
func (s *Store) Pending() []domain.Bookmark {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Bookmark
	for _, b := range s.bookmarks {
		if b.Pending() {
			out = append(out, b)
		}
	}
	return out
}

// Themes returns a copy of the taxonomy in first-appearance order.
func (s *Store) Themes() []domain.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Theme, len(s.themes))
	copy(out, s.themes)
	return out
}

// Get looks up a bookmark by ID.
func (s *Store) Get(id string) (domain.Bookmark, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return domain.Bookmark{}, false
	}
	return s.bookmarks[pos], true
}

// Len returns the number of bookmarks in the archive.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookmarks)
}

// AddBookmarks inserts bookmarks whose IDs are not present yet and
// returns how many were added. Existing bookmarks are never overwritten
// by an import, only new IDs are appended.
func (s *Store) AddBookmarks(bookmarks []domain.Bookmark) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, b := range bookmarks {
		if _, ok := s.index[b.ID]; ok {
			continue
		}
		s.index[b.ID] = len(s.bookmarks)
		s.bookmarks = append(s.bookmarks, b)
		added++
	}
	return added
}

// ApplyRun merges the output of an analysis run into the archive in a
// single logical step: bookmarks are updated in place by ID (unknown
// IDs are appended), and themes not yet present by name extend the
// taxonomy. Re-applying the same run output is a no-op.
func (s *Store) ApplyRun(bookmarks []domain.Bookmark, themes []domain.Theme) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range bookmarks {
		if pos, ok := s.index[b.ID]; ok {
			s.bookmarks[pos] = b
			continue
		}
		s.index[b.ID] = len(s.bookmarks)
		s.bookmarks = append(s.bookmarks, b)
	}
	for _, t := range themes {
		if _, ok := s.themeSet[t.Name]; ok {
			continue
		}
		s.themeSet[t.Name] = struct{}{}
		s.themes = append(s.themes, t)
	}
}

// DeleteBookmarks removes the given IDs from the archive and returns
// how many were actually deleted. Themes are left alone even if they
// become unreferenced.
func (s *Store) DeleteBookmarks(ids []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	kept := s.bookmarks[:0]
	deleted := 0
	for _, b := range s.bookmarks {
		if _, ok := drop[b.ID]; ok {
			deleted++
			continue
		}
		kept = append(kept, b)
	}
	s.bookmarks = kept

	s.index = make(map[string]int, len(s.bookmarks))
	for i, b := range s.bookmarks {
		s.index[b.ID] = i
	}

	if deleted > 0 {
		s.log.WithField("deleted", deleted).Info("Bookmarks deleted from archive")
	}
	return deleted
}
