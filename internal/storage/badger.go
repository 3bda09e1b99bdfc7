package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"tweetstash/internal/domain"
)

// Key layout: one entry per bookmark and per theme, JSON values. A
// position field inside the value preserves archive order, since Badger
// iterates keys lexicographically.
const (
	bookmarkPrefix = "bookmark:"
	themePrefix    = "theme:"
)

// storedBookmark wraps a bookmark with its position in the archive.
type storedBookmark struct {
	domain.Bookmark
	Position int `json:"position"`
}

// storedTheme wraps a theme with its first-appearance position.
type storedTheme struct {
	domain.Theme
	Position int `json:"position"`
}

// BadgerRepository implements the Repository interface using BadgerDB.
type BadgerRepository struct {
	db  *badger.DB
	log logrus.FieldLogger
}

// NewBadgerRepository creates and initializes a new BadgerDB repository
// at the given path.
func NewBadgerRepository(dbPath string, logger logrus.FieldLogger) (*BadgerRepository, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = &badgerLogger{logger.WithField("component", "badgerdb")}

	db, err := badger.Open(opts)
	if err != nil {
		logger.WithError(err).Error("Failed to open BadgerDB")
		return nil, fmt.Errorf("failed to open badger db at %s: %w", dbPath, err)
	}
	logger.WithField("path", dbPath).Info("BadgerDB opened")

	return &BadgerRepository{
		db:  db,
		log: logger.WithField("component", "repository"),
	}, nil
}

// Close closes the BadgerDB database connection.
func (r *BadgerRepository) Close() error {
	if err := r.db.Close(); err != nil {
		r.log.WithError(err).Error("Error closing BadgerDB")
		return err
	}
	return nil
}

// LoadArchive reads the full archive from the store. A fresh database
// yields an empty snapshot, not an error.
func (r *BadgerRepository) LoadArchive(ctx context.Context) (domain.Snapshot, error) {
	var bookmarks []storedBookmark
	var themes []storedTheme

	err := r.db.View(func(txn *badger.Txn) error {
		if err := scanPrefix(txn, bookmarkPrefix, func(val []byte) error {
			var sb storedBookmark
			if err := json.Unmarshal(val, &sb); err != nil {
				return fmt.Errorf("failed to unmarshal bookmark: %w", err)
			}
			bookmarks = append(bookmarks, sb)
			return nil
		}); err != nil {
			return err
		}
		return scanPrefix(txn, themePrefix, func(val []byte) error {
			var st storedTheme
			if err := json.Unmarshal(val, &st); err != nil {
				return fmt.Errorf("failed to unmarshal theme: %w", err)
			}
			themes = append(themes, st)
			return nil
		})
	})
	if err != nil {
		r.log.WithError(err).Error("Failed to load archive from BadgerDB")
		return domain.Snapshot{}, fmt.Errorf("failed to load archive: %w", err)
	}

	sort.Slice(bookmarks, func(i, j int) bool { return bookmarks[i].Position < bookmarks[j].Position })
	sort.Slice(themes, func(i, j int) bool { return themes[i].Position < themes[j].Position })

	snap := domain.Snapshot{}
	for _, sb := range bookmarks {
		snap.Bookmarks = append(snap.Bookmarks, sb.Bookmark)
	}
	for _, st := range themes {
		snap.Themes = append(snap.Themes, st.Theme)
	}

	r.log.WithFields(logrus.Fields{
		"bookmarks": len(snap.Bookmarks),
		"themes":    len(snap.Themes),
	}).Debug("Archive loaded from BadgerDB")
	return snap, nil
}

// SaveArchive replaces the persisted archive with the given snapshot.
// Stale entries (deleted bookmarks, renamed themes) are dropped by
// clearing both prefixes before writing.
func (r *BadgerRepository) SaveArchive(ctx context.Context, snap domain.Snapshot) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		if err := deletePrefix(txn, bookmarkPrefix); err != nil {
			return err
		}
		if err := deletePrefix(txn, themePrefix); err != nil {
			return err
		}

		for i, b := range snap.Bookmarks {
			val, err := json.Marshal(storedBookmark{Bookmark: b, Position: i})
			if err != nil {
				return fmt.Errorf("failed to marshal bookmark %s: %w", b.ID, err)
			}
			if err := txn.SetEntry(badger.NewEntry([]byte(bookmarkPrefix+b.ID), val)); err != nil {
				return err
			}
		}
		for i, t := range snap.Themes {
			val, err := json.Marshal(storedTheme{Theme: t, Position: i})
			if err != nil {
				return fmt.Errorf("failed to marshal theme %s: %w", t.Name, err)
			}
			if err := txn.SetEntry(badger.NewEntry([]byte(themePrefix+t.Name), val)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.log.WithError(err).Error("Failed to save archive to BadgerDB")
		return fmt.Errorf("failed to save archive: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"bookmarks": len(snap.Bookmarks),
		"themes":    len(snap.Themes),
	}).Info("Archive saved")
	return nil
}

// scanPrefix iterates every value under a key prefix. Values are copied
// before the callback runs, as Badger reuses its buffers.
func scanPrefix(txn *badger.Txn, prefix string, fn func(val []byte) error) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		err := it.Item().Value(func(val []byte) error {
			valCopy := make([]byte, len(val))
			copy(valCopy, val)
			return fn(valCopy)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// deletePrefix removes every key under a prefix within the transaction.
func deletePrefix(txn *badger.Txn, prefix string) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)

	p := []byte(prefix)
	var keys [][]byte
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	it.Close()

	for _, key := range keys {
		if err := txn.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
