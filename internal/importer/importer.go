package importer

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/sirupsen/logrus"

	"tweetstash/internal/archive"
	"tweetstash/internal/domain"
)

// Result reports what an import did.
type Result struct {
	Imported int // new bookmarks added to the archive
	Skipped  int // records whose ID already existed
}

// Importer feeds bookmark records from JSON sources into the archive.
// Existing IDs are never overwritten; import only ever adds.
type Importer struct {
	store *archive.Store
	log   logrus.FieldLogger
}

// New creates an importer bound to a store.
func New(store *archive.Store, logger logrus.FieldLogger) *Importer {
	return &Importer{
		store: store,
		log:   logger.WithField("component", "importer"),
	}
}

// FromFile imports a JSON array of bookmarks from a file.
func (i *Importer) FromFile(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	res, err := i.fromJSON(data)
	if err != nil {
		return Result{}, fmt.Errorf("failed to import %s: %w", path, err)
	}
	i.log.WithFields(logrus.Fields{
		"file":     path,
		"imported": res.Imported,
		"skipped":  res.Skipped,
	}).Info("File import complete")
	return res, nil
}

// FromClipboard imports a JSON array of bookmarks from the system
// clipboard.
func (i *Importer) FromClipboard() (Result, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return Result{}, fmt.Errorf("failed to read clipboard: %w", err)
	}
	res, err := i.fromJSON([]byte(text))
	if err != nil {
		return Result{}, fmt.Errorf("failed to import clipboard data: %w", err)
	}
	i.log.WithFields(logrus.Fields{
		"imported": res.Imported,
		"skipped":  res.Skipped,
	}).Info("Clipboard import complete")
	return res, nil
}

func (i *Importer) fromJSON(data []byte) (Result, error) {
	var bookmarks []domain.Bookmark
	if err := json.Unmarshal(data, &bookmarks); err != nil {
		return Result{}, fmt.Errorf("not a valid bookmark JSON array: %w", err)
	}

	for idx, b := range bookmarks {
		if b.ID == "" {
			return Result{}, fmt.Errorf("bookmark %d has no id", idx)
		}
	}

	added := i.store.AddBookmarks(bookmarks)
	return Result{Imported: added, Skipped: len(bookmarks) - added}, nil
}
