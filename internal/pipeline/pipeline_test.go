package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweetstash/internal/archive"
	"tweetstash/internal/classify"
	"tweetstash/internal/domain"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

// fakeClassifier scripts one response per batch, in call order.
type fakeClassifier struct {
	calls   [][]domain.Bookmark
	respond func(call int, batch []domain.Bookmark) (*classify.BatchResult, error)
}

func (f *fakeClassifier) ClassifyBatch(ctx context.Context, batch []domain.Bookmark) (*classify.BatchResult, error) {
	call := len(f.calls)
	f.calls = append(f.calls, batch)
	return f.respond(call, batch)
}

// enrichAll builds a successful result annotating every bookmark of the
// batch with the given theme.
func enrichAll(batch []domain.Bookmark, theme domain.Theme) *classify.BatchResult {
	result := &classify.BatchResult{Themes: []domain.Theme{theme}}
	for _, b := range batch {
		result.Bookmarks = append(result.Bookmarks, classify.Annotation{
			ID:      b.ID,
			Theme:   theme.Name,
			Insight: "insight for " + b.ID,
			Action:  "action for " + b.ID,
		})
	}
	return result
}

func newTestStore(t *testing.T, bookmarks []domain.Bookmark) *archive.Store {
	t.Helper()
	store := archive.NewStore(testLogger())
	store.Load(domain.Snapshot{Bookmarks: bookmarks})
	return store
}

func TestRun_AllBatchesSucceed(t *testing.T) {
	// Scenario: 45 pending bookmarks at batch size 20 -> 3 sequential
	// batches, all succeed, summary reports 45 processed and 0 failed.
	store := newTestStore(t, makeBookmarks(45))
	fake := &fakeClassifier{
		respond: func(call int, batch []domain.Bookmark) (*classify.BatchResult, error) {
			return enrichAll(batch, domain.Theme{Name: fmt.Sprintf("Theme %d", call), Description: "d"}), nil
		},
	}

	var progress [][2]int
	orch := NewOrchestrator(fake, store, Options{
		BatchSize: 20,
		Progress:  func(completed, total int) { progress = append(progress, [2]int{completed, total}) },
	}, testLogger())

	summary, err := orch.Run(context.Background(), store.Pending())
	require.NoError(t, err)

	assert.Equal(t, 45, summary.Processed)
	assert.Equal(t, 3, summary.BatchesTotal)
	assert.Equal(t, 0, summary.FailedBatches)
	assert.Equal(t, 3, summary.DistinctThemes)
	assert.False(t, summary.Cancelled)

	require.Len(t, fake.calls, 3)
	assert.Len(t, fake.calls[0], 20)
	assert.Len(t, fake.calls[1], 20)
	assert.Len(t, fake.calls[2], 5)

	// Progress is emitted before each batch and stays monotonic.
	assert.Equal(t, [][2]int{{0, 3}, {1, 3}, {2, 3}}, progress)

	assert.Empty(t, store.Pending(), "every bookmark must be enriched")
	assert.Len(t, store.Themes(), 3)
}

func TestRun_EmptyInputIsNoOp(t *testing.T) {
	store := newTestStore(t, nil)
	fake := &fakeClassifier{
		respond: func(int, []domain.Bookmark) (*classify.BatchResult, error) {
			t.Fatal("classifier must not be called for an empty run")
			return nil, nil
		},
	}
	orch := NewOrchestrator(fake, store, Options{BatchSize: 20}, testLogger())

	summary, err := orch.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, 0, summary.BatchesTotal)
	assert.Empty(t, fake.calls)
}

func TestRun_SingleBatchFailureLeavesArchiveUnchanged(t *testing.T) {
	// Scenario: one batch, the response is non-JSON garbage. The run
	// still completes, the archive is byte-identical to its pre-run
	// state and the failure is recorded.
	store := newTestStore(t, makeBookmarks(20))
	before := store.Snapshot()

	fake := &fakeClassifier{
		respond: func(int, []domain.Bookmark) (*classify.BatchResult, error) {
			return nil, &classify.Failure{Kind: classify.InvalidResponse, Detail: "response is not valid JSON"}
		},
	}
	orch := NewOrchestrator(fake, store, Options{BatchSize: 20}, testLogger())

	summary, err := orch.Run(context.Background(), store.Pending())
	require.NoError(t, err, "a failed batch must not fail the run")

	assert.Equal(t, 20, summary.Processed)
	assert.Equal(t, 1, summary.FailedBatches)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, classify.InvalidResponse, summary.Failures[0].Kind)

	assert.Equal(t, before, store.Snapshot(), "archive must be unchanged after a failed batch")
	assert.Len(t, store.Pending(), 20)
}

func TestRun_FailedBatchIsIsolated(t *testing.T) {
	// Batch 2 of 3 fails; its bookmarks stay identical to their pre-run
	// state while both other batches carry enrichment.
	store := newTestStore(t, makeBookmarks(30))
	before := store.Bookmarks()

	fake := &fakeClassifier{
		respond: func(call int, batch []domain.Bookmark) (*classify.BatchResult, error) {
			if call == 1 {
				return nil, &classify.Failure{Kind: classify.ServiceError, Status: 529, Detail: "overloaded"}
			}
			return enrichAll(batch, domain.Theme{Name: "Theme", Description: "d"}), nil
		},
	}
	orch := NewOrchestrator(fake, store, Options{BatchSize: 10}, testLogger())

	summary, err := orch.Run(context.Background(), store.Pending())
	require.NoError(t, err)

	assert.Equal(t, 30, summary.Processed)
	assert.Equal(t, 1, summary.FailedBatches)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, 1, summary.Failures[0].Batch)
	assert.Equal(t, 529, summary.Failures[0].Status)

	after := store.Bookmarks()
	require.Len(t, after, 30)
	for i, b := range after {
		if i >= 10 && i < 20 {
			assert.Equal(t, before[i], b, "failed batch bookmark %s must be untouched", b.ID)
		} else {
			assert.True(t, b.Analyzed(), "bookmark %s from a successful batch must be enriched", b.ID)
		}
	}
	assert.Len(t, store.Pending(), 10)
}

func TestRun_ThemeDedupAcrossBatches(t *testing.T) {
	// Scenario: batch 1 and batch 2 both report "Productivity" with
	// different descriptions; the taxonomy keeps exactly one entry with
	// batch 1's description.
	store := newTestStore(t, makeBookmarks(40))
	fake := &fakeClassifier{
		respond: func(call int, batch []domain.Bookmark) (*classify.BatchResult, error) {
			desc := fmt.Sprintf("description from batch %d", call+1)
			return enrichAll(batch, domain.Theme{Name: "Productivity", Description: desc}), nil
		},
	}
	orch := NewOrchestrator(fake, store, Options{BatchSize: 20}, testLogger())

	summary, err := orch.Run(context.Background(), store.Pending())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.DistinctThemes)

	themes := store.Themes()
	require.Len(t, themes, 1)
	assert.Equal(t, "Productivity", themes[0].Name)
	assert.Equal(t, "description from batch 1", themes[0].Description)
}

func TestRun_RetryOfPendingLeftovers(t *testing.T) {
	// Scenario: a first run fails entirely, a second run over the
	// still-pending subset succeeds and drains the backlog.
	store := newTestStore(t, makeBookmarks(20))

	failing := &fakeClassifier{
		respond: func(int, []domain.Bookmark) (*classify.BatchResult, error) {
			return nil, &classify.Failure{Kind: classify.TransportError, Detail: "connection reset"}
		},
	}
	summary, err := NewOrchestrator(failing, store, Options{BatchSize: 20}, testLogger()).
		Run(context.Background(), store.Pending())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.FailedBatches)
	require.Len(t, store.Pending(), 20)

	succeeding := &fakeClassifier{
		respond: func(call int, batch []domain.Bookmark) (*classify.BatchResult, error) {
			return enrichAll(batch, domain.Theme{Name: "Recovered"}), nil
		},
	}
	summary, err = NewOrchestrator(succeeding, store, Options{BatchSize: 20}, testLogger()).
		Run(context.Background(), store.Pending())
	require.NoError(t, err)

	assert.Equal(t, 20, summary.Processed)
	assert.Equal(t, 0, summary.FailedBatches)
	assert.Empty(t, store.Pending())
}

func TestRun_CancelledBetweenBatches(t *testing.T) {
	// Cancelling during the cooldown stops the run at the batch
	// boundary; the finished batch is still merged.
	store := newTestStore(t, makeBookmarks(40))
	ctx, cancel := context.WithCancel(context.Background())

	fake := &fakeClassifier{
		respond: func(call int, batch []domain.Bookmark) (*classify.BatchResult, error) {
			cancel() // cancellation lands before the next batch starts
			return enrichAll(batch, domain.Theme{Name: "Theme"}), nil
		},
	}
	orch := NewOrchestrator(fake, store, Options{BatchSize: 20}, testLogger())

	summary, err := orch.Run(ctx, store.Pending())
	require.ErrorIs(t, err, context.Canceled)

	assert.True(t, summary.Cancelled)
	assert.Len(t, fake.calls, 1, "no batch may start after cancellation")
	assert.Equal(t, 20, summary.Processed)
	assert.Len(t, store.Pending(), 20, "unattempted batch must stay pending")
}

func TestRun_ReanalysisOverwritesEnrichment(t *testing.T) {
	store := newTestStore(t, nil)
	store.Load(domain.Snapshot{
		Bookmarks: []domain.Bookmark{{
			ID: "bm-000", Text: "t", Theme: "Old", Insight: "old", Action: "old",
		}},
		Themes: []domain.Theme{{Name: "Old"}},
	})

	fake := &fakeClassifier{
		respond: func(call int, batch []domain.Bookmark) (*classify.BatchResult, error) {
			return enrichAll(batch, domain.Theme{Name: "New"}), nil
		},
	}
	orch := NewOrchestrator(fake, store, Options{BatchSize: 20}, testLogger())

	_, err := orch.Run(context.Background(), store.Bookmarks())
	require.NoError(t, err)

	b, ok := store.Get("bm-000")
	require.True(t, ok)
	assert.Equal(t, "New", b.Theme)
	assert.Equal(t, "insight for bm-000", b.Insight)

	// The old theme record stays; the core never removes themes.
	require.Len(t, store.Themes(), 2)
}
