package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tweetstash/internal/archive"
	"tweetstash/internal/classify"
	"tweetstash/internal/domain"
)

// ProgressFunc receives (completed, total) batch counts before every
// classification call. It is advisory only; the pipeline ignores
// anything it does.
type ProgressFunc func(completed, total int)

// BatchFailure records one failed batch for the run summary.
type BatchFailure struct {
	Batch  int // zero-based batch index
	Kind   classify.FailureKind
	Status int
	Detail string
}

// RunSummary is the final report of one analysis run.
type RunSummary struct {
	RunID          string
	Processed      int // bookmarks carried through the run, enriched or not
	DistinctThemes int
	BatchesTotal   int
	FailedBatches  int
	Failures       []BatchFailure
	Cancelled      bool
}

// String renders the human-readable summary handed to the progress
// observer at run end.
func (s RunSummary) String() string {
	msg := fmt.Sprintf("Analysis complete: processed %d bookmarks into %d themes", s.Processed, s.DistinctThemes)
	if s.FailedBatches > 0 {
		msg += fmt.Sprintf(" (%d of %d batches failed, affected bookmarks left pending)", s.FailedBatches, s.BatchesTotal)
	}
	if s.Cancelled {
		msg += " (run cancelled, remaining batches not attempted)"
	}
	return msg
}

// Options tunes an Orchestrator.
type Options struct {
	BatchSize int
	// Cooldown is the pause between consecutive batches, skipped after
	// the last one. Zero disables pacing (handy in tests).
	Cooldown time.Duration
	Progress ProgressFunc
}

// Orchestrator drives the batch enrichment loop: split candidates into
// batches, classify them strictly one at a time, isolate per-batch
// failures, and merge everything into the archive store in a single
// step at the end of the run.
type Orchestrator struct {
	classifier classify.Classifier
	store      *archive.Store
	opts       Options
	log        logrus.FieldLogger
}

// NewOrchestrator wires a pipeline against a store and a classifier.
func NewOrchestrator(classifier classify.Classifier, store *archive.Store, opts Options, logger logrus.FieldLogger) *Orchestrator {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	return &Orchestrator{
		classifier: classifier,
		store:      store,
		opts:       opts,
		log:        logger.WithField("component", "pipeline"),
	}
}

// Run executes one analysis run over the candidate bookmarks. The
// caller decides the scope (all pending, everything, a selection); the
// orchestrator does not second-guess it, and re-submitting already
// enriched bookmarks simply overwrites their enrichment.
//
// A failed batch never halts the run: its bookmarks are carried forward
// unchanged and the failure is recorded in the summary. The only way to
// stop mid-run is cancelling ctx, which is honored at batch boundaries
// and during the cooldown; whatever completed before cancellation is
// still merged into the store, and ctx.Err is returned alongside the
// partial summary.
func (o *Orchestrator) Run(ctx context.Context, candidates []domain.Bookmark) (RunSummary, error) {
	summary := RunSummary{RunID: uuid.NewString()}
	log := o.log.WithField("run_id", summary.RunID)

	if len(candidates) == 0 {
		log.Info("No bookmarks to analyze, nothing to do")
		return summary, nil
	}

	batches := SplitBatches(candidates, o.opts.BatchSize)
	summary.BatchesTotal = len(batches)
	tx := newTaxonomy(o.store.Themes())
	processed := make([]domain.Bookmark, 0, len(candidates))

	log.WithFields(logrus.Fields{
		"bookmarks": len(candidates),
		"batches":   len(batches),
	}).Info("Starting analysis run")

	var runErr error
	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			summary.Cancelled = true
			runErr = err
			break
		}

		o.emitProgress(i, len(batches))
		blog := log.WithFields(logrus.Fields{
			"batch":      i + 1,
			"batch_size": len(batch),
		})
		blog.Info("Classifying batch")

		result, err := o.classifier.ClassifyBatch(ctx, batch)
		if err != nil {
			// Batch-scoped failure: keep the originals untouched, no
			// themes from this batch, continue with the next one.
			failure := BatchFailure{Batch: i, Kind: classify.TransportError, Detail: err.Error()}
			if f, ok := classify.AsFailure(err); ok {
				failure.Kind = f.Kind
				failure.Status = f.Status
				failure.Detail = f.Detail
			}
			summary.Failures = append(summary.Failures, failure)
			summary.FailedBatches++
			processed = append(processed, batch...)
			blog.WithError(err).Warn("Batch failed, bookmarks left unchanged")
		} else {
			processed = append(processed, MergeAnnotations(batch, result.Bookmarks)...)
			tx.add(result.Themes)
			blog.Info("Batch complete")
		}

		if i < len(batches)-1 && o.opts.Cooldown > 0 {
			select {
			case <-time.After(o.opts.Cooldown):
			case <-ctx.Done():
				summary.Cancelled = true
				runErr = ctx.Err()
			}
			if summary.Cancelled {
				break
			}
		}
	}

	// Single merge point per run: bookmark updates by ID plus any new
	// themes, applied together whether or not some batches failed.
	o.store.ApplyRun(processed, tx.added)

	summary.Processed = len(processed)
	summary.DistinctThemes = tx.distinct()

	log.WithFields(logrus.Fields{
		"processed":      summary.Processed,
		"themes":         summary.DistinctThemes,
		"failed_batches": summary.FailedBatches,
		"cancelled":      summary.Cancelled,
	}).Info("Analysis run finished")

	return summary, runErr
}

func (o *Orchestrator) emitProgress(completed, total int) {
	if o.opts.Progress != nil {
		o.opts.Progress(completed, total)
	}
}
