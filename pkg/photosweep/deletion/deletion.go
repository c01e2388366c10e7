// Package deletion removes selected media through a media.Store and
// reconciles the catalog afterwards.
//
// A deletion either succeeds completely, in which case the removed
// records leave the catalog and the selection is cleared, or fails and
// leaves both untouched. The store's bulk delete is treated as atomic;
// partial success is never assumed.
package deletion

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jamesainslie/photosweep/pkg/photosweep/catalog"
	"github.com/jamesainslie/photosweep/pkg/photosweep/logging"
	"github.com/jamesainslie/photosweep/pkg/photosweep/media"
	"github.com/jamesainslie/photosweep/pkg/photosweep/selection"
	"github.com/jamesainslie/photosweep/pkg/photosweep/types"
)

var (
	// ErrDeletionFailed is matched by every error from a failed store delete.
	ErrDeletionFailed = errors.New("deletion failed")

	// ErrDeleteInProgress is returned when Delete is called while another
	// deletion on the same Coordinator is still running.
	ErrDeleteInProgress = errors.New("a deletion is already in progress")
)

// Error reports a failed store delete. It matches both ErrDeletionFailed
// and the store's cause under errors.Is.
type Error struct {
	// Requested holds the IDs passed to the store, in catalog order.
	Requested []string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("deleting %d items: %v", len(e.Requested), e.Err)
}

// Unwrap returns the sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	return []error{ErrDeletionFailed, e.Err}
}

// Recorder is notified after a successful deletion, for example to keep
// an audit log. A Recorder error is logged and does not fail the deletion.
type Recorder interface {
	RecordDeletion(ctx context.Context, records []media.Record) error
}

// Options configures a Coordinator.
type Options struct {
	// Recorder is optional.
	Recorder Recorder

	// DryRun resolves the selection and reports what would be removed
	// without calling the store or changing any state.
	DryRun bool
}

// Result describes a completed deletion.
type Result struct {
	// Count is the number of records removed (or that would be removed).
	Count int

	// Bytes is their combined size.
	Bytes int64

	// Records are the resolved records in catalog order.
	Records []media.Record

	DryRun  bool
	Elapsed time.Duration
}

// Coordinator drives deletions against one store.
type Coordinator struct {
	store    media.Store
	opts     Options
	inFlight atomic.Bool
}

// New creates a coordinator for store.
func New(store media.Store, opts Options) *Coordinator {
	return &Coordinator{store: store, opts: opts}
}

// Delete removes the selection's records and returns how many were
// removed. In dry-run mode nothing is removed and the count is 0; use
// Apply for the would-be count. See Apply.
func (c *Coordinator) Delete(ctx context.Context, set *selection.Set, cat *catalog.Catalog) (int, error) {
	res, err := c.Apply(ctx, set, cat)
	if res.DryRun {
		return 0, err
	}
	return res.Count, err
}

// Apply resolves set against the current catalog snapshot, dropping IDs
// no longer present, and deletes the rest through the store.
//
// An empty resolution succeeds with a zero Result and the store is not
// called. On success the records are removed from cat and set is cleared.
// On failure an *Error is returned and neither cat nor set changes.
func (c *Coordinator) Apply(ctx context.Context, set *selection.Set, cat *catalog.Catalog) (Result, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return Result{}, ErrDeleteInProgress
	}
	defer c.inFlight.Store(false)

	log := logging.Get("deletion")
	start := time.Now()

	if set == nil || cat == nil {
		return Result{DryRun: c.opts.DryRun}, nil
	}

	records := set.Resolved(cat.Snapshot())
	res := Result{DryRun: c.opts.DryRun, Records: records, Count: len(records)}
	for _, r := range records {
		res.Bytes += r.Size
	}

	if len(records) == 0 {
		log.Debug("nothing to delete", "selected", set.Count())
		return res, nil
	}

	if c.opts.DryRun {
		log.Info("dry run", "count", res.Count, "size", types.FormatSize(res.Bytes))
		res.Elapsed = time.Since(start)
		return res, nil
	}

	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}

	if err := c.store.Delete(ctx, ids); err != nil {
		log.Warn("store delete failed", "count", len(ids), "error", err)
		return Result{}, &Error{Requested: ids, Err: err}
	}

	removed := cat.RemoveByIDs(ids)
	set.Clear()
	res.Elapsed = time.Since(start)

	log.Info("deleted media",
		"count", len(ids),
		"removed_from_catalog", removed,
		"size", types.FormatSize(res.Bytes),
		"elapsed", res.Elapsed,
	)

	if c.opts.Recorder != nil {
		if err := c.opts.Recorder.RecordDeletion(ctx, records); err != nil {
			log.Warn("recording deletion failed", "error", err)
		}
	}

	return res, nil
}
