package deletion_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/photosweep/pkg/photosweep/catalog"
	"github.com/jamesainslie/photosweep/pkg/photosweep/deletion"
	"github.com/jamesainslie/photosweep/pkg/photosweep/media"
	"github.com/jamesainslie/photosweep/pkg/photosweep/mediastore/memstore"
	"github.com/jamesainslie/photosweep/pkg/photosweep/selection"
)

var when = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func photo(id string, size int64) media.Record {
	return media.NewRecord(media.Attributes{ID: id, Size: size, CreatedAt: when, Kind: media.KindPhoto})
}

func setup(records ...media.Record) (*memstore.Store, *catalog.Catalog) {
	store := memstore.New(records...)
	cat := catalog.New()
	cat.Load(records)
	return store, cat
}

func catalogIDs(c *catalog.Catalog) []string {
	var out []string
	for _, r := range c.Snapshot().All() {
		out = append(out, r.ID)
	}
	return out
}

type recorder struct {
	mu      sync.Mutex
	batches [][]media.Record
	err     error
}

func (r *recorder) RecordDeletion(_ context.Context, records []media.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, records)
	return r.err
}

func TestDelete_Success(t *testing.T) {
	store, cat := setup(photo("a", 10), photo("b", 20), photo("c", 30))
	rec := &recorder{}
	coord := deletion.New(store, deletion.Options{Recorder: rec})

	set := selection.New("c", "a", "gone")
	res, err := coord.Apply(context.Background(), set, cat)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Count)
	assert.Equal(t, int64(40), res.Bytes)
	assert.False(t, res.DryRun)
	assert.Equal(t, []string{"b"}, catalogIDs(cat))
	assert.Equal(t, int64(20), cat.TotalSize())
	assert.True(t, set.IsEmpty(), "selection cleared on success")
	assert.Equal(t, 1, store.Len())

	require.Len(t, rec.batches, 1)
	assert.Len(t, rec.batches[0], 2)
}

func TestDelete_ReturnsCount(t *testing.T) {
	store, cat := setup(photo("a", 1), photo("b", 1))
	n, err := deletion.New(store, deletion.Options{}).Delete(context.Background(), selection.New("a", "b"), cat)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Zero(t, cat.Len())
}

func TestDelete_AlreadyRemovedSelection(t *testing.T) {
	store, cat := setup(photo("a", 10), photo("b", 20))
	cat.RemoveByIDs([]string{"a"})

	set := selection.New("a")
	n, err := deletion.New(store, deletion.Options{}).Delete(context.Background(), set, cat)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, store.DeleteCalls(), "store must not be called for an empty resolution")
	assert.Equal(t, 1, set.Count())
}

func TestDelete_StoreFailureLeavesStateUntouched(t *testing.T) {
	store, cat := setup(photo("a", 10), photo("b", 20), photo("c", 30))
	cause := errors.New("permission revoked")
	store.FailDeletes(cause)
	rec := &recorder{}

	before := catalogIDs(cat)
	beforeSize := cat.TotalSize()
	set := selection.New("a", "b")

	n, err := deletion.New(store, deletion.Options{Recorder: rec}).Delete(context.Background(), set, cat)
	require.Error(t, err)
	assert.Zero(t, n)

	assert.ErrorIs(t, err, deletion.ErrDeletionFailed)
	assert.ErrorIs(t, err, cause)

	var derr *deletion.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, []string{"a", "b"}, derr.Requested)

	assert.Equal(t, before, catalogIDs(cat))
	assert.Equal(t, beforeSize, cat.TotalSize())
	assert.Equal(t, []string{"a", "b"}, set.IDs())
	assert.Empty(t, rec.batches)
}

func TestDelete_MissingInStoreFailsAtomically(t *testing.T) {
	records := []media.Record{photo("a", 1), photo("b", 1)}
	store := memstore.New(records[0])
	cat := catalog.New()
	cat.Load(records)

	_, err := deletion.New(store, deletion.Options{}).Delete(context.Background(), selection.New("a", "b"), cat)
	require.ErrorIs(t, err, memstore.ErrMissing)
	assert.Equal(t, 1, store.Len(), "store keeps everything on failure")
	assert.Equal(t, []string{"a", "b"}, catalogIDs(cat))
}

func TestDelete_DryRun(t *testing.T) {
	store, cat := setup(photo("a", 10), photo("b", 20))
	set := selection.New("b")

	res, err := deletion.New(store, deletion.Options{DryRun: true}).Apply(context.Background(), set, cat)
	require.NoError(t, err)

	assert.True(t, res.DryRun)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, int64(20), res.Bytes)
	assert.Zero(t, store.DeleteCalls())
	assert.Equal(t, 2, cat.Len())
	assert.True(t, set.Contains("b"))

	n, err := deletion.New(store, deletion.Options{DryRun: true}).Delete(context.Background(), set, cat)
	require.NoError(t, err)
	assert.Zero(t, n, "nothing is removed in a dry run")
	assert.Zero(t, store.DeleteCalls())
}

func TestDelete_NilArguments(t *testing.T) {
	store, cat := setup(photo("a", 1))
	coord := deletion.New(store, deletion.Options{})

	n, err := coord.Delete(context.Background(), nil, cat)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = coord.Delete(context.Background(), selection.New("a"), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDelete_RecorderErrorDoesNotFail(t *testing.T) {
	store, cat := setup(photo("a", 1))
	rec := &recorder{err: errors.New("disk full")}

	n, err := deletion.New(store, deletion.Options{Recorder: rec}).Delete(context.Background(), selection.New("a"), cat)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// blockingStore holds Delete until released. Once released it passes
// straight through.
type blockingStore struct {
	*memstore.Store
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStore) Delete(ctx context.Context, ids []string) error {
	b.once.Do(func() { close(b.entered) })
	<-b.release
	return b.Store.Delete(ctx, ids)
}

func TestDelete_OverlappingCallsRejected(t *testing.T) {
	mem, cat := setup(photo("a", 1), photo("b", 1))
	store := &blockingStore{Store: mem, entered: make(chan struct{}), release: make(chan struct{})}
	coord := deletion.New(store, deletion.Options{})

	done := make(chan error, 1)
	go func() {
		_, err := coord.Delete(context.Background(), selection.New("a"), cat)
		done <- err
	}()

	<-store.entered
	_, err := coord.Delete(context.Background(), selection.New("b"), cat)
	assert.ErrorIs(t, err, deletion.ErrDeleteInProgress)

	close(store.release)
	require.NoError(t, <-done)

	n, err := coord.Delete(context.Background(), selection.New("b"), cat)
	require.NoError(t, err, "guard released after completion")
	assert.Equal(t, 1, n)
	assert.Empty(t, catalogIDs(cat))
}

func TestError_Message(t *testing.T) {
	err := &deletion.Error{Requested: []string{"x", "y"}, Err: errors.New("boom")}
	assert.Equal(t, "deleting 2 items: boom", err.Error())
}
