package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/photosweep/pkg/photosweep/media"
	"github.com/jamesainslie/photosweep/pkg/photosweep/mediastore/memstore"
)

func TestLoader_Load(t *testing.T) {
	store := memstore.New(photo("a", 10), video("b", 20))
	c := New()

	res, err := NewLoader(c, store).Load(context.Background())
	require.NoError(t, err)

	assert.True(t, res.Applied)
	assert.Equal(t, 2, res.Records)
	assert.NotEmpty(t, res.RequestID)
	assert.Equal(t, int64(30), c.TotalSize())
}

func TestLoader_LimitedAccessLoads(t *testing.T) {
	store := memstore.New(photo("a", 10))
	store.SetAuthorizationState(media.Limited)
	c := New()

	_, err := NewLoader(c, store).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestLoader_RefusesWithoutAuthorization(t *testing.T) {
	for _, state := range []media.AuthorizationState{media.NotDetermined, media.Denied, media.Restricted} {
		t.Run(state.String(), func(t *testing.T) {
			store := memstore.New(photo("new", 10))
			store.SetAuthorizationState(state)

			c := New()
			c.Load([]media.Record{photo("prior", 1)})

			_, err := NewLoader(c, store).Load(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, media.ErrNotAuthorized)

			var authErr *AuthorizationError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, state, authErr.State)

			assert.Equal(t, 0, store.FetchCalls(), "FetchAll must not be called")
			assert.Equal(t, []string{"prior"}, ids(c.Snapshot().All()), "catalog keeps prior state")
		})
	}
}

func TestLoader_FetchErrorLeavesCatalog(t *testing.T) {
	store := memstore.New(photo("new", 10))
	boom := errors.New("library offline")
	store.FailFetches(boom)

	c := New()
	c.Load([]media.Record{photo("prior", 1)})

	_, err := NewLoader(c, store).Load(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"prior"}, ids(c.Snapshot().All()))
}

// gatedStore blocks FetchAll until its release channel yields records.
type gatedStore struct {
	started chan struct{}
	release chan []media.Record
}

func (g *gatedStore) FetchAll(ctx context.Context) ([]media.Record, error) {
	g.started <- struct{}{}
	select {
	case r := <-g.release:
		return r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *gatedStore) Delete(context.Context, []string) error { return nil }

func (g *gatedStore) AuthorizationState(context.Context) media.AuthorizationState {
	return media.Authorized
}

func TestLoader_OverlappingLoadsLastRequestWins(t *testing.T) {
	slow := &gatedStore{started: make(chan struct{}, 1), release: make(chan []media.Record, 1)}
	fast := &gatedStore{started: make(chan struct{}, 1), release: make(chan []media.Record, 1)}
	c := New()

	slowDone := make(chan LoadResult, 1)
	go func() {
		res, err := NewLoader(c, slow).Load(context.Background())
		assert.NoError(t, err)
		slowDone <- res
	}()
	<-slow.started

	fast.release <- []media.Record{photo("fresh", 1)}
	fastRes, err := NewLoader(c, fast).Load(context.Background())
	require.NoError(t, err)
	assert.True(t, fastRes.Applied)

	slow.release <- []media.Record{photo("stale", 1)}
	slowRes := <-slowDone

	assert.False(t, slowRes.Applied)
	assert.Less(t, slowRes.Sequence, fastRes.Sequence)
	assert.Equal(t, []string{"fresh"}, ids(c.Snapshot().All()))
}
