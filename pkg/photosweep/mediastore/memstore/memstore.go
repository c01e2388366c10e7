// Package memstore provides an in-memory media.Store. It backs dry runs
// and tests, and can be told to refuse access or fail deletions.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jamesainslie/photosweep/pkg/photosweep/media"
)

// ErrMissing is returned by Delete when a requested ID is not stored.
var ErrMissing = errors.New("asset not found")

// Store is an in-memory media library.
type Store struct {
	mu        sync.Mutex
	records   []media.Record
	state     media.AuthorizationState
	deleteErr error
	fetchErr  error

	fetches int
	deletes int
}

// New creates an authorized store holding records.
func New(records ...media.Record) *Store {
	s := &Store{state: media.Authorized}
	s.records = append(s.records, records...)
	return s
}

// SetAuthorizationState changes the reported access level.
func (s *Store) SetAuthorizationState(state media.AuthorizationState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// FailDeletes makes every subsequent Delete return err. Pass nil to
// restore normal behaviour.
func (s *Store) FailDeletes(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteErr = err
}

// FailFetches makes every subsequent FetchAll return err.
func (s *Store) FailFetches(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchErr = err
}

// Put replaces the stored records.
func (s *Store) Put(records ...media.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]media.Record(nil), records...)
}

// FetchAll returns a copy of the stored records.
func (s *Store) FetchAll(ctx context.Context) ([]media.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.fetches++
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	if !s.state.CanRead() {
		return nil, media.ErrNotAuthorized
	}

	out := make([]media.Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Delete removes ids. Either every ID is removed or none is.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.deletes++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if s.state != media.Authorized {
		return fmt.Errorf("delete requires full access: %w", media.ErrNotAuthorized)
	}

	index := make(map[string]int, len(s.records))
	for i, r := range s.records {
		index[r.ID] = i
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := index[id]; !ok {
			return fmt.Errorf("%w: %s", ErrMissing, id)
		}
		drop[id] = struct{}{}
	}

	kept := s.records[:0:0]
	for _, r := range s.records {
		if _, ok := drop[r.ID]; !ok {
			kept = append(kept, r)
		}
	}
	s.records = kept
	return nil
}

// AuthorizationState reports the configured access level.
func (s *Store) AuthorizationState(_ context.Context) media.AuthorizationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// FetchCalls returns how many times FetchAll was called.
func (s *Store) FetchCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

// DeleteCalls returns how many times Delete was called.
func (s *Store) DeleteCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deletes
}

var _ media.Store = (*Store)(nil)
