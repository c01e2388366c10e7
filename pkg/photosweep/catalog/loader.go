package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jamesainslie/photosweep/pkg/photosweep/logging"
	"github.com/jamesainslie/photosweep/pkg/photosweep/media"
)

// AuthorizationError reports that the store refused read access.
// It matches media.ErrNotAuthorized with errors.Is.
type AuthorizationError struct {
	State media.AuthorizationState
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%s (state: %s)", media.ErrNotAuthorized, e.State)
}

// Unwrap returns media.ErrNotAuthorized.
func (e *AuthorizationError) Unwrap() error {
	return media.ErrNotAuthorized
}

// LoadResult describes a completed load.
type LoadResult struct {
	// RequestID identifies the load in logs.
	RequestID string

	// Sequence is the load's position in request order.
	Sequence uint64

	// Applied is false when a newer load completed first and this
	// result was discarded.
	Applied bool

	// Records is the number of records fetched.
	Records int

	// Elapsed is the time spent in the store.
	Elapsed time.Duration
}

// Loader populates a Catalog from a media.Store.
type Loader struct {
	catalog *Catalog
	store   media.Store
}

// NewLoader creates a loader that fills c from store.
func NewLoader(c *Catalog, store media.Store) *Loader {
	return &Loader{catalog: c, store: store}
}

// Load checks authorization, fetches every record and commits them to the
// catalog. Loads may overlap; the catalog keeps the result of the most
// recently started load that has completed, regardless of arrival order.
//
// An unauthorized store yields *AuthorizationError and FetchAll is not
// called. On any error the catalog is left as it was.
func (l *Loader) Load(ctx context.Context) (LoadResult, error) {
	log := logging.Get("catalog")
	result := LoadResult{RequestID: uuid.NewString()}

	state := l.store.AuthorizationState(ctx)
	if !state.CanRead() {
		log.Warn("load refused", "request", result.RequestID, "state", state.String())
		return result, &AuthorizationError{State: state}
	}

	result.Sequence = l.catalog.BeginLoad()
	log.Debug("load started", "request", result.RequestID, "seq", result.Sequence)

	start := time.Now()
	records, err := l.store.FetchAll(ctx)
	result.Elapsed = time.Since(start)
	if err != nil {
		log.Error("load failed", "request", result.RequestID, "error", err)
		return result, fmt.Errorf("fetching media: %w", err)
	}

	result.Records = len(records)
	result.Applied = l.catalog.Commit(result.Sequence, records)
	log.Info("load complete",
		"request", result.RequestID,
		"seq", result.Sequence,
		"records", result.Records,
		"applied", result.Applied,
		"elapsed", result.Elapsed)

	return result, nil
}
