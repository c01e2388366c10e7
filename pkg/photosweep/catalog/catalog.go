// Package catalog holds the in-memory media catalog: the single owner of
// every loaded media record and of the aggregates derived from them.
//
// The catalog is replaced wholesale by loads and shrinks only through
// RemoveByIDs. Readers take immutable snapshots, so analysis can run
// concurrently with, and is never torn by, a mutation.
package catalog

import (
	"sync"

	"github.com/jamesainslie/photosweep/pkg/photosweep/logging"
	"github.com/jamesainslie/photosweep/pkg/photosweep/media"
)

// Catalog owns the current set of media records.
type Catalog struct {
	mu         sync.RWMutex
	current    *Snapshot
	generation uint64

	// nextSeq is the last sequence handed out by BeginLoad;
	// appliedSeq is the sequence of the load currently installed.
	nextSeq    uint64
	appliedSeq uint64
}

// New creates an empty catalog.
func New() *Catalog {
	empty, _ := newSnapshot(0, nil)
	return &Catalog{current: empty}
}

// Snapshot returns the current immutable view.
func (c *Catalog) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Load replaces the entire contents with records. It is equivalent to
// Commit(BeginLoad(), records) and therefore always applies.
func (c *Catalog) Load(records []media.Record) {
	c.Commit(c.BeginLoad(), records)
}

// BeginLoad reserves a sequence number for a load that is about to start.
// Sequences increase strictly in call order.
func (c *Catalog) BeginLoad() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextSeq++
	return c.nextSeq
}

// Commit installs records as the catalog contents if seq is newer than the
// load currently installed. A completion that arrives after a newer load
// has been applied is discarded and Commit returns false.
func (c *Catalog) Commit(seq uint64, records []media.Record) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq <= c.appliedSeq {
		logging.Get("catalog").Debug("discarding stale load", "seq", seq, "applied", c.appliedSeq)
		return false
	}

	log := logging.Get("catalog")
	c.generation++
	next, dropped := newSnapshot(c.generation, records)
	if dropped > 0 {
		log.Warn("dropped records with repeated ids", "count", dropped, "seq", seq)
	}

	c.current = next
	c.appliedSeq = seq
	log.Debug("catalog loaded",
		"seq", seq,
		"photos", next.PhotoCount(),
		"videos", next.VideoCount(),
		"bytes", next.TotalSize())
	return true
}

// AppliedSequence returns the sequence number of the installed load.
func (c *Catalog) AppliedSequence() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.appliedSeq
}

// RemoveByIDs removes every record whose ID is in ids and returns how many
// were removed. Unknown IDs are ignored.
func (c *Catalog) RemoveByIDs(ids []string) int {
	if len(ids) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	present := false
	for id := range set {
		if c.current.Contains(id) {
			present = true
			break
		}
	}
	if !present {
		return 0
	}

	c.generation++
	next, removed := c.current.without(c.generation, set)
	c.current = next
	logging.Get("catalog").Debug("records removed", "count", removed, "remaining", next.Len())
	return removed
}

// Len returns the number of records currently held.
func (c *Catalog) Len() int {
	return c.Snapshot().Len()
}

// TotalSize returns the sum of all record sizes.
func (c *Catalog) TotalSize() int64 {
	return c.Snapshot().TotalSize()
}

// Get returns the record with the given ID from the current snapshot.
func (c *Catalog) Get(id string) (media.Record, bool) {
	return c.Snapshot().Get(id)
}
