// Package selection tracks a multi-item selection of media records.
//
// A Set is plain data. IDs that have left the catalog stay selected until
// cleared; TotalSize and the deletion coordinator resolve them against a
// current snapshot.
package selection

import (
	"sort"

	"github.com/jamesainslie/photosweep/pkg/photosweep/analysis"
	"github.com/jamesainslie/photosweep/pkg/photosweep/catalog"
	"github.com/jamesainslie/photosweep/pkg/photosweep/media"
)

// Set is a selection of record IDs. The zero value is an empty set ready
// for use. A Set is not safe for concurrent mutation.
type Set struct {
	ids map[string]struct{}

	// sizes remembers the size of records selected by value so
	// CachedSize works without a catalog.
	sizes map[string]int64
}

// New returns a set holding ids.
func New(ids ...string) *Set {
	s := &Set{}
	for _, id := range ids {
		s.Select(id)
	}
	return s
}

func (s *Set) init() {
	if s.ids == nil {
		s.ids = make(map[string]struct{})
		s.sizes = make(map[string]int64)
	}
}

// Select adds id. Selecting a present ID is a no-op.
func (s *Set) Select(id string) {
	s.init()
	s.ids[id] = struct{}{}
}

// Deselect removes id. Removing an absent ID is a no-op.
func (s *Set) Deselect(id string) {
	delete(s.ids, id)
	delete(s.sizes, id)
}

// Toggle selects id when absent and deselects it when present. It reports
// whether id is selected afterwards.
func (s *Set) Toggle(id string) bool {
	if s.Contains(id) {
		s.Deselect(id)
		return false
	}
	s.Select(id)
	return true
}

// Contains reports whether id is selected.
func (s *Set) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// SelectAll adds every candidate.
func (s *Set) SelectAll(candidates []media.Record) {
	s.init()
	for _, r := range candidates {
		s.ids[r.ID] = struct{}{}
		s.sizes[r.ID] = r.Size
	}
}

// SelectAllButFirstPerGroup selects every member after the first of each
// group, keeping one item per group.
func (s *Set) SelectAllButFirstPerGroup(groups []analysis.Group) {
	for _, g := range groups {
		if len(g) > 1 {
			s.SelectAll(g[1:])
		}
	}
}

// Clear empties the set.
func (s *Set) Clear() {
	s.ids = nil
	s.sizes = nil
}

// Count returns the number of selected IDs, including any no longer in the
// catalog.
func (s *Set) Count() int { return len(s.ids) }

// IsEmpty reports whether nothing is selected.
func (s *Set) IsEmpty() bool { return len(s.ids) == 0 }

// IDs returns the selected IDs in sorted order.
func (s *Set) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// TotalSize sums the sizes of selected records still present in snap.
func (s *Set) TotalSize(snap *catalog.Snapshot) int64 {
	if snap == nil {
		return 0
	}
	var total int64
	for id := range s.ids {
		if r, ok := snap.Get(id); ok {
			total += r.Size
		}
	}
	return total
}

// CachedSize sums the sizes remembered when records were selected by value.
// IDs selected with Select or Toggle contribute nothing.
func (s *Set) CachedSize() int64 {
	var total int64
	for _, size := range s.sizes {
		total += size
	}
	return total
}

// Resolved returns the selected records still present in snap, in load
// order.
func (s *Set) Resolved(snap *catalog.Snapshot) []media.Record {
	if snap == nil || len(s.ids) == 0 {
		return nil
	}
	return snap.Resolve(s.IDs())
}
