package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jamesainslie/photosweep/pkg/photosweep/media"
)

// SortBy selects a record ordering.
type SortBy int

// Record orderings.
const (
	SortNewest SortBy = iota
	SortOldest
	SortLargest
	SortSmallest
)

// String returns the string representation of the ordering.
func (s SortBy) String() string {
	switch s {
	case SortNewest:
		return "newest"
	case SortOldest:
		return "oldest"
	case SortLargest:
		return "largest"
	case SortSmallest:
		return "smallest"
	default:
		return "unknown"
	}
}

// ParseSortBy parses an ordering name.
func ParseSortBy(s string) (SortBy, error) {
	switch strings.ToLower(s) {
	case "newest", "date", "":
		return SortNewest, nil
	case "oldest":
		return SortOldest, nil
	case "largest", "size":
		return SortLargest, nil
	case "smallest":
		return SortSmallest, nil
	default:
		return SortNewest, fmt.Errorf("unknown sort order %q", s)
	}
}

// Sort returns a sorted copy of records. Ties keep input order.
func Sort(records []media.Record, by SortBy) []media.Record {
	out := make([]media.Record, len(records))
	copy(out, records)

	var less func(a, b media.Record) bool
	switch by {
	case SortOldest:
		less = func(a, b media.Record) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortLargest:
		less = func(a, b media.Record) bool { return a.Size > b.Size }
	case SortSmallest:
		less = func(a, b media.Record) bool { return a.Size < b.Size }
	default:
		less = func(a, b media.Record) bool { return a.CreatedAt.After(b.CreatedAt) }
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
