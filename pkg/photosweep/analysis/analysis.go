// Package analysis finds storage-reclaiming opportunities in a catalog
// snapshot: duplicate groups, large files, burst clusters and screenshots.
//
// Every function here is pure. It reads an immutable snapshot or record
// slice and never fails; empty input yields an empty result.
package analysis

import (
	"fmt"
	"strings"

	"github.com/jamesainslie/photosweep/pkg/photosweep/media"
)

// Group is an ordered run of related records. Groups returned by this
// package always hold at least two members.
type Group []media.Record

// First returns the member kept by a keep-one cleanup.
func (g Group) First() media.Record {
	if len(g) == 0 {
		return media.Record{}
	}
	return g[0]
}

// IDs returns the member IDs in group order.
func (g Group) IDs() []string {
	ids := make([]string, len(g))
	for i, r := range g {
		ids[i] = r.ID
	}
	return ids
}

// Size returns the sum of member sizes.
func (g Group) Size() int64 {
	var total int64
	for _, r := range g {
		total += r.Size
	}
	return total
}

// Reclaimable is the space freed by deleting all but the first member,
// estimated from the first member's size.
func (g Group) Reclaimable() int64 {
	if len(g) < 2 {
		return 0
	}
	return g[0].Size * int64(len(g)-1)
}

// PotentialSavings sums Reclaimable over groups.
func PotentialSavings(groups []Group) int64 {
	var total int64
	for _, g := range groups {
		total += g.Reclaimable()
	}
	return total
}

// Category names a cleanup view.
type Category string

// Cleanup categories.
const (
	CategoryDuplicates  Category = "duplicates"
	CategoryLarge       Category = "large"
	CategoryScreenshots Category = "screenshots"
	CategorySimilar     Category = "similar"
)

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{CategoryDuplicates, CategoryLarge, CategoryScreenshots, CategorySimilar}
}

// Grouped reports whether the category produces groups rather than a flat
// list of files.
func (c Category) Grouped() bool {
	return c == CategoryDuplicates || c == CategorySimilar
}

// Title returns the human-readable name of the category.
func (c Category) Title() string {
	switch c {
	case CategoryDuplicates:
		return "Duplicates"
	case CategoryLarge:
		return "Large Files"
	case CategoryScreenshots:
		return "Screenshots"
	case CategorySimilar:
		return "Similar Photos"
	default:
		return string(c)
	}
}

// ParseCategory accepts a category name, case-insensitively. "bursts" and
// "large-files" are accepted as aliases.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "duplicates", "dupes":
		return CategoryDuplicates, nil
	case "large", "large-files", "large_files":
		return CategoryLarge, nil
	case "screenshots":
		return CategoryScreenshots, nil
	case "similar", "bursts":
		return CategorySimilar, nil
	default:
		return "", fmt.Errorf("unknown category %q", s)
	}
}
