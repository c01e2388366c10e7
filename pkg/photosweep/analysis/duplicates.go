package analysis

import (
	"sort"

	"github.com/jamesainslie/photosweep/pkg/photosweep/catalog"
)

// FindDuplicates groups the snapshot's records by fingerprint.
//
// Members keep load order. Groups are ordered by the size of their first
// member, largest first; groups of equal first-member size keep the order
// in which their fingerprint was first seen. Records without a fingerprint
// never group.
//
// The fingerprint is capture time plus pixel dimensions, not a content
// hash: unrelated items shot in the same instant at the same resolution
// will group, and re-encoded copies with different metadata will not.
func FindDuplicates(snap *catalog.Snapshot) []Group {
	if snap == nil {
		return nil
	}

	var order []string
	buckets := make(map[string]Group)
	for _, r := range snap.All() {
		if r.Fingerprint == "" {
			continue
		}
		if _, seen := buckets[r.Fingerprint]; !seen {
			order = append(order, r.Fingerprint)
		}
		buckets[r.Fingerprint] = append(buckets[r.Fingerprint], r)
	}

	groups := make([]Group, 0, len(order))
	for _, fp := range order {
		if g := buckets[fp]; len(g) >= 2 {
			groups = append(groups, g)
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i][0].Size > groups[j][0].Size
	})

	return groups
}
