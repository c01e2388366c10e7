package analysis

import (
	"sort"
	"time"

	"github.com/jamesainslie/photosweep/pkg/photosweep/media"
)

// BurstWindow is the largest gap between consecutive shots of one burst.
const BurstWindow = 2 * time.Second

// FindBursts clusters photos taken in quick succession.
//
// Photos are ordered by capture time (stable for equal times). A photo
// joins the running cluster when it was taken at most BurstWindow after
// the previous photo, so a burst can span far more than BurstWindow as
// long as no single gap exceeds it. Clusters of one are dropped.
func FindBursts(photos []media.Record) []Group {
	if len(photos) < 2 {
		return nil
	}

	sorted := make([]media.Record, len(photos))
	copy(sorted, photos)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	var groups []Group
	current := Group{sorted[0]}
	flush := func() {
		if len(current) >= 2 {
			groups = append(groups, current)
		}
	}

	for _, p := range sorted[1:] {
		prev := current[len(current)-1]
		if p.CreatedAt.Sub(prev.CreatedAt) <= BurstWindow {
			current = append(current, p)
			continue
		}
		flush()
		current = Group{p}
	}
	flush()

	return groups
}
