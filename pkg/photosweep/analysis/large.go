package analysis

import (
	"math"
	"sort"

	"github.com/jamesainslie/photosweep/pkg/photosweep/catalog"
	"github.com/jamesainslie/photosweep/pkg/photosweep/media"
	"github.com/jamesainslie/photosweep/pkg/photosweep/types"
)

// Large-file threshold bounds, in megabytes.
const (
	MinThresholdMB     = 5.0
	MaxThresholdMB     = 100.0
	ThresholdStepMB    = 5.0
	DefaultThresholdMB = 10.0
)

// Threshold is the large-file bound in megabytes, as set by the user.
type Threshold float64

// DefaultThreshold returns the 10 MB default.
func DefaultThreshold() Threshold { return Threshold(DefaultThresholdMB) }

// ClampThreshold snaps mb into [MinThresholdMB, MaxThresholdMB] on a
// ThresholdStepMB grid. NaN yields the default.
func ClampThreshold(mb float64) Threshold {
	if math.IsNaN(mb) {
		return DefaultThreshold()
	}
	mb = math.Round(mb/ThresholdStepMB) * ThresholdStepMB
	return Threshold(min(max(mb, MinThresholdMB), MaxThresholdMB))
}

// MB returns the threshold in megabytes.
func (t Threshold) MB() float64 { return float64(t) }

// Bytes converts the threshold to bytes, counting 1 MB as 1024*1024.
func (t Threshold) Bytes() int64 { return types.MegabytesToBytes(float64(t)) }

// Valid reports whether t is in range and on the step grid.
func (t Threshold) Valid() bool {
	return t == ClampThreshold(float64(t))
}

// FindLargeFiles returns every record of at least minimumBytes, largest
// first. Equal sizes keep load order. A negative minimum is treated as 0.
func FindLargeFiles(snap *catalog.Snapshot, minimumBytes int64) []media.Record {
	if snap == nil {
		return nil
	}
	minimumBytes = max(minimumBytes, 0)

	var out []media.Record
	for _, r := range snap.All() {
		if r.Size >= minimumBytes {
			out = append(out, r)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Size > out[j].Size
	})
	return out
}

// FindScreenshots returns the snapshot's screenshot photos in load order.
func FindScreenshots(snap *catalog.Snapshot) []media.Record {
	if snap == nil {
		return nil
	}
	var out []media.Record
	for _, r := range snap.Photos() {
		if r.IsScreenshot {
			out = append(out, r)
		}
	}
	return out
}
