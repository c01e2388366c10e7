// Package manifest keeps a history of photosweep operations as JSON files,
// one per entry.
package manifest

import (
	"time"

	"github.com/jamesainslie/photosweep/pkg/photosweep/media"
)

// OperationType represents the type of operation.
type OperationType string

const (
	// OpScan records a library load.
	OpScan OperationType = "scan"
	// OpDelete records a completed deletion.
	OpDelete OperationType = "delete"
)

// Entry represents a single manifest entry.
type Entry struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Operation OperationType `json:"operation"`
	Library   string        `json:"library,omitempty"`
	Items     []ItemRecord  `json:"items,omitempty"`
	Summary   Summary       `json:"summary"`
}

// ItemRecord is the manifest's copy of a media record.
type ItemRecord struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
	Fingerprint string    `json:"fingerprint,omitempty"`
}

// Summary contains operation summary.
type Summary struct {
	Photos     int   `json:"photos"`
	Videos     int   `json:"videos"`
	TotalItems int   `json:"total_items"`
	TotalBytes int64 `json:"total_bytes"`
}

// ItemsFromRecords converts media records for a manifest entry.
func ItemsFromRecords(records []media.Record) []ItemRecord {
	items := make([]ItemRecord, len(records))
	for i, r := range records {
		items[i] = ItemRecord{
			ID:          r.ID,
			Kind:        r.Kind.String(),
			Size:        r.Size,
			CreatedAt:   r.CreatedAt,
			Fingerprint: r.Fingerprint,
		}
	}
	return items
}

// summarize totals items by kind.
func summarize(items []ItemRecord) Summary {
	var s Summary
	for _, it := range items {
		if it.Kind == media.KindVideo.String() {
			s.Videos++
		} else {
			s.Photos++
		}
		s.TotalBytes += it.Size
	}
	s.TotalItems = len(items)
	return s
}
