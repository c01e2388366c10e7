package catalog

import (
	"github.com/jamesainslie/photosweep/pkg/photosweep/media"
)

// Stats summarizes a snapshot's storage use per kind.
type Stats struct {
	Photos     int   `json:"photos" yaml:"photos"`
	Videos     int   `json:"videos" yaml:"videos"`
	PhotoBytes int64 `json:"photo_bytes" yaml:"photo_bytes"`
	VideoBytes int64 `json:"video_bytes" yaml:"video_bytes"`
	TotalBytes int64 `json:"total_bytes" yaml:"total_bytes"`
}

// Total returns the number of records.
func (s Stats) Total() int {
	return s.Photos + s.Videos
}

// Snapshot is an immutable view of the catalog at one generation.
// Slices returned by its accessors are copies and safe to modify.
type Snapshot struct {
	generation uint64
	records    []media.Record
	photos     []int // indexes into records
	videos     []int
	byID       map[string]int
	stats      Stats
}

// newSnapshot indexes records, keeping the first occurrence of any
// repeated ID. It returns the snapshot and the number of dropped repeats.
func newSnapshot(generation uint64, records []media.Record) (*Snapshot, int) {
	s := &Snapshot{
		generation: generation,
		records:    make([]media.Record, 0, len(records)),
		byID:       make(map[string]int, len(records)),
	}

	dropped := 0
	for _, r := range records {
		if _, dup := s.byID[r.ID]; dup {
			dropped++
			continue
		}
		idx := len(s.records)
		s.records = append(s.records, r)
		s.byID[r.ID] = idx

		switch r.Kind {
		case media.KindVideo:
			s.videos = append(s.videos, idx)
			s.stats.Videos++
			s.stats.VideoBytes += r.Size
		default:
			s.photos = append(s.photos, idx)
			s.stats.Photos++
			s.stats.PhotoBytes += r.Size
		}
		s.stats.TotalBytes += r.Size
	}

	return s, dropped
}

// Generation increases with every applied load or removal.
func (s *Snapshot) Generation() uint64 { return s.generation }

// Len returns the number of records.
func (s *Snapshot) Len() int { return len(s.records) }

// TotalSize returns the sum of all record sizes.
func (s *Snapshot) TotalSize() int64 { return s.stats.TotalBytes }

// PhotoCount returns the number of photos.
func (s *Snapshot) PhotoCount() int { return s.stats.Photos }

// VideoCount returns the number of videos.
func (s *Snapshot) VideoCount() int { return s.stats.Videos }

// Stats returns the per-kind storage summary.
func (s *Snapshot) Stats() Stats { return s.stats }

// All returns every record in load order.
func (s *Snapshot) All() []media.Record {
	out := make([]media.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Photos returns the photo partition in load order.
func (s *Snapshot) Photos() []media.Record {
	return s.pick(s.photos)
}

// Videos returns the video partition in load order.
func (s *Snapshot) Videos() []media.Record {
	return s.pick(s.videos)
}

func (s *Snapshot) pick(idx []int) []media.Record {
	out := make([]media.Record, len(idx))
	for i, j := range idx {
		out[i] = s.records[j]
	}
	return out
}

// Get returns the record with the given ID.
func (s *Snapshot) Get(id string) (media.Record, bool) {
	idx, ok := s.byID[id]
	if !ok {
		return media.Record{}, false
	}
	return s.records[idx], true
}

// Contains reports whether id is present.
func (s *Snapshot) Contains(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Resolve returns the records for ids that are present, in load order.
// Unknown and repeated IDs are dropped.
func (s *Snapshot) Resolve(ids []string) []media.Record {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.byID[id]; ok {
			want[id] = struct{}{}
		}
	}
	if len(want) == 0 {
		return nil
	}

	out := make([]media.Record, 0, len(want))
	for _, r := range s.records {
		if _, ok := want[r.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}

// without returns a new snapshot excluding ids, and the number removed.
func (s *Snapshot) without(generation uint64, ids map[string]struct{}) (*Snapshot, int) {
	kept := make([]media.Record, 0, len(s.records))
	for _, r := range s.records {
		if _, drop := ids[r.ID]; !drop {
			kept = append(kept, r)
		}
	}
	removed := len(s.records) - len(kept)
	next, _ := newSnapshot(generation, kept)
	return next, removed
}
