// Package media defines the media record model shared by every photosweep
// component, together with the Store contract that external media
// libraries implement.
package media

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jamesainslie/photosweep/pkg/photosweep/types"
)

// Kind distinguishes photos from videos.
type Kind int

const (
	// KindPhoto is a still image.
	KindPhoto Kind = iota
	// KindVideo is a video clip.
	KindVideo
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindPhoto:
		return "photo"
	case KindVideo:
		return "video"
	default:
		return "unknown"
	}
}

// ParseKind parses "photo" or "video" (case-insensitive).
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "photo", "image":
		return KindPhoto, nil
	case "video":
		return KindVideo, nil
	default:
		return KindPhoto, fmt.Errorf("unknown media kind %q", s)
	}
}

// Record describes one media item. Records are immutable once built with
// NewRecord; the fingerprint is derived at construction.
type Record struct {
	// ID is the store's stable identifier for the item.
	ID string `json:"id"`

	// Size is the total byte size of the item's resources.
	Size int64 `json:"size"`

	// CreatedAt is the capture time. When the source has none it is the
	// time the record was built and CreatedAtApprox is set.
	CreatedAt time.Time `json:"created_at"`

	// CreatedAtApprox reports that CreatedAt is a load-time fallback.
	CreatedAtApprox bool `json:"created_at_approx,omitempty"`

	// Kind is photo or video.
	Kind Kind `json:"kind"`

	// Duration is the clip length; zero for photos.
	Duration time.Duration `json:"duration,omitempty"`

	PixelWidth  int `json:"pixel_width"`
	PixelHeight int `json:"pixel_height"`

	IsScreenshot bool `json:"is_screenshot,omitempty"`
	IsFavorite   bool `json:"is_favorite,omitempty"`

	// Fingerprint is the duplicate grouping key. Empty when the source had
	// no capture time.
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Attributes carries the raw values a Store reads from its backing assets.
type Attributes struct {
	ID           string
	Size         int64
	CreatedAt    time.Time // zero when unknown
	Kind         Kind
	Duration     time.Duration
	PixelWidth   int
	PixelHeight  int
	IsScreenshot bool
	IsFavorite   bool
}

// now is the fallback clock for records without a capture time.
var now = time.Now

// NewRecord builds a Record from raw attributes. Negative sizes and
// dimensions are clamped to zero. A zero CreatedAt is replaced with the
// current time and leaves the fingerprint empty.
func NewRecord(a Attributes) Record {
	r := Record{
		ID:           a.ID,
		Size:         max(a.Size, 0),
		CreatedAt:    a.CreatedAt,
		Kind:         a.Kind,
		PixelWidth:   max(a.PixelWidth, 0),
		PixelHeight:  max(a.PixelHeight, 0),
		IsScreenshot: a.IsScreenshot,
		IsFavorite:   a.IsFavorite,
	}
	if a.Kind == KindVideo {
		r.Duration = max(a.Duration, 0)
	}

	if a.CreatedAt.IsZero() {
		r.CreatedAt = now()
		r.CreatedAtApprox = true
		return r
	}

	r.Fingerprint = Fingerprint(a.CreatedAt, r.PixelWidth, r.PixelHeight)
	return r
}

// Fingerprint derives the duplicate grouping key from capture time and
// pixel dimensions: "<unix seconds>-<width>x<height>".
//
// This is a metadata heuristic, not a content hash. Unrelated items taken in
// the same instant at the same resolution collide, and true copies whose
// metadata drifted do not.
//
// NewRecord never calls Fingerprint for an item without a capture time.
// Such items get an empty fingerprint rather than a bare "-WxH" key, so
// undated items of equal dimensions are not reported as duplicates.
func Fingerprint(createdAt time.Time, width, height int) string {
	secs := float64(createdAt.UnixNano()) / float64(time.Second)
	return strconv.FormatFloat(secs, 'f', -1, 64) + "-" + strconv.Itoa(width) + "x" + strconv.Itoa(height)
}

// IsPhoto reports whether the record is a photo.
func (r Record) IsPhoto() bool { return r.Kind == KindPhoto }

// IsVideo reports whether the record is a video.
func (r Record) IsVideo() bool { return r.Kind == KindVideo }

// HumanSize returns the size formatted with IEC units.
func (r Record) HumanSize() string {
	return types.FormatSize(r.Size)
}

// Resolution returns "W × H".
func (r Record) Resolution() string {
	return fmt.Sprintf("%d × %d", r.PixelWidth, r.PixelHeight)
}

// FormattedDuration returns the clip length as "m:ss", or "" when there is
// no duration.
func (r Record) FormattedDuration() string {
	if r.Duration <= 0 {
		return ""
	}
	total := int(r.Duration / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
