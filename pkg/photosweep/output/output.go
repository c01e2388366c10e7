// Package output renders photosweep reports in several formats (pretty,
// plain, json, yaml).
//
// Formatters live in a registry and are selected by name at runtime:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, report); err != nil {
//	    return err
//	}
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jamesainslie/photosweep/pkg/photosweep/analysis"
	"github.com/jamesainslie/photosweep/pkg/photosweep/catalog"
	"github.com/jamesainslie/photosweep/pkg/photosweep/media"
	"github.com/jamesainslie/photosweep/pkg/photosweep/selection"
)

// Item is one media record prepared for display.
type Item struct {
	ID         string    `json:"id" yaml:"id"`
	Kind       string    `json:"kind" yaml:"kind"`
	Size       int64     `json:"size" yaml:"size"`
	SizeHuman  string    `json:"size_human" yaml:"size_human"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	Resolution string    `json:"resolution,omitempty" yaml:"resolution,omitempty"`
	Duration   string    `json:"duration,omitempty" yaml:"duration,omitempty"`
	Screenshot bool      `json:"screenshot,omitempty" yaml:"screenshot,omitempty"`
	Favorite   bool      `json:"favorite,omitempty" yaml:"favorite,omitempty"`

	// Selected marks items chosen for deletion.
	Selected bool `json:"selected,omitempty" yaml:"selected,omitempty"`
}

// Group is a duplicate or burst group prepared for display.
type Group struct {
	Items       []Item `json:"items" yaml:"items"`
	Size        int64  `json:"size" yaml:"size"`
	Reclaimable int64  `json:"reclaimable" yaml:"reclaimable"`
}

// Summary is the storage breakdown of a library.
type Summary struct {
	Photos     int   `json:"photos" yaml:"photos"`
	Videos     int   `json:"videos" yaml:"videos"`
	PhotoBytes int64 `json:"photo_bytes" yaml:"photo_bytes"`
	VideoBytes int64 `json:"video_bytes" yaml:"video_bytes"`
	TotalBytes int64 `json:"total_bytes" yaml:"total_bytes"`
}

// Report is everything a command shows the user.
type Report struct {
	Title   string `json:"title" yaml:"title"`
	Library string `json:"library" yaml:"library"`

	Summary *Summary `json:"summary,omitempty" yaml:"summary,omitempty"`
	Groups  []Group  `json:"groups,omitempty" yaml:"groups,omitempty"`
	Files   []Item   `json:"files,omitempty" yaml:"files,omitempty"`

	// Threshold is the large-file bound, e.g. "10 MB".
	Threshold string `json:"threshold,omitempty" yaml:"threshold,omitempty"`

	PotentialSavings int64 `json:"potential_savings,omitempty" yaml:"potential_savings,omitempty"`

	Selected      int   `json:"selected,omitempty" yaml:"selected,omitempty"`
	SelectedBytes int64 `json:"selected_bytes,omitempty" yaml:"selected_bytes,omitempty"`

	Deleted int  `json:"deleted,omitempty" yaml:"deleted,omitempty"`
	DryRun  bool `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`

	Elapsed  time.Duration `json:"elapsed" yaml:"elapsed"`
	Warnings []string      `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// NewItem converts a record. Selected is set when sel contains it.
func NewItem(r media.Record, sel *selection.Set) Item {
	it := Item{
		ID:         r.ID,
		Kind:       r.Kind.String(),
		Size:       r.Size,
		SizeHuman:  r.HumanSize(),
		CreatedAt:  r.CreatedAt,
		Duration:   r.FormattedDuration(),
		Screenshot: r.IsScreenshot,
		Favorite:   r.IsFavorite,
		Selected:   sel != nil && sel.Contains(r.ID),
	}
	if r.PixelWidth > 0 && r.PixelHeight > 0 {
		it.Resolution = r.Resolution()
	}
	return it
}

// NewItems converts records in order.
func NewItems(records []media.Record, sel *selection.Set) []Item {
	items := make([]Item, len(records))
	for i, r := range records {
		items[i] = NewItem(r, sel)
	}
	return items
}

// NewGroups converts analysis groups in order.
func NewGroups(groups []analysis.Group, sel *selection.Set) []Group {
	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = Group{
			Items:       NewItems(g, sel),
			Size:        g.Size(),
			Reclaimable: g.Reclaimable(),
		}
	}
	return out
}

// NewSummary converts a catalog storage breakdown.
func NewSummary(s catalog.Stats) *Summary {
	return &Summary{
		Photos:     s.Photos,
		Videos:     s.Videos,
		PhotoBytes: s.PhotoBytes,
		VideoBytes: s.VideoBytes,
		TotalBytes: s.TotalBytes,
	}
}

// ItemCount returns the number of items across files and groups.
func (r *Report) ItemCount() int {
	n := len(r.Files)
	for _, g := range r.Groups {
		n += len(g.Items)
	}
	return n
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted report to the buffer.
	Format(w *bytes.Buffer, r *Report) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
