package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jamesainslie/photosweep/pkg/photosweep/catalog"
	"github.com/jamesainslie/photosweep/pkg/photosweep/media"
)

// ErrNotFound is returned by Get for an unknown entry ID.
var ErrNotFound = errors.New("entry not found")

// Manifest manages operation logging to the filesystem.
type Manifest struct {
	dir     string
	library string
	mu      sync.Mutex
}

// New creates a new Manifest with the given directory.
// The directory is not created until EnsureDir is called.
func New(dir string) (*Manifest, error) {
	if dir == "" {
		return nil, errors.New("manifest directory cannot be empty")
	}
	return &Manifest{dir: dir}, nil
}

// WithLibrary returns a manifest that stamps entries with library.
func (m *Manifest) WithLibrary(library string) *Manifest {
	return &Manifest{dir: m.dir, library: library}
}

// Dir returns the manifest directory.
func (m *Manifest) Dir() string { return m.dir }

// EnsureDir creates the manifest directory if it does not exist.
func (m *Manifest) EnsureDir() error {
	return os.MkdirAll(m.dir, 0o755)
}

// LogScan records a library load from its storage summary.
func (m *Manifest) LogScan(stats catalog.Stats) (*Entry, error) {
	return m.log(OpScan, nil, Summary{
		Photos:     stats.Photos,
		Videos:     stats.Videos,
		TotalItems: stats.Total(),
		TotalBytes: stats.TotalBytes,
	})
}

// LogDelete records the removal of records.
func (m *Manifest) LogDelete(records []media.Record) (*Entry, error) {
	items := ItemsFromRecords(records)
	return m.log(OpDelete, items, summarize(items))
}

// RecordDeletion lets a Manifest serve as a deletion recorder.
func (m *Manifest) RecordDeletion(_ context.Context, records []media.Record) error {
	_, err := m.LogDelete(records)
	return err
}

// log creates and persists a manifest entry for the given operation.
func (m *Manifest) log(op OperationType, items []ItemRecord, summary Summary) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := &Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Operation: op,
		Library:   m.library,
		Items:     items,
		Summary:   summary,
	}

	if err := m.EnsureDir(); err != nil {
		return nil, fmt.Errorf("failed to create manifest directory: %w", err)
	}
	if err := m.writeEntry(entry); err != nil {
		return nil, fmt.Errorf("failed to write manifest entry: %w", err)
	}

	return entry, nil
}

// writeEntry writes an entry to a JSON file in the manifest directory.
func (m *Manifest) writeEntry(entry *Entry) error {
	filePath := filepath.Join(m.dir, entryFilename(entry))

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	// Write atomically using a temp file and rename
	tmpPath := filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// entryFilename is "<op>-<timestamp>-<id>.json", so a directory listing
// sorts by operation then time.
func entryFilename(entry *Entry) string {
	return fmt.Sprintf("%s-%s-%s.json", entry.Operation, entry.Timestamp.Format("2006-01-02T15-04-05"), entry.ID)
}

// List returns all manifest entries sorted by timestamp descending (newest first).
// If limit is 0 or negative, all entries are returned.
func (m *Manifest) List(limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	files, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read manifest directory: %w", err)
	}

	entries := []Entry{}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}

		entry, err := m.readEntryFile(f.Name())
		if err != nil {
			// Skip files that can't be parsed
			continue
		}
		entries = append(entries, *entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	return entries, nil
}

// Get retrieves a specific entry by ID.
func (m *Manifest) Get(id string) (*Entry, error) {
	if id == "" {
		return nil, errors.New("entry ID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	files, err := os.ReadDir(m.dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read manifest directory: %w", err)
	}

	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), "-"+id+".json") {
			continue
		}
		return m.readEntryFile(f.Name())
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// readEntryFile reads and parses a manifest entry from a JSON file.
func (m *Manifest) readEntryFile(filename string) (*Entry, error) {
	data, err := os.ReadFile(filepath.Join(m.dir, filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
	}

	return &entry, nil
}

// Cleanup removes entries whose files are older than retentionDays and
// returns how many were removed. A non-positive retention keeps everything.
func (m *Manifest) Cleanup(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	files, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read manifest directory: %w", err)
	}

	removed := 0
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}

		info, err := f.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(m.dir, f.Name())); err == nil {
				removed++
			}
		}
	}

	return removed, nil
}
