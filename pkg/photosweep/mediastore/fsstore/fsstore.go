// Package fsstore implements media.Store over a directory tree.
//
// Every photo or video under the library root becomes one record whose ID
// is its slash-separated path relative to the root. Capture times and
// dimensions come from EXIF, image headers or the movie header box;
// parsed metadata is cached in badger and reused while a file's size and
// mtime are unchanged.
package fsstore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/gobwas/glob"

	"github.com/jamesainslie/photosweep/pkg/photosweep/logging"
	"github.com/jamesainslie/photosweep/pkg/photosweep/media"
	"github.com/jamesainslie/photosweep/pkg/photosweep/trash"
)

// FavoritesFile lists favorite items, one relative path per line, at the
// library root. Blank lines and lines starting with '#' are ignored.
const FavoritesFile = ".favorites"

// DefaultScreenshotPatterns match base names (lower-cased) of screenshots
// saved by common desktop and phone tools.
var DefaultScreenshotPatterns = []string{
	"screenshot*",
	"screen shot*",
	"screen_shot*",
	"scr_*",
	"screencapture*",
}

// ErrNotFound is returned by Delete when an ID does not name a file in
// the library.
var ErrNotFound = errors.New("media file not found")

// ErrInvalidID is returned by Delete for IDs that escape the library root.
var ErrInvalidID = errors.New("invalid media id")

// Options configures a Store.
type Options struct {
	// Root is the library directory.
	Root string

	// Exclude holds glob patterns matched against "/"-prefixed relative
	// paths, e.g. "**/.thumbnails/**".
	Exclude []string

	// ScreenshotPatterns override DefaultScreenshotPatterns when non-nil.
	ScreenshotPatterns []string

	// CachePath is the badger directory for parsed metadata. Empty
	// disables caching.
	CachePath string

	// UseTrash moves deleted files to the system trash instead of
	// removing them.
	UseTrash bool
}

// Store is a directory-backed media library.
type Store struct {
	root        string
	exclude     []glob.Glob
	screenshots []glob.Glob
	useTrash    bool
	remove      func(context.Context, string) error
	cache       *metaCache
	log         *logging.Logger

	// Walk errors from the last FetchAll.
	errMu    sync.Mutex
	walkErrs []error
}

// Open creates a Store for opts.Root. The root does not have to exist
// yet; AuthorizationState reports NotDetermined until it does.
func Open(opts Options) (*Store, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving library root: %w", err)
	}

	exclude, err := compileAll(opts.Exclude)
	if err != nil {
		return nil, fmt.Errorf("compiling exclude patterns: %w", err)
	}

	patterns := opts.ScreenshotPatterns
	if patterns == nil {
		patterns = DefaultScreenshotPatterns
	}
	screenshots, err := compileAll(patterns)
	if err != nil {
		return nil, fmt.Errorf("compiling screenshot patterns: %w", err)
	}

	s := &Store{
		root:        root,
		exclude:     exclude,
		screenshots: screenshots,
		useTrash:    opts.UseTrash,
		remove:      trash.Remove,
		log:         logging.Get("fsstore").With("root", root),
	}
	if opts.UseTrash {
		s.remove = trash.MoveToTrash
	}

	if opts.CachePath != "" {
		if err := os.MkdirAll(opts.CachePath, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
		c, err := openMetaCache(opts.CachePath)
		if err != nil {
			return nil, fmt.Errorf("opening metadata cache: %w", err)
		}
		s.cache = c
	}

	return s, nil
}

func compileAll(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		if p == "" {
			continue
		}
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// Root returns the absolute library root.
func (s *Store) Root() string { return s.root }

// Close releases the metadata cache.
func (s *Store) Close() error {
	if s.cache == nil {
		return nil
	}
	return s.cache.close()
}

// AuthorizationState reports the caller's access to the library root.
func (s *Store) AuthorizationState(_ context.Context) media.AuthorizationState {
	return authorization(s.root)
}

// WalkErrors returns the per-path errors skipped by the last FetchAll.
func (s *Store) WalkErrors() []error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return slices.Clone(s.walkErrs)
}

func (s *Store) addError(path string, err error) {
	s.errMu.Lock()
	s.walkErrs = append(s.walkErrs, fmt.Errorf("%s: %w", path, err))
	s.errMu.Unlock()
}

// FetchAll walks the library and returns one record per photo or video,
// ordered by ID. Unreadable entries are skipped and reported through
// WalkErrors.
func (s *Store) FetchAll(ctx context.Context) ([]media.Record, error) {
	if !authorization(s.root).CanRead() {
		return nil, media.ErrNotAuthorized
	}

	s.errMu.Lock()
	s.walkErrs = nil
	s.errMu.Unlock()

	favorites := s.readFavorites()
	start := time.Now()

	var (
		mu      sync.Mutex
		records []media.Record
		fresh   = make(map[string]*cachedMeta)
		hits    int
	)

	conf := fastwalk.Config{Follow: false}
	walkErr := fastwalk.Walk(&conf, s.root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			s.addError(path, err)
			return nil
		}
		if path == s.root {
			return nil
		}

		rel := s.relID(path)
		if s.isExcluded(rel) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		kind, ok := classify(d.Name())
		if !ok && filepath.Ext(d.Name()) == "" {
			kind, ok = sniff(path)
		}
		if !ok {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			s.addError(path, err)
			return nil
		}

		meta, cached, err := s.metadataFor(path, rel, kind, info)
		if err != nil {
			s.addError(path, err)
			return nil
		}

		rec := media.NewRecord(media.Attributes{
			ID:           rel,
			Size:         info.Size(),
			CreatedAt:    meta.createdAt,
			Kind:         kind,
			Duration:     meta.duration,
			PixelWidth:   meta.width,
			PixelHeight:  meta.height,
			IsScreenshot: kind == media.KindPhoto && s.isScreenshot(d.Name()),
			IsFavorite:   favorites[rel],
		})

		mu.Lock()
		records = append(records, rec)
		if cached {
			hits++
		} else {
			fresh[rel] = meta.toCache(info.Size(), info.ModTime().UnixNano())
		}
		mu.Unlock()
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walking library: %w", walkErr)
	}

	if s.cache != nil {
		if err := s.cache.putBatch(s.root, fresh); err != nil {
			s.log.Warn("metadata cache update failed", "error", err)
		}
	}

	slices.SortFunc(records, func(a, b media.Record) int {
		return strings.Compare(a.ID, b.ID)
	})

	s.log.Debug("library walked",
		"records", len(records),
		"cache_hits", hits,
		"parsed", len(fresh),
		"errors", len(s.WalkErrors()),
		"elapsed", time.Since(start),
	)
	return records, nil
}

// metadataFor returns metadata from the cache when it is still fresh, or
// parses the file. cached reports a cache hit.
func (s *Store) metadataFor(path, rel string, kind media.Kind, info fs.FileInfo) (metadata, bool, error) {
	mtime := info.ModTime().UnixNano()
	if s.cache != nil {
		if c, err := s.cache.get(s.root, rel); err == nil && c.fresh(info.Size(), mtime) {
			return fromCache(c), true, nil
		}
	}

	meta, err := readMetadata(path, kind)
	if err != nil {
		return metadata{}, false, err
	}
	if meta.createdAt.IsZero() {
		meta.createdAt = info.ModTime()
	}
	return meta, false, nil
}

func (s *Store) relID(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (s *Store) isExcluded(rel string) bool {
	target := "/" + rel
	for _, g := range s.exclude {
		if g.Match(target) {
			return true
		}
	}
	return false
}

func (s *Store) isScreenshot(name string) bool {
	lower := strings.ToLower(name)
	for _, g := range s.screenshots {
		if g.Match(lower) {
			return true
		}
	}
	return false
}

func (s *Store) readFavorites() map[string]bool {
	favorites := make(map[string]bool)

	f, err := os.Open(filepath.Join(s.root, FavoritesFile))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("reading favorites", "error", err)
		}
		return favorites
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		favorites[strings.TrimPrefix(filepath.ToSlash(line), "./")] = true
	}
	if err := scanner.Err(); err != nil {
		s.log.Warn("reading favorites", "error", err)
	}
	return favorites
}

// Delete removes the files named by ids. Every ID is checked before any
// file is touched, so a missing or invalid ID leaves the library as it
// was. A removal that fails part way stops there: files already removed
// stay removed and their cache entries are dropped. Write access to the
// root is required.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	if state := authorization(s.root); state != media.Authorized {
		return fmt.Errorf("delete requires full access (state: %s): %w", state, media.ErrNotAuthorized)
	}

	paths := make([]string, len(ids))
	for i, id := range ids {
		path, err := s.pathFor(id)
		if err != nil {
			return err
		}
		info, err := os.Lstat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("checking %s: %w", id, err)
		}
		if !info.Mode().IsRegular() {
			return fmt.Errorf("%w: %s is not a regular file", ErrInvalidID, id)
		}
		paths[i] = path
	}

	deleted := make([]string, 0, len(ids))
	defer func() {
		if s.cache == nil || len(deleted) == 0 {
			return
		}
		if err := s.cache.deleteKeys(s.root, deleted); err != nil {
			s.log.Warn("metadata cache cleanup failed", "error", err)
		}
	}()

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.remove(ctx, path); err != nil {
			s.log.Error("delete failed", "id", ids[i], "deleted_before_failure", len(deleted), "error", err)
			return fmt.Errorf("deleting %s after %d of %d deleted: %w", ids[i], len(deleted), len(ids), err)
		}
		deleted = append(deleted, ids[i])
	}

	s.log.Info("files deleted", "count", len(deleted), "trash", s.useTrash)
	return nil
}

func (s *Store) pathFor(id string) (string, error) {
	local := filepath.FromSlash(id)
	if id == "" || !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return filepath.Join(s.root, local), nil
}

var _ media.Store = (*Store)(nil)
