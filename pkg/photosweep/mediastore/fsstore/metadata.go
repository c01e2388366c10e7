package fsstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Decoders for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/jamesainslie/photosweep/pkg/photosweep/media"
)

var photoExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true,
	".tif": true, ".tiff": true, ".webp": true, ".heic": true, ".heif": true,
	".dng": true, ".cr2": true, ".nef": true, ".arw": true,
}

var videoExtensions = map[string]bool{
	".mp4": true, ".m4v": true, ".mov": true, ".3gp": true,
	".avi": true, ".mkv": true, ".webm": true,
}

// classify returns the media kind for a file name. ok is false for files
// that are neither photos nor videos.
func classify(name string) (kind media.Kind, ok bool) {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case photoExtensions[ext]:
		return media.KindPhoto, true
	case videoExtensions[ext]:
		return media.KindVideo, true
	default:
		return media.KindPhoto, false
	}
}

// sniff classifies a file without a recognised extension by its content.
func sniff(path string) (kind media.Kind, ok bool) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return media.KindPhoto, false
	}
	switch {
	case strings.HasPrefix(mt.String(), "image/"):
		return media.KindPhoto, true
	case strings.HasPrefix(mt.String(), "video/"):
		return media.KindVideo, true
	default:
		return media.KindPhoto, false
	}
}

// metadata is what readMetadata extracts from a file's contents.
type metadata struct {
	createdAt time.Time
	width     int
	height    int
	duration  time.Duration
}

func (m metadata) toCache(size, mtime int64) *cachedMeta {
	c := &cachedMeta{
		Version:  cacheVersion,
		Size:     size,
		Mtime:    mtime,
		Width:    m.width,
		Height:   m.height,
		Duration: int64(m.duration),
	}
	if !m.createdAt.IsZero() {
		c.CreatedAt = m.createdAt.UnixNano()
	}
	return c
}

func fromCache(c *cachedMeta) metadata {
	m := metadata{width: c.Width, height: c.Height, duration: time.Duration(c.Duration)}
	if c.CreatedAt != 0 {
		m.createdAt = time.Unix(0, c.CreatedAt)
	}
	return m
}

// readMetadata parses capture time, dimensions and duration from path.
// Missing values are left zero; a file that cannot be opened is an error.
func readMetadata(path string, kind media.Kind) (metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return metadata{}, err
	}
	defer func() { _ = f.Close() }()

	if kind == media.KindVideo {
		return readVideoMetadata(f)
	}
	return readPhotoMetadata(f)
}

func readPhotoMetadata(f *os.File) (metadata, error) {
	var m metadata

	if ef, err := exif.Decode(f); err == nil {
		if tm, err := ef.DateTime(); err == nil {
			m.createdAt = tm
		}
		m.width = exifInt(ef, exif.PixelXDimension)
		m.height = exifInt(ef, exif.PixelYDimension)
	}

	if m.width > 0 && m.height > 0 {
		return m, nil
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return m, err
	}
	if cfg, _, err := image.DecodeConfig(f); err == nil {
		m.width, m.height = cfg.Width, cfg.Height
	}
	return m, nil
}

func exifInt(ef *exif.Exif, field exif.FieldName) int {
	tag, err := ef.Get(field)
	if err != nil {
		return 0
	}
	v, err := tag.Int(0)
	if err != nil {
		return 0
	}
	return v
}

// QuickTime epoch (1904-01-01) to Unix epoch, in seconds.
const macEpochOffset = 2082844800

var errNoMovieHeader = errors.New("no movie header")

// readVideoMetadata reads creation time and duration from the mvhd box of
// an ISO base media file (mp4, mov, m4v, 3gp). Other containers yield
// empty metadata.
func readVideoMetadata(f *os.File) (metadata, error) {
	var m metadata

	info, err := f.Stat()
	if err != nil {
		return m, err
	}

	moov, err := findBox(f, 0, info.Size(), "moov")
	if err != nil {
		return m, nil
	}
	mvhd, err := findBox(f, moov.body, moov.end, "mvhd")
	if err != nil {
		return m, nil
	}

	hdr := make([]byte, 32)
	n, err := f.ReadAt(hdr, mvhd.body)
	if err != nil && !errors.Is(err, io.EOF) {
		return m, nil
	}
	hdr = hdr[:n]

	var created uint64
	var timescale uint32
	var units uint64
	switch {
	case len(hdr) >= 20 && hdr[0] == 0:
		created = uint64(binary.BigEndian.Uint32(hdr[4:8]))
		timescale = binary.BigEndian.Uint32(hdr[12:16])
		units = uint64(binary.BigEndian.Uint32(hdr[16:20]))
	case len(hdr) >= 32 && hdr[0] == 1:
		created = binary.BigEndian.Uint64(hdr[4:12])
		timescale = binary.BigEndian.Uint32(hdr[20:24])
		units = binary.BigEndian.Uint64(hdr[24:32])
	default:
		return m, nil
	}

	if created > macEpochOffset {
		m.createdAt = time.Unix(int64(created-macEpochOffset), 0)
	}
	if timescale > 0 {
		m.duration = time.Duration(float64(units) / float64(timescale) * float64(time.Second))
	}
	return m, nil
}

type box struct {
	body int64
	end  int64
}

// findBox scans sibling boxes in [start, end) for typ.
func findBox(r io.ReaderAt, start, end int64, typ string) (box, error) {
	hdr := make([]byte, 16)
	for off := start; off+8 <= end; {
		if _, err := r.ReadAt(hdr[:8], off); err != nil {
			return box{}, err
		}
		size := int64(binary.BigEndian.Uint32(hdr[:4]))
		name := string(hdr[4:8])
		headerLen := int64(8)

		switch size {
		case 0:
			size = end - off
		case 1:
			if _, err := r.ReadAt(hdr[8:16], off+8); err != nil {
				return box{}, err
			}
			size = int64(binary.BigEndian.Uint64(hdr[8:16]))
			headerLen = 16
		}
		if size < headerLen {
			return box{}, fmt.Errorf("malformed %q box at %d", name, off)
		}

		if name == typ {
			return box{body: off + headerLen, end: min(off+size, end)}, nil
		}
		off += size
	}
	return box{}, errNoMovieHeader
}
