package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/photosweep/pkg/photosweep/analysis"
	"github.com/jamesainslie/photosweep/pkg/photosweep/catalog"
	"github.com/jamesainslie/photosweep/pkg/photosweep/media"
	"github.com/jamesainslie/photosweep/pkg/photosweep/selection"
)

var taken = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

func sampleRecords() []media.Record {
	return []media.Record{
		media.NewRecord(media.Attributes{ID: "IMG_0001.JPG", Size: 3 << 20, CreatedAt: taken, Kind: media.KindPhoto, PixelWidth: 1080, PixelHeight: 1920}),
		media.NewRecord(media.Attributes{ID: "IMG_0002.JPG", Size: 2 << 20, CreatedAt: taken, Kind: media.KindPhoto, PixelWidth: 1080, PixelHeight: 1920, IsFavorite: true}),
		media.NewRecord(media.Attributes{ID: "MOV_0003.MOV", Size: 40 << 20, CreatedAt: taken.Add(time.Hour), Kind: media.KindVideo, Duration: 95 * time.Second}),
	}
}

func sampleReport() *Report {
	records := sampleRecords()
	groups := []analysis.Group{records[:2]}
	sel := selection.New()
	sel.SelectAllButFirstPerGroup(groups)

	return &Report{
		Title:            "Duplicates",
		Library:          "/photos",
		Groups:           NewGroups(groups, sel),
		PotentialSavings: analysis.PotentialSavings(groups),
		Selected:         sel.Count(),
		SelectedBytes:    sel.CachedSize(),
		Elapsed:          1500 * time.Millisecond,
	}
}

func TestNewItem(t *testing.T) {
	records := sampleRecords()
	sel := selection.New("MOV_0003.MOV")

	video := NewItem(records[2], sel)
	assert.Equal(t, "video", video.Kind)
	assert.Equal(t, "1:35", video.Duration)
	assert.Empty(t, video.Resolution, "unknown dimensions are omitted")
	assert.True(t, video.Selected)
	assert.Equal(t, "40 MiB", video.SizeHuman)

	photo := NewItem(records[1], nil)
	assert.Equal(t, "1080 × 1920", photo.Resolution)
	assert.True(t, photo.Favorite)
	assert.False(t, photo.Selected)
}

func TestNewGroups(t *testing.T) {
	records := sampleRecords()
	groups := NewGroups([]analysis.Group{records[:2]}, nil)

	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Items, 2)
	assert.Equal(t, int64(5<<20), groups[0].Size)
	assert.Equal(t, int64(3<<20), groups[0].Reclaimable)
}

func TestNewSummary(t *testing.T) {
	s := NewSummary(catalog.Stats{Photos: 2, Videos: 1, PhotoBytes: 10, VideoBytes: 20, TotalBytes: 30})
	assert.Equal(t, &Summary{Photos: 2, Videos: 1, PhotoBytes: 10, VideoBytes: 20, TotalBytes: 30}, s)
}

func TestReport_ItemCount(t *testing.T) {
	r := sampleReport()
	r.Files = NewItems(sampleRecords()[2:], nil)
	assert.Equal(t, 3, r.ItemCount())
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register("b", func() Formatter { return &PlainFormatter{} })
	reg.Register("a", func() Formatter { return &JSONFormatter{} })

	assert.Equal(t, []string{"a", "b"}, reg.Available())

	f, err := reg.Get("a")
	require.NoError(t, err)
	assert.IsType(t, &JSONFormatter{}, f)

	_, err = reg.Get("missing")
	assert.Error(t, err)
}

func TestDefaultRegistry(t *testing.T) {
	assert.Equal(t, []string{"json", "plain", "pretty", "yaml"}, Available())

	for _, name := range Available() {
		t.Run(name, func(t *testing.T) {
			f, err := Get(name)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, f.Format(&buf, sampleReport()))
			assert.NotEmpty(t, buf.String())

			buf.Reset()
			require.NoError(t, f.Format(&buf, &Report{Title: "Empty", Library: "/photos"}))
		})
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(&buf, sampleReport()))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Duplicates", decoded.Title)
	require.Len(t, decoded.Groups, 1)
	assert.False(t, decoded.Groups[0].Items[0].Selected)
	assert.True(t, decoded.Groups[0].Items[1].Selected)
	assert.Equal(t, int64(3<<20), decoded.PotentialSavings)
	assert.NotContains(t, buf.String(), `"files"`, "empty sections are omitted")
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&YAMLFormatter{}).Format(&buf, sampleReport()))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Duplicates", decoded["title"])
	assert.Equal(t, "/photos", decoded["library"])
	assert.Contains(t, decoded, "groups")
}

func TestPlainFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PlainFormatter{}).Format(&buf, sampleReport()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "GROUP"))
	assert.Contains(t, lines[1], "IMG_0001.JPG")
	assert.Contains(t, lines[1], " no ")
	assert.Contains(t, lines[2], "IMG_0002.JPG")
	assert.Contains(t, lines[2], " yes ")
}

func TestPlainFormatter_SummaryAndFiles(t *testing.T) {
	r := &Report{
		Summary: NewSummary(catalog.Stats{Photos: 2, Videos: 1, PhotoBytes: 100, VideoBytes: 900, TotalBytes: 1000}),
		Files:   NewItems(sampleRecords()[2:], nil),
	}

	var buf bytes.Buffer
	require.NoError(t, (&PlainFormatter{}).Format(&buf, r))
	out := buf.String()

	assert.Contains(t, out, "KIND")
	assert.Contains(t, out, "total  3     1000")
	assert.Contains(t, out, "MOV_0003.MOV")
	assert.Contains(t, out, "video")
}

func TestPrettyFormatter(t *testing.T) {
	r := sampleReport()
	r.DryRun = true
	r.Threshold = "10 MB"
	r.Warnings = []string{"2 files could not be read"}

	var buf bytes.Buffer
	require.NoError(t, (&PrettyFormatter{}).Format(&buf, r))
	out := buf.String()

	assert.Contains(t, out, "Duplicates")
	assert.Contains(t, out, "/photos")
	assert.Contains(t, out, "Group 1")
	assert.Contains(t, out, "IMG_0002.JPG")
	assert.Contains(t, out, "Dry run")
	assert.Contains(t, out, "10 MB")
	assert.Contains(t, out, "Savings")
	assert.Contains(t, out, "2 files could not be read")
}

func TestPrettyFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PrettyFormatter{}).Format(&buf, &Report{Title: "Large Files"}))
	assert.Contains(t, buf.String(), "Nothing found")
}

func TestPadding(t *testing.T) {
	assert.Equal(t, "   ab", padLeft("ab", 5))
	assert.Equal(t, "ab   ", padRight("ab", 5))
	assert.Equal(t, "abcdef", padLeft("abcdef", 3))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250ms", formatDuration(0.25))
	assert.Equal(t, "1.5s", formatDuration(1.5))
	assert.Equal(t, "2m 5s", formatDuration(125))
}
