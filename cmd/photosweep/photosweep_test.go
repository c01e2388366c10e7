package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/jamesainslie/photosweep/pkg/photosweep/analysis"
	"github.com/jamesainslie/photosweep/pkg/photosweep/catalog"
	"github.com/jamesainslie/photosweep/pkg/photosweep/config"
	"github.com/jamesainslie/photosweep/pkg/photosweep/logging"
	"github.com/jamesainslie/photosweep/pkg/photosweep/manifest"
	"github.com/jamesainslie/photosweep/pkg/photosweep/media"
	"github.com/jamesainslie/photosweep/pkg/photosweep/output"
)

var shot = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

func record(id string, size int64, at time.Time, screenshot bool) media.Record {
	return media.NewRecord(media.Attributes{
		ID:           id,
		Size:         size,
		CreatedAt:    at,
		Kind:         media.KindPhoto,
		PixelWidth:   1080,
		PixelHeight:  1920,
		IsScreenshot: screenshot,
	})
}

func testSnapshot() *catalog.Snapshot {
	c := catalog.New()
	c.Load([]media.Record{
		record("a", 4*1024*1024, shot, false),
		record("b", 4*1024*1024, shot, false),
		record("c", 30*1024*1024, shot.Add(time.Second), true),
		record("d", 1024, shot.Add(time.Hour), false),
	})
	return c.Snapshot()
}

func TestResolveLibrary(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		name    string
		library string
		args    []string
		want    string
		wantErr bool
	}{
		{name: "argument wins", library: "/configured", args: []string{"/from/arg"}, want: "/from/arg"},
		{name: "configured library", library: "/configured", want: "/configured"},
		{name: "tilde expanded", library: "~/Pictures", want: filepath.Join(home, "Pictures")},
		{name: "nothing configured", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Library: tt.library}
			got, err := resolveLibrary(cfg, tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveLibrary() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("resolveLibrary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAnalyze(t *testing.T) {
	snap := testSnapshot()

	tests := []struct {
		category   analysis.Category
		wantGroups int
		wantFiles  int
	}{
		{analysis.CategoryDuplicates, 1, 0},
		{analysis.CategorySimilar, 1, 0},
		{analysis.CategoryLarge, 0, 1},
		{analysis.CategoryScreenshots, 0, 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			f := analyze(tt.category, snap, analysis.DefaultThreshold())
			if len(f.groups) != tt.wantGroups {
				t.Errorf("groups = %d, want %d", len(f.groups), tt.wantGroups)
			}
			if len(f.files) != tt.wantFiles {
				t.Errorf("files = %d, want %d", len(f.files), tt.wantFiles)
			}
		})
	}
}

func TestSelectForDeletion_KeepsFirstOfGroup(t *testing.T) {
	f := analyze(analysis.CategoryDuplicates, testSnapshot(), analysis.DefaultThreshold())
	sel := f.selectForDeletion()

	if got := sel.IDs(); len(got) != 1 || got[0] != "b" {
		t.Fatalf("selected = %v, want [b]", got)
	}

	r := f.report("/lib", sel, analysis.SortLargest)
	if r.Selected != 1 || r.SelectedBytes != 4*1024*1024 {
		t.Errorf("report selection = %d/%d", r.Selected, r.SelectedBytes)
	}
	if r.PotentialSavings != 4*1024*1024 {
		t.Errorf("PotentialSavings = %d", r.PotentialSavings)
	}
	if !r.Groups[0].Items[1].Selected || r.Groups[0].Items[0].Selected {
		t.Error("only the second group member should be marked selected")
	}
}

func TestSelectForDeletion_FlatSelectsAll(t *testing.T) {
	f := analyze(analysis.CategoryScreenshots, testSnapshot(), analysis.DefaultThreshold())
	sel := f.selectForDeletion()
	if sel.Count() != 1 || !sel.Contains("c") {
		t.Errorf("selected = %v, want [c]", sel.IDs())
	}
}

func TestReport_LargeThreshold(t *testing.T) {
	f := analyze(analysis.CategoryLarge, testSnapshot(), analysis.ClampThreshold(25))
	r := f.report("/lib", nil, analysis.SortLargest)

	if r.Threshold != "25 MB" {
		t.Errorf("Threshold = %q, want %q", r.Threshold, "25 MB")
	}
	if len(r.Files) != 1 || r.Files[0].ID != "c" {
		t.Errorf("Files = %+v", r.Files)
	}
	if r.Selected != 0 {
		t.Errorf("Selected = %d, want 0", r.Selected)
	}
}

func TestFindings_Empty(t *testing.T) {
	c := catalog.New()
	f := analyze(analysis.CategoryDuplicates, c.Snapshot(), analysis.DefaultThreshold())
	if !f.empty() {
		t.Error("findings on an empty catalog should be empty")
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			got, err := confirm(strings.NewReader(tt.input), &out, "Delete?")
			if err != nil {
				t.Fatalf("confirm() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(out.String(), "Delete? [y/N]") {
				t.Errorf("prompt = %q", out.String())
			}
		})
	}
}

func TestRender(t *testing.T) {
	r := summaryReport("/lib", testSnapshot(), time.Second)

	var buf bytes.Buffer
	if err := render(&buf, "json", r); err != nil {
		t.Fatalf("render() error = %v", err)
	}

	var decoded output.Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Summary == nil || decoded.Summary.Photos != 4 {
		t.Errorf("Summary = %+v", decoded.Summary)
	}

	if err := render(&buf, "xml", r); err == nil {
		t.Error("render() with unknown format should fail")
	}
}

func TestSortOrder(t *testing.T) {
	if by, err := sortOrder("size"); err != nil || by != analysis.SortLargest {
		t.Errorf("sortOrder(size) = %v, %v", by, err)
	}
	if _, err := sortOrder("random"); err == nil {
		t.Error("sortOrder(random) should fail")
	}
}

func TestEnvName(t *testing.T) {
	if got := envName("large_files.minimum_size_mb"); got != "PHOTOSWEEP_LARGE_FILES_MINIMUM_SIZE_MB" {
		t.Errorf("envName() = %q", got)
	}
}

func TestTruncateString(t *testing.T) {
	if got := truncateString("abcdefgh", 6); got != "abc..." {
		t.Errorf("truncateString() = %q", got)
	}
	if got := truncateString("abc", 6); got != "abc" {
		t.Errorf("truncateString() = %q", got)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"scan", "duplicates", "large", "bursts", "screenshots", "clean", "watch", "history", "config", "version"}

	have := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("command %q not registered", name)
		}
	}
}

func writePNG(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 16, 9))); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

func TestCleanDuplicates(t *testing.T) {
	if testing.Short() {
		t.Skip("end-to-end")
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	viper.Reset()
	t.Cleanup(viper.Reset)

	state := t.TempDir()
	viper.Set("logging.path", filepath.Join(state, "photosweep.log"))
	viper.Set("cache.enabled", false)
	viper.Set("trash.enabled", false)
	viper.Set("manifest.path", filepath.Join(state, "manifest"))
	viper.Set("output.format", "json")

	lib := t.TempDir()
	writePNG(t, filepath.Join(lib, "IMG_0001.png"), shot)
	writePNG(t, filepath.Join(lib, "IMG_0001 copy.png"), shot)
	writePNG(t, filepath.Join(lib, "IMG_0002.png"), shot.Add(time.Hour))

	rootCmd.SetArgs([]string{"clean", "duplicates", lib, "--yes"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); cleanYes = false })

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("clean failed: %v", err)
	}
	_ = logging.Close()

	// "IMG_0001 copy.png" sorts first and is kept.
	if _, err := os.Stat(filepath.Join(lib, "IMG_0001 copy.png")); err != nil {
		t.Errorf("first group member was removed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(lib, "IMG_0001.png")); !os.IsNotExist(err) {
		t.Errorf("duplicate still present: %v", err)
	}
	if _, err := os.Stat(filepath.Join(lib, "IMG_0002.png")); err != nil {
		t.Errorf("unrelated file was removed: %v", err)
	}

	m, err := manifest.New(filepath.Join(state, "manifest"))
	if err != nil {
		t.Fatal(err)
	}
	entries, err := m.List(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Operation != manifest.OpDelete || entries[0].Summary.TotalItems != 1 {
		t.Errorf("manifest entries = %+v", entries)
	}
}
