package main

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/jamesainslie/photosweep/pkg/photosweep/analysis"
	"github.com/jamesainslie/photosweep/pkg/photosweep/catalog"
	"github.com/jamesainslie/photosweep/pkg/photosweep/media"
	"github.com/jamesainslie/photosweep/pkg/photosweep/output"
	"github.com/jamesainslie/photosweep/pkg/photosweep/selection"
)

// findings is what one category yields for a snapshot. Grouped
// categories fill groups; the others fill files.
type findings struct {
	category  analysis.Category
	threshold analysis.Threshold
	groups    []analysis.Group
	files     []media.Record
}

// analyze runs the finder for category against snap.
func analyze(category analysis.Category, snap *catalog.Snapshot, threshold analysis.Threshold) findings {
	f := findings{category: category, threshold: threshold}
	switch category {
	case analysis.CategoryDuplicates:
		f.groups = analysis.FindDuplicates(snap)
	case analysis.CategorySimilar:
		f.groups = analysis.FindBursts(snap.Photos())
	case analysis.CategoryLarge:
		f.files = analysis.FindLargeFiles(snap, threshold.Bytes())
	case analysis.CategoryScreenshots:
		f.files = analysis.FindScreenshots(snap)
	}
	return f
}

// empty reports whether nothing was found.
func (f findings) empty() bool {
	return len(f.groups) == 0 && len(f.files) == 0
}

// selectForDeletion selects every item except the first of each group,
// or every file for flat categories.
func (f findings) selectForDeletion() *selection.Set {
	sel := selection.New()
	if f.category.Grouped() {
		sel.SelectAllButFirstPerGroup(f.groups)
	} else {
		sel.SelectAll(f.files)
	}
	return sel
}

// report builds the display report. Flat listings are ordered by sortBy.
func (f findings) report(library string, sel *selection.Set, sortBy analysis.SortBy) *output.Report {
	r := &output.Report{
		Title:   f.category.Title(),
		Library: library,
	}

	if f.category.Grouped() {
		r.Groups = output.NewGroups(f.groups, sel)
		r.PotentialSavings = analysis.PotentialSavings(f.groups)
	} else {
		r.Files = output.NewItems(analysis.Sort(f.files, sortBy), sel)
		for _, rec := range f.files {
			r.PotentialSavings += rec.Size
		}
	}

	if f.category == analysis.CategoryLarge {
		r.Threshold = formatThreshold(f.threshold)
	}

	if sel != nil && !sel.IsEmpty() {
		r.Selected = sel.Count()
		r.SelectedBytes = sel.CachedSize()
	}
	return r
}

// formatThreshold renders a threshold as "10 MB".
func formatThreshold(t analysis.Threshold) string {
	return fmt.Sprintf("%g MB", t.MB())
}

// summaryReport builds the storage summary for snap.
func summaryReport(library string, snap *catalog.Snapshot, elapsed time.Duration) *output.Report {
	return &output.Report{
		Title:   "Storage",
		Library: library,
		Summary: output.NewSummary(snap.Stats()),
		Elapsed: elapsed,
	}
}

// sortOrder parses the configured file ordering.
func sortOrder(s string) (analysis.SortBy, error) {
	by, err := analysis.ParseSortBy(s)
	if err != nil {
		return by, fmt.Errorf("invalid sort order %q: %w", s, err)
	}
	return by, nil
}

// render formats r with the named formatter and writes it to w.
func render(w io.Writer, format string, r *output.Report) error {
	if format == "" {
		format = "pretty"
	}

	formatter, err := output.Get(format)
	if err != nil {
		return fmt.Errorf("unknown output format %q (available: %v)", format, output.Available())
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, r); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}
