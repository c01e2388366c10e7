package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/photosweep/pkg/photosweep/types"
)

// PrettyFormatter renders a styled report for terminal display.
type PrettyFormatter struct{}

// Format writes the formatted report to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Report) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")

	if r.Summary != nil {
		w.WriteString(f.formatSummary(r.Summary))
	}

	switch {
	case len(r.Groups) > 0:
		w.WriteString(f.formatGroups(r.Groups))
	case len(r.Files) > 0:
		w.WriteString(f.formatFiles(r.Files))
	case r.Summary == nil:
		w.WriteString(MutedStyle.Render("  Nothing found"))
		w.WriteString("\n")
	}

	w.WriteString(f.formatFooter(r))
	w.WriteString("\n")

	if len(r.Warnings) > 0 {
		w.WriteString(WarningStyle.Bold(true).Render("Warnings:"))
		w.WriteString("\n")
		for _, warning := range r.Warnings {
			w.WriteString(WarningStyle.Render("  " + warning))
			w.WriteString("\n")
		}
	}

	return nil
}

func (f *PrettyFormatter) formatHeader(r *Report) string {
	lines := []string{TitleStyle.Render(r.Title)}
	lines = append(lines, LabelStyle.Render("Library: ")+ValueStyle.Render(r.Library))
	if r.Threshold != "" {
		lines = append(lines, LabelStyle.Render("Threshold: ")+ValueStyle.Render(r.Threshold))
	}
	if r.DryRun {
		lines = append(lines, WarningStyle.Bold(true).Render("Dry run: nothing will be deleted"))
	}
	return HeaderBox.Render(strings.Join(lines, "\n"))
}

func (f *PrettyFormatter) formatSummary(s *Summary) string {
	var sb strings.Builder
	row := func(label string, count int, size int64) {
		fmt.Fprintf(&sb, "  %s %s  %s\n",
			LabelStyle.Render(padRight(label, 7)),
			ValueStyle.Render(padLeft(humanize.Comma(int64(count)), 8)),
			SizeStyle.Render(types.FormatSize(size)))
	}
	row("Photos", s.Photos, s.PhotoBytes)
	row("Videos", s.Videos, s.VideoBytes)
	row("Total", s.Photos+s.Videos, s.TotalBytes)
	return sb.String()
}

func (f *PrettyFormatter) formatGroups(groups []Group) string {
	var sb strings.Builder
	for i, g := range groups {
		title := fmt.Sprintf("Group %d", i+1)
		meta := fmt.Sprintf("%d items, reclaim %s", len(g.Items), types.FormatSize(g.Reclaimable))
		fmt.Fprintf(&sb, "%s  %s\n", TitleStyle.Render(title), MutedStyle.Render(meta))
		sb.WriteString(f.formatRows(g.Items))
		if i < len(groups)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (f *PrettyFormatter) formatFiles(items []Item) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "  %s %s  %s  %s\n",
		TableHeaderStyle.Render("  "),
		TableHeaderStyle.Render(padLeft("SIZE", sizeWidth(items))),
		TableHeaderStyle.Render(padRight("CREATED", 16)),
		TableHeaderStyle.Render("ID"))
	sb.WriteString(f.formatRows(items))
	return sb.String()
}

func (f *PrettyFormatter) formatRows(items []Item) string {
	width := sizeWidth(items)
	var sb strings.Builder
	for _, it := range items {
		mark := MutedStyle.Render("  ")
		if it.Selected {
			mark = DangerStyle.Render("✗ ")
		}
		id := ValueStyle.Render(it.ID)
		if extra := itemDetail(it); extra != "" {
			id += " " + MutedStyle.Render(extra)
		}
		fmt.Fprintf(&sb, "  %s %s  %s  %s\n",
			mark,
			SizeStyle.Render(padLeft(it.SizeHuman, width)),
			MutedStyle.Render(padRight(it.CreatedAt.Format("2006-01-02 15:04"), 16)),
			id)
	}
	return sb.String()
}

func (f *PrettyFormatter) formatFooter(r *Report) string {
	var parts []string

	parts = append(parts, LabelStyle.Render("Items: ")+ValueStyle.Render(humanize.Comma(int64(r.ItemCount()))))

	if r.PotentialSavings > 0 {
		parts = append(parts, LabelStyle.Render("Savings: ")+SizeStyle.Render(types.FormatSize(r.PotentialSavings)))
	}
	if r.Selected > 0 {
		parts = append(parts, LabelStyle.Render("Selected: ")+
			ValueStyle.Render(fmt.Sprintf("%d (%s)", r.Selected, types.FormatSize(r.SelectedBytes))))
	}
	if r.Deleted > 0 {
		parts = append(parts, SuccessStyle.Render(fmt.Sprintf("Deleted %d", r.Deleted)))
	}
	if r.Elapsed > 0 {
		parts = append(parts, MutedStyle.Render(formatDuration(r.Elapsed.Seconds())))
	}

	return FooterBox.Render(strings.Join(parts, "  "))
}

func itemDetail(it Item) string {
	var parts []string
	if it.Resolution != "" {
		parts = append(parts, it.Resolution)
	}
	if it.Duration != "" {
		parts = append(parts, it.Duration)
	}
	if it.Favorite {
		parts = append(parts, "♥")
	}
	return strings.Join(parts, " ")
}

func sizeWidth(items []Item) int {
	width := 8
	for _, it := range items {
		width = max(width, len(it.SizeHuman))
	}
	return width
}

// padLeft pads a string with spaces on the left to achieve the desired width.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// formatDuration formats seconds in a human-friendly way.
func formatDuration(sec float64) string {
	if sec < 1 {
		return fmt.Sprintf("%.0fms", sec*1000)
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	minutes := int(sec) / 60
	seconds := int(sec) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
