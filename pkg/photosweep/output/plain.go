package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"
	"time"
)

// PlainFormatter formats reports as tab-aligned text with no styling,
// suitable for scripting and piping.
type PlainFormatter struct{}

// Format writes the formatted report to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	if s := r.Summary; s != nil {
		fmt.Fprintln(tw, "KIND\tCOUNT\tSIZE")
		fmt.Fprintf(tw, "photos\t%d\t%d\n", s.Photos, s.PhotoBytes)
		fmt.Fprintf(tw, "videos\t%d\t%d\n", s.Videos, s.VideoBytes)
		fmt.Fprintf(tw, "total\t%d\t%d\n", s.Photos+s.Videos, s.TotalBytes)
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(r.Groups) > 0 {
		fmt.Fprintln(tw, "GROUP\tSELECTED\tSIZE\tCREATED\tID")
		for i, g := range r.Groups {
			for _, it := range g.Items {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, yesNo(it.Selected), it.SizeHuman, it.CreatedAt.Format(time.RFC3339), it.ID)
			}
		}
	} else if len(r.Files) > 0 {
		fmt.Fprintln(tw, "SELECTED\tSIZE\tKIND\tCREATED\tID")
		for _, it := range r.Files {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", yesNo(it.Selected), it.SizeHuman, it.Kind, it.CreatedAt.Format(time.RFC3339), it.ID)
		}
	}

	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
