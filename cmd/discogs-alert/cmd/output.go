package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	domain "github.com/donaldgifford/discogs-alert/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

// printReleasesTable prints one row per release. forSale adds a column
// when non-nil.
func printReleasesTable(w io.Writer, releases []domain.Release, forSale map[int64]string) error {
	tw := newTabWriter(w)
	header := "ID\tTITLE\tMEDIA\tSLEEVE\tTHRESHOLD"
	if forSale != nil {
		header += "\tFOR SALE"
	}
	tw.writef("%s\n", header)

	for i := range releases {
		r := &releases[i]
		tw.writef("%d\t%s\t%s\t%s\t%s",
			r.ID,
			truncate(r.DisplayTitle, 50),
			conditionOrDash(r.MinMediaCondition),
			conditionOrDash(r.MinSleeveCondition),
			thresholdOrDash(r.PriceThreshold),
		)
		if forSale != nil {
			tw.writef("\t%s", forSale[r.ID])
		}
		tw.writef("\n")
	}
	return tw.finish()
}

func printReport(w io.Writer, r *domain.CycleReport) error {
	tw := newTabWriter(w)
	tw.writef("Cycle:\t%s\n", r.ID)
	tw.writef("Started:\t%s\n", r.StartedAt.Format(time.DateTime))
	tw.writef("Duration:\t%s\n", r.Duration.Round(time.Millisecond))
	tw.writef("Releases:\t%d\n", r.Releases)
	tw.writef("Listings:\t%d\n", r.Listings)
	tw.writef("Accepted:\t%d\n", r.Accepted)
	tw.writef("Notified:\t%d\n", r.Notified)
	tw.writef("Duplicates:\t%d\n", r.Duplicates)
	tw.writef("Skipped:\t%d\n", r.Skipped)
	tw.writef("Failed sends:\t%d\n", r.FailedSends)
	if r.Aborted {
		tw.writef("Aborted:\tyes\n")
	}
	if r.Error != "" {
		tw.writef("Error:\t%s\n", r.Error)
	}
	return tw.finish()
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func conditionOrDash(c *domain.Condition) string {
	if c == nil {
		return "-"
	}
	return c.Short()
}

func thresholdOrDash(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
