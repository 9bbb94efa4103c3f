// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"

	"github.com/tomtom215/garmincoach/internal/database"
	"github.com/tomtom215/garmincoach/internal/models"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// reportView renders a SyncReport; JSON output is the report itself.
type reportView struct {
	*models.SyncReport
}

func (v reportView) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.SyncReport)
}

func (v reportView) renderText(w io.Writer) error {
	r := v.SyncReport
	fmt.Fprintf(w, "Sync %s: %s (lookback %d days, %s)\n\n",
		r.RunID, r.Status, r.LookbackDays, r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))

	tw := newTable(w)
	fmt.Fprintln(tw, "DOMAIN\tSTATUS\tWINDOW\tFETCHED\tINSERTED\tUPDATED\tUNCHANGED\tSKIPPED\tFAILED")
	for _, d := range r.Domains {
		window := "-"
		if d.Window != nil {
			window = d.Window.StartDate() + ".." + d.Window.EndDate()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\n",
			d.Domain, d.Status, window, d.Counts.Fetched, d.Counts.Inserted,
			d.Counts.Updated, d.Counts.Unchanged, d.Counts.Skipped, d.Counts.Failed)
	}
	t := r.Totals
	fmt.Fprintf(tw, "TOTAL\t\t\t%d\t%d\t%d\t%d\t%d\t%d\n",
		t.Fetched, t.Inserted, t.Updated, t.Unchanged, t.Skipped, t.Failed)
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, d := range r.Domains {
		for _, msg := range d.Errors {
			fmt.Fprintf(w, "  %s: %s\n", d.Domain, msg)
		}
	}
	return nil
}

func (v *statusView) renderText(w io.Writer) error {
	if v.Database != "" {
		fmt.Fprintf(w, "Database: %s\n\n", v.Database)
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "TABLE\tROWS\tLATEST DATE\tLAST SUCCESS\tLAST SYNCED")
	for _, t := range v.Tables {
		latest := t.LatestDate
		if latest == "" {
			latest = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			t.Table, humanize.Comma(t.Rows), latest, formatDate(t.LastSuccessAt), relativeTime(t.LastSyncedAt))
	}
	return tw.Flush()
}

func (v refreshResult) renderText(w io.Writer) error {
	if v.Skipped {
		fmt.Fprintln(w, "Data is fresh, sync skipped.")
	} else if v.Report != nil {
		if err := (reportView{v.Report}).renderText(w); err != nil {
			return err
		}
	}
	fmt.Fprintln(w)
	return v.Status.renderText(w)
}

// queryView renders query rows in column order.
type queryView struct {
	*database.QueryResult
}

func (v queryView) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.QueryResult)
}

func (v queryView) renderText(w io.Writer) error {
	tw := newTable(w)
	fmt.Fprintln(tw, strings.Join(v.Columns, "\t"))
	for _, row := range v.Rows {
		cells := make([]string, len(v.Columns))
		for i, c := range v.Columns {
			cells[i] = formatCell(row[c])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	suffix := ""
	if v.Truncated {
		suffix = ", truncated"
	}
	_, err := fmt.Fprintf(w, "(%d rows%s)\n", v.RowCount, suffix)
	return err
}

// schemaView renders the table registry.
type schemaView []database.TableInfo

func (v schemaView) renderText(w io.Writer) error {
	for i, t := range v {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (key: %s)\n", t.Name, strings.Join(t.Key, ", "))
		for _, c := range t.Columns {
			fmt.Fprintf(w, "  %s\n", c)
		}
	}
	return nil
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return x.Format(time.RFC3339)
	case []byte:
		return string(x)
	case float64:
		return humanize.FtoaWithDigits(x, 3)
	default:
		return fmt.Sprint(x)
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Format(models.DateLayout)
}

func relativeTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return humanize.Time(*t)
}
