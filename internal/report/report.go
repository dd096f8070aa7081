// Package report renders the accumulated benchmark records. Markdown is
// the artifact checked into the workspace; table is for terminals and
// json for downstream tooling. Records are rendered as-is, one row per
// executed run; nothing is averaged across runs.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/eisodos-svm/eisodos-bench/internal/result"
)

// Generate writes the records in the requested format. Unknown formats
// fall back to the table.
func Generate(records []result.Record, format string, w io.Writer) error {
	switch format {
	case "markdown":
		return writeMarkdown(records, w)
	case "json":
		return writeJSON(records, w)
	default:
		return writeTable(records, w)
	}
}

// metricKeys is the sorted union of metric names across all records.
// Runs of different shapes report different metrics; the report carries
// a column for each, N/A where a run has no value.
func metricKeys(records []result.Record) []string {
	seen := map[string]bool{}
	for _, rec := range records {
		for key := range rec.Metrics {
			seen[key] = true
		}
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func featuresCell(features []string) string {
	if len(features) == 0 {
		return "none"
	}
	return strings.Join(features, ", ")
}

// shortenID truncates a program identity for display, keeping the head
// and tail.
func shortenID(id string) string {
	if id == "" {
		return "N/A"
	}
	if len(id) > 8 {
		return id[:4] + "..." + id[len(id)-4:]
	}
	return id
}

func metricCell(rec result.Record, key string) string {
	value, ok := rec.Metrics[key]
	if !ok {
		return "N/A"
	}
	return value.String()
}

func writeMarkdown(records []result.Record, w io.Writer) error {
	if _, err := fmt.Fprint(w, "# Eisodos Benchmark Results\n\n"); err != nil {
		return err
	}
	keys := metricKeys(records)
	headers := append([]string{"ID", "Entrypoint", "Features", "AccountsProcessed"}, keys...)
	headers = append(headers, "Program ID", "Artifact")
	fmt.Fprintln(w, "| "+strings.Join(headers, " | ")+" |")
	fmt.Fprintln(w, "| "+strings.Join(repeat("---", len(headers)), " | ")+" |")
	for _, rec := range records {
		row := []string{
			rec.ID,
			rec.Entrypoint,
			featuresCell(rec.Features),
			fmt.Sprintf("%d", rec.AccountsProcessed),
		}
		for _, key := range keys {
			row = append(row, metricCell(rec, key))
		}
		row = append(row, shortenID(rec.ProgramID), rec.Artifact)
		fmt.Fprintln(w, "| "+strings.Join(row, " | ")+" |")
	}
	return nil
}

func writeTable(records []result.Record, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	keys := metricKeys(records)
	headers := append([]string{"ID", "ENTRYPOINT", "FEATURES", "ACCOUNTS"}, keys...)
	headers = append(headers, "PROGRAM ID")
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	fmt.Fprintln(tw, strings.Repeat("-", 80))
	for _, rec := range records {
		row := []string{
			rec.ID,
			rec.Entrypoint,
			featuresCell(rec.Features),
			fmt.Sprintf("%d", rec.AccountsProcessed),
		}
		for _, key := range keys {
			row = append(row, metricCell(rec, key))
		}
		row = append(row, shortenID(rec.ProgramID))
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func writeJSON(records []result.Record, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}
