package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"tabemb/internal/domain"
	"tabemb/internal/schema"
	"tabemb/internal/service"
)

// renderReport prints the run summary as a two-column table.
func renderReport(w io.Writer, report *service.Report, input, output string) error {
	table := tablewriter.NewWriter(w)
	table.Header("Metric", "Value")

	rows := [][]string{
		{"Run ID", report.RunID},
		{"Input", input},
		{"Output", output},
		{"Rows", fmt.Sprintf("%d", report.Rows)},
		{"Structured columns", fmt.Sprintf("%d", len(report.Roles.Structured))},
		{"Text column", report.Roles.Text},
		{"Label column", report.Roles.Label},
		{"Columns added", fmt.Sprintf("%d", len(report.Layout.Added))},
		{"Cells embedded", fmt.Sprintf("%d", report.CellsEmbedded)},
		{"Cell fallbacks", fmt.Sprintf("%d", report.CellFallbacks)},
		{"Sentences embedded", fmt.Sprintf("%d", report.SentencesEmbedded)},
		{"Sentence fallbacks", fmt.Sprintf("%d", report.SentenceFallbacks)},
		{"Masked slots", fmt.Sprintf("%d", report.MaskedSlots)},
		{"Masked rows", fmt.Sprintf("%d", report.RowsMasked)},
		{"Truncated sentences", fmt.Sprintf("%d", report.TruncatedSentences)},
		{"Duration", formatDuration(report.Duration)},
	}
	for _, r := range rows {
		if err := table.Append(r[0], r[1]); err != nil {
			return err
		}
	}
	return table.Render()
}

// renderErrors prints at most limit recoverable errors, one per line.
func renderErrors(w io.Writer, errs []error, limit int) {
	if len(errs) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%d recoverable errors:\n", len(errs))
	for i, err := range errs {
		if i == limit {
			fmt.Fprintf(w, "  ... %d more (see log)\n", len(errs)-limit)
			return
		}
		fmt.Fprintf(w, "  %s\n", err)
	}
}

// renderOverview prints the role and missing-value count of every column.
func renderOverview(w io.Writer, ds *domain.Dataset, roles domain.Roles) error {
	fmt.Fprintf(w, "%d rows, %d columns\n", len(ds.Rows), len(ds.Columns))
	fmt.Fprintf(w, "structured: %s\ntext: %s\nlabel: %s\n\n",
		strings.Join(roles.Structured, ", "), roles.Text, roles.Label)

	table := tablewriter.NewWriter(w)
	table.Header("#", "Column", "Role", "Missing")
	for i, col := range schema.Overview(ds, roles) {
		if err := table.Append(fmt.Sprintf("%d", i+1), col.Name, col.Role, fmt.Sprintf("%d", col.Missing)); err != nil {
			return err
		}
	}
	return table.Render()
}
