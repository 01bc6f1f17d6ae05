// Package render formats audit results as plain text tables for terminals
// and for the text variant of the results endpoints.
package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/auditpro/document-auditor/dto"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const emptyCell = "-"

var statusColors = map[dto.AuditStatus]text.Colors{
	dto.StatusMatch:        {text.FgGreen},
	dto.StatusMatchRounded: {text.FgCyan},
	dto.StatusMismatch:     {text.FgRed},
	dto.StatusMissing:      {text.FgYellow},
}

// ResultDetail renders one result: a header with party, identifier and
// matched document, the field comparison table and the model's summary.
func ResultDetail(result dto.AuditResult, colorize bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", result.PartyName)
	fmt.Fprintf(&b, "Invoice/BE No: %s  Matched Doc: %s  (%d Checkpoints)\n",
		result.InvoiceNo, result.DocumentMatched, len(result.Fields))
	if result.CandidateCount > 1 {
		fmt.Fprintf(&b, "Note: %d documents matched this identifier, the first was used\n", result.CandidateCount)
	}
	if result.PartyMismatch {
		fmt.Fprintln(&b, "Warning: the party on the document differs from the ledger")
	}

	tw := newWriter()
	tw.AppendHeader(table.Row{"Excel Field Name", "Excel Value", "PDF Value", "Status", "Comment"})
	for _, f := range result.Fields {
		tw.AppendRow(table.Row{
			cell(f.FieldName),
			cell(f.ExcelValue),
			cell(f.PDFValue),
			Status(f.Status, colorize),
			cell(f.Comment),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignRight},
		{Number: 5, WidthMax: 48},
	})
	b.WriteString(tw.Render())
	b.WriteString("\n")

	if result.Summary != "" {
		fmt.Fprintf(&b, "AI Analysis: %s\n", result.Summary)
	}
	return b.String()
}

// ResultList renders one line per result in emission order.
func ResultList(results []dto.AuditResult, colorize bool) string {
	tw := newWriter()
	tw.AppendHeader(table.Row{"#", "Invoice No", "Party", "Matched Document", "Fields Audited", "Outcome"})
	for i, r := range results {
		tw.AppendRow(table.Row{
			strconv.Itoa(i),
			cell(r.InvoiceNo),
			cell(r.PartyName),
			cell(r.DocumentMatched),
			strconv.Itoa(len(r.Fields)),
			outcome(r, colorize),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	return tw.Render()
}

// FailureList renders the rows whose comparison call failed.
func FailureList(failures []dto.AuditError) string {
	tw := newWriter()
	tw.AppendHeader(table.Row{"Row", "Invoice No", "Document", "Error"})
	for _, f := range failures {
		tw.AppendRow(table.Row{strconv.Itoa(f.RowNumber), cell(f.InvoiceNo), cell(f.DocumentMatched), cell(f.Message)})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 4, WidthMax: 60}})
	return tw.Render()
}

// ReportSummary renders run totals and the per-status field counts.
func ReportSummary(report *dto.AuditReport) string {
	if report == nil {
		return ""
	}
	tw := newWriter()
	tw.AppendHeader(table.Row{"Metric", "Count"})
	tw.AppendRow(table.Row{"Rows", report.RowsTotal})
	tw.AppendRow(table.Row{"Skipped (no identifier)", report.RowsSkipped})
	tw.AppendRow(table.Row{"Results", len(report.Results)})
	tw.AppendRow(table.Row{"Failures", len(report.Failures)})

	statuses := make([]string, 0, len(report.StatusCounts))
	for s := range report.StatusCounts {
		statuses = append(statuses, string(s))
	}
	sort.Strings(statuses)
	for _, s := range statuses {
		tw.AppendRow(table.Row{"Fields " + s, report.StatusCounts[dto.AuditStatus(s)]})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	return tw.Render()
}

// Status renders a status, coloured when colorize is set.
func Status(status dto.AuditStatus, colorize bool) string {
	label := cell(string(status))
	if !colorize {
		return label
	}
	if colors, ok := statusColors[status]; ok {
		return colors.Sprint(label)
	}
	return text.FgHiBlack.Sprint(label)
}

func outcome(r dto.AuditResult, colorize bool) string {
	label, colors := "Issues", text.Colors{text.FgRed}
	if r.Passed() {
		label, colors = "Passed", text.Colors{text.FgGreen}
	}
	if colorize {
		return colors.Sprint(label)
	}
	return label
}

func newWriter() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	return tw
}

func cell(value string) string {
	if strings.TrimSpace(value) == "" {
		return emptyCell
	}
	return value
}
