package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowMarshalKeepsColumnOrder(t *testing.T) {
	row := NewRow(2, []string{"Party Name", "Invoice No.", "Currency"}, []string{"Acme", "INV-001"})

	out, err := json.Marshal(row)
	require.NoError(t, err)

	assert.Equal(t, `{"Party Name":"Acme","Invoice No.":"INV-001","Currency":""}`, string(out))
}

func TestRowSetDoesNotDuplicateColumns(t *testing.T) {
	var row Row
	row.Set("A", "1")
	row.Set("B", "2")
	row.Set("A", "3")

	assert.Equal(t, []string{"A", "B"}, row.Columns)
	assert.Equal(t, "3", row.Get("A"))
	assert.Equal(t, "", row.Get("missing"))
}

func TestAuditResultPassed(t *testing.T) {
	pass := AuditResult{Fields: []AuditFieldResult{{Status: StatusMatch}, {Status: StatusMatchRounded}}}
	fail := AuditResult{Fields: []AuditFieldResult{{Status: StatusMatch}, {Status: StatusMismatch}}}

	assert.True(t, pass.Passed())
	assert.False(t, fail.Passed())
	assert.False(t, AuditResult{}.Passed())
}

func TestAuditReportRecord(t *testing.T) {
	var report AuditReport
	report.Record(RowOutcome{Result: &AuditResult{InvoiceNo: "1", Fields: []AuditFieldResult{{Status: StatusMatch}, {Status: StatusMissing}}}})
	report.Record(RowOutcome{Err: &AuditError{InvoiceNo: "2", Message: "boom"}})
	report.Record(RowOutcome{})

	require.Len(t, report.Results, 1)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, 1, report.StatusCounts[StatusMatch])
	assert.Equal(t, 1, report.StatusCounts[StatusMissing])
	assert.Equal(t, "audit row 2: boom", report.Failures[0].Error())
}
