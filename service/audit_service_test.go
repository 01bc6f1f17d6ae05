package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/auditpro/document-auditor/client"
	"github.com/auditpro/document-auditor/config"
	"github.com/auditpro/document-auditor/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExtractor answers from a per-document table and records the calls.
type fakeExtractor struct {
	replies map[string]string
	errs    map[string]error
	calls   []client.GenerateRequest
	onCall  func()
}

func (f *fakeExtractor) GenerateJSON(ctx context.Context, req client.GenerateRequest) (string, error) {
	f.calls = append(f.calls, req)
	if f.onCall != nil {
		f.onCall()
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := req.Document.Data
	if err, ok := f.errs[key]; ok {
		return "", err
	}
	if reply, ok := f.replies[key]; ok {
		return reply, nil
	}
	return `{"invoiceNo":"","partyName":"","documentMatched":"","fields":[]}`, nil
}

var testConfig = &config.Config{APIKey: "test-key"}

func ledgerRow(line int, invoice, party string) dto.Row {
	return dto.NewRow(line, []string{"Party Name", "Invoice No.", "Invoice Value"}, []string{party, invoice, "100"})
}

func doc(name string) dto.FileData {
	return dto.FileData{Name: name, Type: "application/pdf", Base64: name}
}

func runAudit(t *testing.T, ex Extractor, rows []dto.Row, docs []dto.FileData) (*dto.AuditReport, []dto.RowOutcome) {
	t.Helper()
	var outcomes []dto.RowOutcome
	svc := NewAuditService(ex, testConfig, nil)
	report, err := svc.RunAudit(context.Background(), rows, docs, func(o dto.RowOutcome) {
		outcomes = append(outcomes, o)
	})
	require.NoError(t, err)
	return report, outcomes
}

func TestRunAuditMatchedRow(t *testing.T) {
	ex := &fakeExtractor{replies: map[string]string{
		"INV-001_invoice.pdf": "```json\n" + `{"invoiceNo":"INV-001","partyName":"Acme Corp","documentMatched":"whatever.pdf","summary":"All good","fields":[{"fieldName":"Invoice Value","excelValue":"100","pdfValue":"100.00","status":"match (rounded)"}]}` + "\n```",
	}}

	report, outcomes := runAudit(t, ex,
		[]dto.Row{ledgerRow(2, "INV-001", "Acme")},
		[]dto.FileData{doc("INV-001_invoice.pdf")},
	)

	require.Len(t, outcomes, 1)
	res := outcomes[0].Result
	require.NotNil(t, res)
	assert.Equal(t, "INV-001", res.InvoiceNo)
	assert.Equal(t, "Acme Corp", res.PartyName)
	assert.Equal(t, "INV-001_invoice.pdf", res.DocumentMatched)
	assert.Equal(t, "All good", res.Summary)
	assert.Equal(t, 2, res.RowNumber)
	assert.Equal(t, 1, res.CandidateCount)
	require.Len(t, res.Fields, 1)
	assert.Equal(t, dto.StatusMatchRounded, res.Fields[0].Status)

	require.Len(t, ex.calls, 1)
	call := ex.calls[0]
	assert.Equal(t, "application/pdf", call.Document.MimeType)
	assert.Contains(t, call.Prompt, `Party: "Acme"`)
	assert.Contains(t, call.Prompt, `Invoice/BE No: "INV-001"`)
	assert.NotNil(t, call.Schema)

	assert.Len(t, report.Results, 1)
	assert.Empty(t, report.Failures)
	assert.Equal(t, 1, report.StatusCounts[dto.StatusMatchRounded])
	assert.NotEmpty(t, report.RunID)
}

func TestRunAuditFillsMissingIdentity(t *testing.T) {
	ex := &fakeExtractor{replies: map[string]string{
		"INV-7.pdf": `{"fields":[]}`,
	}}
	_, outcomes := runAudit(t, ex,
		[]dto.Row{ledgerRow(2, "INV-7", "")},
		[]dto.FileData{doc("INV-7.pdf")},
	)

	require.Len(t, outcomes, 1)
	res := outcomes[0].Result
	assert.Equal(t, "INV-7", res.InvoiceNo)
	assert.Equal(t, "N/A", res.PartyName)
	assert.Equal(t, "", res.Summary)
	assert.NotNil(t, res.Fields)
}

func TestRunAuditNoMatchingDocument(t *testing.T) {
	ex := &fakeExtractor{}
	row := dto.NewRow(3, []string{"Invoice No.", "Party Name"}, []string{"INV-002", ""})

	report, outcomes := runAudit(t, ex, []dto.Row{row}, nil)

	require.Len(t, outcomes, 1)
	res := outcomes[0].Result
	require.NotNil(t, res)
	assert.Equal(t, NoMatchingDocument, res.DocumentMatched)
	assert.Equal(t, "INV-002", res.InvoiceNo)
	assert.Equal(t, "N/A", res.PartyName)
	assert.Contains(t, res.Summary, "'INV-002'")
	require.Len(t, res.Fields, 2)
	for i, col := range row.Columns {
		assert.Equal(t, col, res.Fields[i].FieldName)
		assert.Equal(t, row.Get(col), res.Fields[i].ExcelValue)
		assert.Equal(t, "N/A", res.Fields[i].PDFValue)
		assert.Equal(t, dto.StatusMissing, res.Fields[i].Status)
	}
	assert.Empty(t, ex.calls)
	assert.Equal(t, 2, report.StatusCounts[dto.StatusMissing])
}

func TestRunAuditSkipsRowsWithoutIdentifier(t *testing.T) {
	ex := &fakeExtractor{}
	rows := []dto.Row{
		dto.NewRow(2, []string{"Party Name"}, []string{"Acme"}),
		dto.NewRow(3, []string{"Invoice No.", "B/E No."}, []string{"", ""}),
		dto.NewRow(4, []string{"Invoice No."}, []string{"   "}),
	}

	report, outcomes := runAudit(t, ex, rows, []dto.FileData{doc("anything.pdf")})

	assert.Empty(t, outcomes)
	assert.Empty(t, ex.calls)
	assert.Equal(t, 3, report.RowsTotal)
	assert.Equal(t, 3, report.RowsSkipped)
}

func TestRunAuditSkipsWhitespaceIdentifier(t *testing.T) {
	ex := &fakeExtractor{}
	rows := []dto.Row{ledgerRow(2, "   ", "Acme")}

	// an empty key would otherwise be contained in every filename
	report, outcomes := runAudit(t, ex, rows, []dto.FileData{doc("INV-001.pdf"), doc("INV-002.pdf")})

	assert.Empty(t, outcomes)
	assert.Empty(t, ex.calls)
	assert.Empty(t, report.Results)
	assert.Empty(t, report.Failures)
	assert.Equal(t, 1, report.RowsTotal)
	assert.Equal(t, 1, report.RowsSkipped)
}

func TestRunAuditBillOfEntryFallback(t *testing.T) {
	ex := &fakeExtractor{}
	row := dto.NewRow(2, []string{"Invoice No.", "B/E No."}, []string{"", "778899"})

	_, outcomes := runAudit(t, ex, []dto.Row{row}, []dto.FileData{doc("be_778899.pdf")})

	require.Len(t, outcomes, 1)
	assert.Equal(t, "be_778899.pdf", outcomes[0].Result.DocumentMatched)
	assert.Equal(t, "778899", outcomes[0].Result.InvoiceNo)
}

func TestRunAuditSharedDocument(t *testing.T) {
	ex := &fakeExtractor{}
	rows := []dto.Row{ledgerRow(2, "500", "A"), ledgerRow(3, "500", "B")}

	_, outcomes := runAudit(t, ex, rows, []dto.FileData{doc("500.pdf")})

	require.Len(t, outcomes, 2)
	require.Len(t, ex.calls, 2)
	for _, o := range outcomes {
		assert.Equal(t, "500.pdf", o.Result.DocumentMatched)
	}
}

func TestRunAuditPreservesRowOrder(t *testing.T) {
	ex := &fakeExtractor{}
	rows := []dto.Row{
		ledgerRow(2, "C-3", "c"),
		ledgerRow(3, "", "skip"),
		ledgerRow(4, "A-1", "a"),
		ledgerRow(5, "B-2", "b"),
	}
	docs := []dto.FileData{doc("A-1.pdf"), doc("B-2.pdf")}

	_, outcomes := runAudit(t, ex, rows, docs)

	require.Len(t, outcomes, 3)
	var order []int
	for _, o := range outcomes {
		order = append(order, o.Result.RowNumber)
	}
	assert.Equal(t, []int{2, 4, 5}, order)
	assert.Equal(t, NoMatchingDocument, outcomes[0].Result.DocumentMatched)
}

func TestRunAuditContinuesAfterFailure(t *testing.T) {
	ex := &fakeExtractor{
		errs:    map[string]error{"A-1.pdf": errors.New("quota exceeded")},
		replies: map[string]string{"B-2.pdf": "not json"},
	}
	rows := []dto.Row{ledgerRow(2, "A-1", "a"), ledgerRow(3, "B-2", "b"), ledgerRow(4, "C-3", "c")}
	docs := []dto.FileData{doc("A-1.pdf"), doc("B-2.pdf"), doc("C-3.pdf")}

	report, outcomes := runAudit(t, ex, rows, docs)

	require.Len(t, outcomes, 3)
	require.NotNil(t, outcomes[0].Err)
	assert.Equal(t, "A-1", outcomes[0].Err.InvoiceNo)
	assert.Equal(t, "A-1.pdf", outcomes[0].Err.DocumentMatched)
	assert.Contains(t, outcomes[0].Err.Message, "quota exceeded")

	require.NotNil(t, outcomes[1].Err)
	assert.Contains(t, outcomes[1].Err.Message, "invalid audit response")

	require.NotNil(t, outcomes[2].Result)
	assert.Len(t, report.Failures, 2)
	assert.Len(t, report.Results, 1)
}

func TestRunAuditMissingAPIKey(t *testing.T) {
	ex := &fakeExtractor{}
	svc := NewAuditService(ex, &config.Config{}, nil)

	called := false
	report, err := svc.RunAudit(context.Background(), []dto.Row{ledgerRow(2, "A-1", "a")}, nil, func(dto.RowOutcome) {
		called = true
	})

	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
	assert.Nil(t, report)
	assert.False(t, called)
	assert.Empty(t, ex.calls)
}

func TestRunAuditCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ex := &fakeExtractor{onCall: cancel}
	rows := []dto.Row{ledgerRow(2, "A-1", "a"), ledgerRow(3, "B-2", "b")}
	docs := []dto.FileData{doc("A-1.pdf"), doc("B-2.pdf")}

	var outcomes []dto.RowOutcome
	svc := NewAuditService(ex, testConfig, nil)
	report, err := svc.RunAudit(ctx, rows, docs, func(o dto.RowOutcome) {
		outcomes = append(outcomes, o)
	})

	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Empty(t, outcomes)
	assert.Len(t, ex.calls, 1)
	assert.False(t, report.FinishedAt.IsZero())
}

func TestCanonicalStatus(t *testing.T) {
	assert.Equal(t, dto.StatusMatch, CanonicalStatus(" MATCH "))
	assert.Equal(t, dto.StatusMismatch, CanonicalStatus("mismatch"))
	assert.Equal(t, dto.StatusMatchRounded, CanonicalStatus("Match (rounded)"))
	assert.Equal(t, dto.AuditStatus("Partial"), CanonicalStatus("Partial "))
}

func TestBuildAuditPrompt(t *testing.T) {
	row := dto.NewRow(2, []string{"Party Name", "Invoice No."}, []string{"Acme", "INV-001"})
	prompt, err := BuildAuditPrompt(row)
	require.NoError(t, err)

	assert.Contains(t, prompt, "{\n  \"Party Name\": \"Acme\",\n  \"Invoice No.\": \"INV-001\"\n}")
	assert.Contains(t, prompt, `"Match (Rounded)"`)
	assert.Contains(t, prompt, "- IGST (A)")
	assert.True(t, strings.Index(prompt, "MANDATORY PRE-CHECK") < strings.Index(prompt, "AUDIT RULES"))
}

func TestAuditResponseSchema(t *testing.T) {
	schema := AuditResponseSchema()
	assert.Equal(t, "OBJECT", schema["type"])
	assert.Equal(t, []string{"invoiceNo", "partyName", "fields", "documentMatched"}, schema["required"])

	fields := schema["properties"].(map[string]any)["fields"].(map[string]any)
	items := fields["items"].(map[string]any)
	status := items["properties"].(map[string]any)["status"].(map[string]any)
	assert.Len(t, status["enum"], len(dto.AuditStatuses))
}

func TestRunAuditFlagsPartyMismatch(t *testing.T) {
	ex := &fakeExtractor{replies: map[string]string{
		"INV-5.pdf": `{"invoiceNo":"INV-5","partyName":"Initech Solutions","documentMatched":"","fields":[]}`,
		"INV-6.pdf": `{"invoiceNo":"INV-6","partyName":"ACME PVT LTD","documentMatched":"","fields":[]}`,
	}}
	_, outcomes := runAudit(t, ex,
		[]dto.Row{ledgerRow(2, "INV-5", "Acme"), ledgerRow(3, "INV-6", "Acme")},
		[]dto.FileData{doc("INV-5.pdf"), doc("INV-6.pdf")},
	)

	require.Len(t, outcomes, 2)
	assert.True(t, outcomes[0].Result.PartyMismatch)
	assert.False(t, outcomes[1].Result.PartyMismatch)
}
