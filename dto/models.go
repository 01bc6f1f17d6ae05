package dto

import (
	"bytes"
	"encoding/json"
	"time"
)

// Column names the ledger is expected to carry.
const (
	ColumnInvoiceNo = "Invoice No."
	ColumnBENo      = "B/E No."
	ColumnPartyName = "Party Name"
)

// Row is one ledger entry. Columns keeps the header order of the source file.
type Row struct {
	Line    int               `json:"-"`
	Columns []string          `json:"-"`
	Values  map[string]string `json:"-"`
}

// NewRow builds a row from parallel column/value slices.
func NewRow(line int, columns, values []string) Row {
	row := Row{Line: line, Values: make(map[string]string, len(columns))}
	for i, col := range columns {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		row.Set(col, v)
	}
	return row
}

// Set adds or replaces a column value, keeping first-seen column order.
func (r *Row) Set(column, value string) {
	if r.Values == nil {
		r.Values = make(map[string]string)
	}
	if _, ok := r.Values[column]; !ok {
		r.Columns = append(r.Columns, column)
	}
	r.Values[column] = value
}

// Get returns the value for a column or "" when absent.
func (r Row) Get(column string) string {
	return r.Values[column]
}

// MarshalJSON writes the row as an object in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.Values[col])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FileData is an uploaded source document held in memory.
type FileData struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Base64    string `json:"base64,omitempty"`
	Size      int64  `json:"size"`
	PageCount int    `json:"page_count,omitempty"`
	Preview   string `json:"preview,omitempty"`
	Barcode   string `json:"barcode,omitempty"`
}

// Summary returns a copy without the encoded content.
func (f FileData) Summary() FileData {
	f.Base64 = ""
	return f
}

type AuditStatus string

const (
	StatusMatch        AuditStatus = "Match"
	StatusMismatch     AuditStatus = "Mismatch"
	StatusMissing      AuditStatus = "Missing"
	StatusMatchRounded AuditStatus = "Match (Rounded)"
)

// AuditStatuses lists the statuses the extraction service may return.
var AuditStatuses = []AuditStatus{StatusMatch, StatusMismatch, StatusMissing, StatusMatchRounded}

type AuditFieldResult struct {
	FieldName  string      `json:"fieldName"`
	ExcelValue string      `json:"excelValue"`
	PDFValue   string      `json:"pdfValue"`
	Status     AuditStatus `json:"status"`
	Comment    string      `json:"comment,omitempty"`
}

type AuditResult struct {
	RowNumber       int                `json:"rowNumber"`
	InvoiceNo       string             `json:"invoiceNo"`
	PartyName       string             `json:"partyName"`
	DocumentMatched string             `json:"documentMatched"`
	CandidateCount  int                `json:"candidateCount"`
	PartyMismatch   bool               `json:"partyMismatch,omitempty"`
	Summary         string             `json:"summary"`
	Fields          []AuditFieldResult `json:"fields"`
}

// Passed reports whether every field matched, rounded matches included.
func (r AuditResult) Passed() bool {
	if len(r.Fields) == 0 {
		return false
	}
	for _, f := range r.Fields {
		if f.Status != StatusMatch && f.Status != StatusMatchRounded {
			return false
		}
	}
	return true
}

// AuditError describes a row whose extraction call failed.
type AuditError struct {
	RowNumber       int    `json:"rowNumber"`
	InvoiceNo       string `json:"invoiceNo"`
	DocumentMatched string `json:"documentMatched"`
	Message         string `json:"message"`
}

func (e *AuditError) Error() string {
	return "audit row " + e.InvoiceNo + ": " + e.Message
}

// RowOutcome is delivered once per audited row: exactly one of Result or Err is set.
type RowOutcome struct {
	Result *AuditResult `json:"result,omitempty"`
	Err    *AuditError  `json:"error,omitempty"`
}

type AuditReport struct {
	RunID        string              `json:"runId"`
	StartedAt    time.Time           `json:"startedAt"`
	FinishedAt   time.Time           `json:"finishedAt"`
	RowsTotal    int                 `json:"rowsTotal"`
	RowsSkipped  int                 `json:"rowsSkipped"`
	Results      []AuditResult       `json:"results"`
	Failures     []AuditError        `json:"failures"`
	StatusCounts map[AuditStatus]int `json:"statusCounts"`
}

// Record appends an outcome to the report.
func (r *AuditReport) Record(outcome RowOutcome) {
	if outcome.Err != nil {
		r.Failures = append(r.Failures, *outcome.Err)
		return
	}
	if outcome.Result == nil {
		return
	}
	r.Results = append(r.Results, *outcome.Result)
	if r.StatusCounts == nil {
		r.StatusCounts = make(map[AuditStatus]int)
	}
	for _, f := range outcome.Result.Fields {
		r.StatusCounts[f.Status]++
	}
}
