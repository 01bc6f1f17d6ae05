package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/auditpro/document-auditor/client"
	"github.com/auditpro/document-auditor/config"
	"github.com/auditpro/document-auditor/dto"
	"github.com/auditpro/document-auditor/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	NoMatchingDocument = "NO MATCHING FILE FOUND"
	notAvailable       = "N/A"
	noMatchSummary     = "Warning: No uploaded document filename matched the identifier '%s'. Please ensure your PDF filename contains the Invoice/BE number."
)

// Extractor reads a document and compares it with the prompt's expected data,
// returning the JSON text of the structured response.
type Extractor interface {
	GenerateJSON(ctx context.Context, req client.GenerateRequest) (string, error)
}

// AuditService walks the ledger one row at a time and compares each row with
// its matched document.
type AuditService struct {
	extractor Extractor
	cfg       *config.Config
	log       *zap.Logger
	now       func() time.Time
}

func NewAuditService(extractor Extractor, cfg *config.Config, log *zap.Logger) *AuditService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuditService{
		extractor: extractor,
		cfg:       cfg,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// RunAudit audits rows in order and hands every outcome to onOutcome as soon
// as it is known. Rows without an identifier produce nothing. A failed row
// becomes an AuditError outcome and the run carries on. On cancellation the
// partial report is returned together with the context error.
func (s *AuditService) RunAudit(ctx context.Context, rows []dto.Row, docs []dto.FileData, onOutcome func(dto.RowOutcome)) (*dto.AuditReport, error) {
	if err := s.cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	if s.extractor == nil {
		return nil, fmt.Errorf("audit: no extractor configured")
	}

	report := &dto.AuditReport{
		RunID:        uuid.NewString(),
		StartedAt:    s.now(),
		RowsTotal:    len(rows),
		Results:      []dto.AuditResult{},
		Failures:     []dto.AuditError{},
		StatusCounts: make(map[dto.AuditStatus]int),
	}
	log := s.log.With(zap.String("run_id", report.RunID))
	log.Info("Audit started", zap.Int("rows", len(rows)), zap.Int("documents", len(docs)))

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return s.finish(report, log, err)
		}
		if row.Line == 0 {
			row.Line = i + 1
		}

		outcome, err := s.AuditRow(ctx, row, docs)
		if err != nil {
			return s.finish(report, log, err)
		}
		if outcome == nil {
			report.RowsSkipped++
			continue
		}
		report.Record(*outcome)
		if onOutcome != nil {
			onOutcome(*outcome)
		}
	}
	return s.finish(report, log, nil)
}

func (s *AuditService) finish(report *dto.AuditReport, log *zap.Logger, err error) (*dto.AuditReport, error) {
	report.FinishedAt = s.now()
	fields := []zap.Field{
		zap.Int("results", len(report.Results)),
		zap.Int("failures", len(report.Failures)),
		zap.Int("skipped", report.RowsSkipped),
		zap.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	}
	if err != nil {
		log.Warn("Audit interrupted", append(fields, zap.Error(err))...)
		return report, err
	}
	log.Info("Audit finished", fields...)
	return report, nil
}

// AuditRow audits a single row. It returns nil when the row has no
// identifier. The error is only set when ctx ended mid-row.
func (s *AuditService) AuditRow(ctx context.Context, row dto.Row, docs []dto.FileData) (*dto.RowOutcome, error) {
	match := MatchDocument(row, docs)
	if match.Skipped() {
		s.log.Debug("Row skipped, no identifier", zap.Int("row", row.Line))
		return nil, nil
	}
	if match.Document == nil {
		result := noMatchResult(row, match.Identifier)
		return &dto.RowOutcome{Result: &result}, nil
	}

	result, err := s.compare(ctx, row, match)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.log.Error("Error auditing invoice",
			zap.Int("row", row.Line),
			zap.String("invoice_no", match.Identifier),
			zap.String("document", match.Document.Name),
			zap.Error(err),
		)
		return &dto.RowOutcome{Err: &dto.AuditError{
			RowNumber:       row.Line,
			InvoiceNo:       match.Identifier,
			DocumentMatched: match.Document.Name,
			Message:         err.Error(),
		}}, nil
	}
	return &dto.RowOutcome{Result: result}, nil
}

func (s *AuditService) compare(ctx context.Context, row dto.Row, match Match) (*dto.AuditResult, error) {
	prompt, err := BuildAuditPrompt(row)
	if err != nil {
		return nil, err
	}
	doc := match.Document

	raw, err := s.extractor.GenerateJSON(ctx, client.GenerateRequest{
		Prompt:   prompt,
		Document: &client.InlineData{MimeType: doc.Type, Data: doc.Base64},
		Schema:   AuditResponseSchema(),
	})
	if err != nil {
		return nil, err
	}

	var parsed dto.AuditResult
	if err := client.DecodeJSON(raw, &parsed); err != nil {
		return nil, fmt.Errorf("invalid audit response: %w", err)
	}

	result := &dto.AuditResult{
		RowNumber:       row.Line,
		InvoiceNo:       firstNonEmpty(parsed.InvoiceNo, match.Identifier, notAvailable),
		PartyName:       firstNonEmpty(parsed.PartyName, row.Get(dto.ColumnPartyName), notAvailable),
		DocumentMatched: doc.Name,
		CandidateCount:  len(match.Candidates),
		Summary:         parsed.Summary,
		Fields:          make([]dto.AuditFieldResult, 0, len(parsed.Fields)),
	}
	for _, f := range parsed.Fields {
		f.Status = CanonicalStatus(string(f.Status))
		result.Fields = append(result.Fields, f)
	}

	// the model reports the party it read; flag it when it is not the ledger's
	if ledgerParty := row.Get(dto.ColumnPartyName); ledgerParty != "" && parsed.PartyName != "" &&
		!utils.PartyNamesAgree(ledgerParty, parsed.PartyName) {
		result.PartyMismatch = true
		s.log.Warn("Document party differs from ledger",
			zap.Int("row", row.Line),
			zap.String("ledger_party", ledgerParty),
			zap.String("document_party", parsed.PartyName),
		)
	}
	return result, nil
}

func noMatchResult(row dto.Row, identifier string) dto.AuditResult {
	fields := make([]dto.AuditFieldResult, 0, len(row.Columns))
	for _, col := range row.Columns {
		fields = append(fields, dto.AuditFieldResult{
			FieldName:  col,
			ExcelValue: row.Get(col),
			PDFValue:   notAvailable,
			Status:     dto.StatusMissing,
		})
	}
	return dto.AuditResult{
		RowNumber:       row.Line,
		InvoiceNo:       identifier,
		PartyName:       utils.PartyName(row),
		DocumentMatched: NoMatchingDocument,
		Summary:         fmt.Sprintf(noMatchSummary, identifier),
		Fields:          fields,
	}
}

// CanonicalStatus maps a status to its canonical spelling ignoring case and
// surrounding space. Unknown values are returned trimmed.
func CanonicalStatus(raw string) dto.AuditStatus {
	trimmed := strings.TrimSpace(raw)
	for _, s := range dto.AuditStatuses {
		if strings.EqualFold(trimmed, string(s)) {
			return s
		}
	}
	return dto.AuditStatus(trimmed)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
