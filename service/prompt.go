package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/auditpro/document-auditor/dto"
	"github.com/auditpro/document-auditor/utils"
)

// AuditFields are the values the model is asked to read off the document.
var AuditFields = []string{
	"Party Name",
	"Invoice No.",
	"Invoice Date",
	"Invoice QTY.",
	"Invoice Value",
	"Currency",
	"B/E No.",
	"B/E Date",
	"Conversion Rate",
	"Assessable Value",
	"BCD (Amount)",
	"IGST (A)",
	"Total Payment",
}

const auditPromptTemplate = `You are a professional Document Audit Assistant. Your task is to perform a detailed comparison.

EXPECTED EXCEL DATA:
%s

MANDATORY PRE-CHECK:
Does this document actually contain data for Party: %q and Invoice/BE No: %q?
If the document belongs to a different transaction entirely, report ALL fields as "Mismatch" and explain the confusion in the summary.

AUDIT RULES:
1. Dates: Matches if Day, Month, Year are the same (e.g. 2025-10-05 and 05-Oct-2025 are a MATCH).
2. Currency: Matches if it's the same currency (e.g. USD and US Dollars are a MATCH).
3. Numbers: Check numeric equality. If rounding differs by less than 1 (e.g. 1022000.4 and 1022000), use "Match (Rounded)".
4. Formulas: Verify that Assessable Value, BCD, and IGST components look correct based on the Invoice Value.
5. Status Options: %s.

Identify and extract these specific fields from the PDF to compare:
%s
`

// BuildAuditPrompt renders the comparison instructions for one ledger row.
func BuildAuditPrompt(row dto.Row) (string, error) {
	expected, err := json.MarshalIndent(row, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode row: %w", err)
	}

	statuses := make([]string, len(dto.AuditStatuses))
	for i, s := range dto.AuditStatuses {
		statuses[i] = fmt.Sprintf("%q", string(s))
	}

	var fields strings.Builder
	for _, f := range AuditFields {
		fields.WriteString("- ")
		fields.WriteString(f)
		fields.WriteString("\n")
	}

	return fmt.Sprintf(auditPromptTemplate,
		expected,
		row.Get(dto.ColumnPartyName),
		utils.ExtractIdentifier(row),
		strings.Join(statuses, ", "),
		strings.TrimRight(fields.String(), "\n"),
	), nil
}

// AuditResponseSchema is the structured output the model must return.
func AuditResponseSchema() map[string]any {
	str := func() map[string]any { return map[string]any{"type": "STRING"} }

	statusEnum := make([]string, len(dto.AuditStatuses))
	for i, s := range dto.AuditStatuses {
		statusEnum[i] = string(s)
	}

	return map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"invoiceNo":       str(),
			"partyName":       str(),
			"documentMatched": str(),
			"summary":         str(),
			"fields": map[string]any{
				"type": "ARRAY",
				"items": map[string]any{
					"type": "OBJECT",
					"properties": map[string]any{
						"fieldName":  str(),
						"excelValue": str(),
						"pdfValue":   str(),
						"status": map[string]any{
							"type":        "STRING",
							"enum":        statusEnum,
							"description": "Match, Mismatch, Missing, or Match (Rounded)",
						},
						"comment": str(),
					},
					"required": []string{"fieldName", "excelValue", "pdfValue", "status"},
				},
			},
		},
		"required": []string{"invoiceNo", "partyName", "fields", "documentMatched"},
	}
}
