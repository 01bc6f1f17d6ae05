package utils

import (
	"regexp"
	"strings"

	"github.com/auditpro/document-auditor/dto"
)

var filenameSeparator = regexp.MustCompile(`[^a-zA-Z0-9]`)

// ExtractIdentifier returns the row's invoice number, falling back to the
// bill-of-entry number when the invoice cell is empty. The value is returned
// as written in the ledger.
func ExtractIdentifier(row dto.Row) string {
	if v := row.Get(dto.ColumnInvoiceNo); v != "" {
		return v
	}
	return row.Get(dto.ColumnBENo)
}

// NormalizeIdentifier produces the key used for filename matching.
func NormalizeIdentifier(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// TokenizeFilename lowercases a filename and splits it on every
// non-alphanumeric character. Empty tokens are kept.
func TokenizeFilename(name string) []string {
	return filenameSeparator.Split(strings.ToLower(name), -1)
}

// FilenameMatches reports whether a document name refers to the normalized
// identifier: an exact token match, or else plain substring containment.
func FilenameMatches(filename, key string) bool {
	if key == "" {
		return false
	}
	for _, token := range TokenizeFilename(filename) {
		if token == key {
			return true
		}
	}
	return strings.Contains(strings.ToLower(filename), key)
}

// PartyName returns the row's party or "N/A".
func PartyName(row dto.Row) string {
	if v := row.Get(dto.ColumnPartyName); v != "" {
		return v
	}
	return "N/A"
}
