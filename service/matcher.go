package service

import (
	"github.com/auditpro/document-auditor/dto"
	"github.com/auditpro/document-auditor/utils"
)

// Match is the outcome of looking up a row's document.
type Match struct {
	// Identifier is the raw invoice or B/E number from the ledger.
	Identifier string
	// Key is the trimmed, lowercased identifier used against filenames.
	Key string
	// Document is the first candidate in upload order, nil if none.
	Document   *dto.FileData
	Candidates []dto.FileData
}

// Skipped reports whether the row has no usable identifier.
func (m Match) Skipped() bool {
	return m.Key == ""
}

// MatchDocument finds the documents whose filename refers to the row's
// identifier. The first candidate wins; there is no scoring.
func MatchDocument(row dto.Row, docs []dto.FileData) Match {
	id := utils.ExtractIdentifier(row)
	m := Match{Identifier: id, Key: utils.NormalizeIdentifier(id)}
	if m.Skipped() {
		return m
	}
	for _, doc := range docs {
		if utils.FilenameMatches(doc.Name, m.Key) {
			m.Candidates = append(m.Candidates, doc)
		}
	}
	if len(m.Candidates) > 0 {
		m.Document = &m.Candidates[0]
	}
	return m
}
