package service

import (
	"testing"

	"github.com/auditpro/document-auditor/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchDocument(t *testing.T) {
	docs := []dto.FileData{doc("INV-1000.pdf"), doc("INV-100-A.pdf"), doc("scan_100.png")}

	m := MatchDocument(ledgerRow(2, "100", "Acme"), docs)

	assert.Equal(t, "100", m.Identifier)
	assert.Equal(t, "100", m.Key)
	require.NotNil(t, m.Document)
	// first in upload order wins, even when a later name is a closer fit
	assert.Equal(t, "INV-1000.pdf", m.Document.Name)
	assert.Len(t, m.Candidates, 3)
}

func TestMatchDocumentSubstring(t *testing.T) {
	m := MatchDocument(ledgerRow(2, "100", "Acme"), []dto.FileData{doc("INV-100-A.pdf")})
	require.NotNil(t, m.Document)
	assert.Equal(t, "INV-100-A.pdf", m.Document.Name)
}

func TestMatchDocumentNormalizesKey(t *testing.T) {
	m := MatchDocument(ledgerRow(2, "  INV-001 ", "Acme"), []dto.FileData{doc("inv-001_invoice.PDF")})
	assert.Equal(t, "  INV-001 ", m.Identifier)
	assert.Equal(t, "inv-001", m.Key)
	require.NotNil(t, m.Document)
}

func TestMatchDocumentNone(t *testing.T) {
	m := MatchDocument(ledgerRow(2, "INV-002", "Acme"), []dto.FileData{doc("INV-003.pdf")})
	assert.False(t, m.Skipped())
	assert.Nil(t, m.Document)
	assert.Empty(t, m.Candidates)
}

func TestMatchDocumentSkipped(t *testing.T) {
	m := MatchDocument(dto.NewRow(2, []string{"Party Name"}, []string{"Acme"}), []dto.FileData{doc("x.pdf")})
	assert.True(t, m.Skipped())
	assert.Nil(t, m.Document)
}

func TestMatchDocumentDeterministic(t *testing.T) {
	docs := []dto.FileData{doc("500-a.pdf"), doc("500-b.pdf")}
	row := ledgerRow(2, "500", "Acme")
	first := MatchDocument(row, docs)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first.Document.Name, MatchDocument(row, docs).Document.Name)
	}
}
