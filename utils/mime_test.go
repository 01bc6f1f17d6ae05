package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferMimeType(t *testing.T) {
	assert.Equal(t, "application/pdf", InferMimeType("Invoice.PDF"))
	assert.Equal(t, "image/jpeg", InferMimeType("scan.jpeg"))
	assert.Equal(t, "", InferMimeType("notes.txt"))
}

func TestDocumentMediaType(t *testing.T) {
	assert.Equal(t, "image/png", DocumentMediaType("image/png", "x.pdf"))
	assert.Equal(t, "application/pdf", DocumentMediaType("application/octet-stream", "x.pdf"))
	assert.Equal(t, "application/pdf", DocumentMediaType("", "x.pdf"))
	assert.Equal(t, "application/pdf", DocumentMediaType("Application/PDF; charset=binary", "x"))
}

func TestIsSupportedDocument(t *testing.T) {
	assert.True(t, IsSupportedDocument("application/pdf"))
	assert.True(t, IsSupportedDocument("image/webp"))
	assert.False(t, IsSupportedDocument("text/csv"))
	assert.False(t, IsSupportedDocument(""))
}
