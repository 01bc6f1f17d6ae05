package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

const defaultPreviewLimit = 280

// PDFInfo is the metadata shown next to an uploaded PDF.
type PDFInfo struct {
	PageCount int
	Preview   string
}

type PDFProcessor interface {
	Inspect(pdfData []byte) (PDFInfo, error)
}

type pdfProcessor struct {
	conf         *model.Configuration
	previewLimit int
}

func NewPDFProcessor() PDFProcessor {
	return &pdfProcessor{
		conf:         model.NewDefaultConfiguration(),
		previewLimit: defaultPreviewLimit,
	}
}

// Inspect counts pages with pdfcpu and pulls a short plain text preview of
// the first page. A missing preview is not an error: scanned PDFs carry no
// text layer.
func (p *pdfProcessor) Inspect(pdfData []byte) (PDFInfo, error) {
	pages, err := api.PageCount(bytes.NewReader(pdfData), p.conf)
	if err != nil {
		return PDFInfo{}, fmt.Errorf("failed to count pages: %w", err)
	}
	return PDFInfo{
		PageCount: pages,
		Preview:   p.firstPageText(pdfData),
	}, nil
}

func (p *pdfProcessor) firstPageText(pdfData []byte) (text string) {
	// ledongthuc/pdf panics on some malformed content streams
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil || r.NumPage() == 0 {
		return ""
	}
	page := r.Page(1)
	if page.V.IsNull() {
		return ""
	}
	raw, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return truncate(strings.Join(strings.Fields(raw), " "), p.previewLimit)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
