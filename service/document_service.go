package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/auditpro/document-auditor/dto"
	"github.com/auditpro/document-auditor/utils"
	"go.uber.org/zap"
)

// UploadedFile is a document waiting to be loaded, either from a multipart
// form or from disk.
type UploadedFile struct {
	Name      string
	MediaType string
	Size      int64
	Open      func() (io.ReadCloser, error)
}

// FromMultipart wraps a form file header.
func FromMultipart(fh *multipart.FileHeader) UploadedFile {
	return UploadedFile{
		Name:      fh.Filename,
		MediaType: fh.Header.Get("Content-Type"),
		Size:      fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// FromPath wraps a file on disk. The media type is inferred from the extension.
func FromPath(path string) (UploadedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return UploadedFile{}, err
	}
	if info.IsDir() {
		return UploadedFile{}, fmt.Errorf("%s is a directory", path)
	}
	return UploadedFile{
		Name: filepath.Base(path),
		Size: info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// DocumentService turns uploaded files into in-memory document blobs.
type DocumentService struct {
	pdf      PDFProcessor
	barcodes BarcodeReader
	log      *zap.Logger
}

func NewDocumentService(pdf PDFProcessor, barcodes BarcodeReader, log *zap.Logger) *DocumentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DocumentService{pdf: pdf, barcodes: barcodes, log: log}
}

// LoadBatch reads and encodes every file. A failure on any file fails the
// whole batch and nothing is returned.
func (s *DocumentService) LoadBatch(ctx context.Context, files []UploadedFile) ([]dto.FileData, error) {
	docs := make([]dto.FileData, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := s.load(f)
		if err != nil {
			s.log.Warn("Document batch rejected",
				zap.String("file", f.Name),
				zap.Int("batch_size", len(files)),
				zap.Error(err),
			)
			return nil, err
		}
		docs = append(docs, doc)
	}
	s.log.Info("Documents loaded", zap.Int("count", len(docs)))
	return docs, nil
}

func (s *DocumentService) load(f UploadedFile) (dto.FileData, error) {
	mediaType := utils.DocumentMediaType(f.MediaType, f.Name)
	if !utils.IsSupportedDocument(mediaType) {
		return dto.FileData{}, fmt.Errorf("%s: %w", f.Name, dto.ErrUnsupportedMediaType)
	}
	if f.Open == nil {
		return dto.FileData{}, fmt.Errorf("%s: no content", f.Name)
	}

	rc, err := f.Open()
	if err != nil {
		return dto.FileData{}, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return dto.FileData{}, fmt.Errorf("failed to read %s: %w", f.Name, err)
	}

	doc := dto.FileData{
		Name:   f.Name,
		Type:   mediaType,
		Base64: base64.StdEncoding.EncodeToString(data),
		Size:   int64(len(data)),
	}
	s.describe(&doc, data)
	return doc, nil
}

// describe fills the optional metadata. Failures are logged at debug and
// otherwise ignored.
func (s *DocumentService) describe(doc *dto.FileData, data []byte) {
	switch {
	case doc.Type == "application/pdf" && s.pdf != nil:
		info, err := s.pdf.Inspect(data)
		if err != nil {
			s.log.Debug("PDF inspection skipped", zap.String("file", doc.Name), zap.Error(err))
			return
		}
		doc.PageCount = info.PageCount
		doc.Preview = info.Preview
	case strings.HasPrefix(doc.Type, "image/") && s.barcodes != nil:
		text, err := s.barcodes.Decode(data)
		if err != nil {
			s.log.Debug("No barcode read", zap.String("file", doc.Name), zap.Error(err))
			return
		}
		doc.Barcode = text
	}
}
