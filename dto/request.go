package dto

import (
	"errors"
	"mime/multipart"
)

var (
	ErrLedgerFileRequired   = errors.New("ledger file is required")
	ErrDocumentsRequired    = errors.New("at least one document is required")
	ErrNothingToAudit       = errors.New("Please upload both the summary sheet and at least one document.")
	ErrInvalidResultIndex   = errors.New("result index out of range")
	ErrUnsupportedMediaType = errors.New("unsupported document type. Supported: PDF and images")
)

// LedgerUploadRequest carries the summary sheet upload
type LedgerUploadRequest struct {
	File *multipart.FileHeader `form:"file"`
}

// Validate performs basic validation on the request
func (r *LedgerUploadRequest) Validate() error {
	if r.File == nil {
		return ErrLedgerFileRequired
	}
	return nil
}

// DocumentUploadRequest carries one batch of source documents
type DocumentUploadRequest struct {
	Files []*multipart.FileHeader `form:"files[]"`
}

// Validate performs basic validation on the request
func (r *DocumentUploadRequest) Validate() error {
	if len(r.Files) == 0 {
		return ErrDocumentsRequired
	}
	return nil
}
