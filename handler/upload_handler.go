package handler

import (
	"fmt"
	"net/http"

	"github.com/auditpro/document-auditor/dto"
	"github.com/auditpro/document-auditor/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UploadHandler accepts the ledger and the source documents of a session.
type UploadHandler struct {
	store     *service.SessionStore
	ledger    *service.LedgerService
	documents *service.DocumentService
	log       *zap.Logger
}

func NewUploadHandler(store *service.SessionStore, ledger *service.LedgerService, documents *service.DocumentService, log *zap.Logger) *UploadHandler {
	return &UploadHandler{store: store, ledger: ledger, documents: documents, log: log}
}

// UploadLedger handles POST /sessions/:id/ledger
func (h *UploadHandler) UploadLedger(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.store.Get(id); err != nil {
		sendSessionError(c, h.log, err)
		return
	}

	var req dto.LedgerUploadRequest
	if err := c.ShouldBind(&req); err != nil {
		sendError(c, h.log, http.StatusBadRequest, CodeInvalidLedger, "Failed to parse multipart form", err)
		return
	}
	if err := req.Validate(); err != nil {
		sendError(c, h.log, http.StatusBadRequest, CodeInvalidLedger, err.Error(), err)
		return
	}

	file, err := req.File.Open()
	if err != nil {
		sendError(c, h.log, http.StatusBadRequest, CodeInvalidLedger, "Failed to open ledger", err)
		return
	}
	defer file.Close()

	rows, err := h.ledger.Load(req.File.Filename, file)
	if err != nil {
		sendError(c, h.log, http.StatusBadRequest, CodeInvalidLedger, "Failed to parse ledger", err)
		return
	}
	if err := h.store.ReplaceRows(id, rows); err != nil {
		sendSessionError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.LedgerUploadResponse{
		RowCount: len(rows),
		Columns:  service.Columns(rows),
		Message:  fmt.Sprintf("Successfully loaded %d rows.", len(rows)),
	})
}

// UploadDocuments handles POST /sessions/:id/documents
func (h *UploadHandler) UploadDocuments(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.store.Get(id); err != nil {
		sendSessionError(c, h.log, err)
		return
	}

	var req dto.DocumentUploadRequest
	if err := c.ShouldBind(&req); err != nil {
		sendError(c, h.log, http.StatusBadRequest, CodeInvalidDocument, "Failed to parse multipart form", err)
		return
	}
	if err := req.Validate(); err != nil {
		sendError(c, h.log, http.StatusBadRequest, CodeInvalidDocument, err.Error(), err)
		return
	}

	files := make([]service.UploadedFile, len(req.Files))
	for i, fh := range req.Files {
		files[i] = service.FromMultipart(fh)
	}
	docs, err := h.documents.LoadBatch(c.Request.Context(), files)
	if err != nil {
		sendError(c, h.log, http.StatusBadRequest, CodeInvalidDocument, "Failed to load documents", err)
		return
	}

	total, err := h.store.AppendDocuments(id, docs)
	if err != nil {
		sendSessionError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.DocumentUploadResponse{
		Added:         len(docs),
		DocumentCount: total,
		Documents:     summaries(docs),
		Message:       fmt.Sprintf("Successfully loaded %d document(s).", total),
	})
}

// ListDocuments handles GET /sessions/:id/documents
func (h *UploadHandler) ListDocuments(c *gin.Context) {
	snap, err := h.store.Get(c.Param("id"))
	if err != nil {
		sendSessionError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": summaries(snap.Documents)})
}
