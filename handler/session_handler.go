package handler

import (
	"net/http"

	"github.com/auditpro/document-auditor/dto"
	"github.com/auditpro/document-auditor/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SessionHandler struct {
	store *service.SessionStore
	log   *zap.Logger
}

func NewSessionHandler(store *service.SessionStore, log *zap.Logger) *SessionHandler {
	return &SessionHandler{store: store, log: log}
}

// CreateSession handles POST /sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	id := h.store.Create()
	h.log.Info("Session created", zap.String("session_id", id))
	c.JSON(http.StatusCreated, dto.SessionResponse{SessionID: id})
}

// GetSession handles GET /sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	snap, err := h.store.Get(c.Param("id"))
	if err != nil {
		sendSessionError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.SessionResponse{
		SessionID:     snap.ID,
		RowCount:      len(snap.Rows),
		DocumentCount: len(snap.Documents),
		ResultCount:   len(snap.Results),
		Auditing:      snap.Auditing,
		Documents:     summaries(snap.Documents),
	})
}

// DeleteSession handles DELETE /sessions/:id
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	if err := h.store.Delete(c.Param("id")); err != nil {
		sendSessionError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func summaries(docs []dto.FileData) []dto.FileData {
	out := make([]dto.FileData, len(docs))
	for i, d := range docs {
		out[i] = d.Summary()
	}
	return out
}
