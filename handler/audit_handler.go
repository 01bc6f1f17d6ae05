package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/auditpro/document-auditor/dto"
	"github.com/auditpro/document-auditor/render"
	"github.com/auditpro/document-auditor/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SSE event names.
const (
	EventResult  = "result"
	EventFailure = "failure"
	EventDone    = "done"
	EventError   = "error"
)

type AuditHandler struct {
	store *service.SessionStore
	audit *service.AuditService
	log   *zap.Logger
}

func NewAuditHandler(store *service.SessionStore, audit *service.AuditService, log *zap.Logger) *AuditHandler {
	return &AuditHandler{store: store, audit: audit, log: log}
}

// RunAudit handles POST /sessions/:id/audit. Outcomes are streamed as
// server-sent events while the audit runs; ?stream=false waits and returns
// the report as JSON instead.
func (h *AuditHandler) RunAudit(c *gin.Context) {
	id := c.Param("id")
	stream := c.DefaultQuery("stream", "true") != "false"

	rows, docs, err := h.store.BeginAudit(id)
	if err != nil {
		sendSessionError(c, h.log, err)
		return
	}
	if len(rows) == 0 || len(docs) == 0 {
		_ = h.store.FinishAudit(id, nil)
		sendError(c, h.log, http.StatusBadRequest, CodeNothingToAudit, dto.ErrNothingToAudit.Error(), nil)
		return
	}

	if stream {
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")
	}

	onOutcome := func(o dto.RowOutcome) {
		_ = h.store.RecordOutcome(id, o)
		if !stream {
			return
		}
		if o.Err != nil {
			c.SSEvent(EventFailure, o.Err)
		} else {
			c.SSEvent(EventResult, o.Result)
		}
		c.Writer.Flush()
	}

	report, err := h.audit.RunAudit(c.Request.Context(), rows, docs, onOutcome)
	_ = h.store.FinishAudit(id, report)

	if err != nil {
		h.log.Warn("Audit did not complete", zap.String("session_id", id), zap.Error(err))
		if c.Request.Context().Err() != nil {
			// client went away
			return
		}
		if c.Writer.Written() {
			c.SSEvent(EventError, dto.ErrorResponse{Error: CodeAuditFailed, Message: err.Error(), Code: http.StatusInternalServerError})
			c.Writer.Flush()
			return
		}
		sendSessionError(c, h.log, err)
		return
	}

	if !stream {
		c.JSON(http.StatusOK, report)
		return
	}
	c.SSEvent(EventDone, report)
	c.Writer.Flush()
}

// GetResults handles GET /sessions/:id/results
func (h *AuditHandler) GetResults(c *gin.Context) {
	snap, err := h.store.Get(c.Param("id"))
	if err != nil {
		sendSessionError(c, h.log, err)
		return
	}

	if wantsTable(c) {
		var b strings.Builder
		b.WriteString(render.ResultList(snap.Results, false))
		b.WriteString("\n")
		if len(snap.Failures) > 0 {
			b.WriteString(render.FailureList(snap.Failures))
			b.WriteString("\n")
		}
		c.String(http.StatusOK, b.String())
		return
	}

	results, failures := snap.Results, snap.Failures
	if results == nil {
		results = []dto.AuditResult{}
	}
	if failures == nil {
		failures = []dto.AuditError{}
	}
	c.JSON(http.StatusOK, dto.ResultsResponse{Results: results, Failures: failures, Auditing: snap.Auditing})
}

// GetResult handles GET /sessions/:id/results/:index
func (h *AuditHandler) GetResult(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		sendError(c, h.log, http.StatusBadRequest, CodeInvalidIndex, dto.ErrInvalidResultIndex.Error(), nil)
		return
	}

	result, err := h.store.Result(c.Param("id"), index)
	if errors.Is(err, dto.ErrInvalidResultIndex) {
		sendError(c, h.log, http.StatusNotFound, CodeInvalidIndex, err.Error(), nil)
		return
	}
	if err != nil {
		sendSessionError(c, h.log, err)
		return
	}

	if wantsTable(c) {
		c.String(http.StatusOK, render.ResultDetail(result, false))
		return
	}
	c.JSON(http.StatusOK, result)
}

func wantsTable(c *gin.Context) bool {
	return strings.EqualFold(c.Query("format"), "table")
}
