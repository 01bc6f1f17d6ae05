package handler

import (
	"errors"
	"net/http"

	"github.com/auditpro/document-auditor/config"
	"github.com/auditpro/document-auditor/dto"
	"github.com/auditpro/document-auditor/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error codes carried in dto.ErrorResponse.Error.
const (
	CodeSessionNotFound = "SESSION_NOT_FOUND"
	CodeInvalidLedger   = "INVALID_LEDGER"
	CodeInvalidDocument = "INVALID_DOCUMENTS"
	CodeNothingToAudit  = "NOTHING_TO_AUDIT"
	CodeAuditInProgress = "AUDIT_IN_PROGRESS"
	CodeConfiguration   = "CONFIGURATION_ERROR"
	CodeAuditFailed     = "AUDIT_FAILED"
	CodeInvalidIndex    = "INVALID_RESULT_INDEX"
)

// sendError sends a structured error response
func sendError(c *gin.Context, log *zap.Logger, statusCode int, code, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		_ = c.Error(err)
		log.Debug(message, zap.String("code", code), zap.Error(err))
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   code,
		Message: errorMsg,
		Code:    statusCode,
	})
}

// sendSessionError maps store errors to responses.
func sendSessionError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		sendError(c, log, http.StatusNotFound, CodeSessionNotFound, "Session not found", err)
	case errors.Is(err, service.ErrAuditInProgress):
		sendError(c, log, http.StatusConflict, CodeAuditInProgress, "Audit already running", err)
	case errors.Is(err, config.ErrMissingAPIKey):
		sendError(c, log, http.StatusInternalServerError, CodeConfiguration, "Missing API key", err)
	default:
		sendError(c, log, http.StatusInternalServerError, CodeAuditFailed, "Audit failed", err)
	}
}
