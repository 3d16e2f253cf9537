package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"depot-records/backend/internal/dto"
	"depot-records/backend/internal/engine"
	"depot-records/backend/pkg/response"
)

// 业务响应码：1xxxx 请求错误，2xxxx 记录生命周期错误，
// 3xxxx 台账与附件错误
const (
	codeBadRequest = 10001

	codeValidationFailed  = 20001
	codeInvalidTransition = 20002
	codeGuardFailed       = 20003
	codeConflict          = 20004
	codeNotFound          = 20005
	codeSequenceExhausted = 20006
	codeUnknownEntity     = 20007
	codeActorRequired     = 20008

	codeExportEmpty        = 30001
	codeExportTooLarge     = 30002
	codeImportInvalid      = 30003
	codeAttachmentDisabled = 30004
	codeAttachmentType     = 30005
	codeAttachmentEmpty    = 30006
)

// handleRecordError 将生命周期错误映射为 HTTP 响应
func handleRecordError(c *gin.Context, err error) {
	if ve, ok := engine.IsValidationError(err); ok {
		response.ValidationFailed(c, codeValidationFailed, ve.Fields)
		return
	}
	if te, ok := engine.IsTransitionError(err); ok {
		code, msg := codeInvalidTransition, "invalid status transition"
		if te.Code == engine.CodeGuardFailed {
			code, msg = codeGuardFailed, "transition guard failed: "+te.Invariant
		}
		response.ErrorWithData(c, http.StatusConflict, code, msg, dto.TransitionErrorData{
			Code:      te.Code,
			From:      te.From,
			To:        te.To,
			Invariant: te.Invariant,
			Errors:    te.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, engine.ErrConflict):
		response.Conflict(c, codeConflict, "record was modified by another request, reload and retry")
	case errors.Is(err, engine.ErrNotFound):
		response.NotFound(c, codeNotFound, "record not found")
	case errors.Is(err, engine.ErrUnknownEntity):
		response.NotFound(c, codeUnknownEntity, "unknown record type")
	case errors.Is(err, engine.ErrSequenceExhausted):
		response.ServiceUnavailable(c, codeSequenceExhausted, "identifier sequence exhausted")
	case errors.Is(err, engine.ErrActorRequired):
		response.BadRequest(c, codeActorRequired, "acting user is required")
	case errors.Is(err, engine.ErrActorTooLong):
		response.BadRequest(c, codeActorRequired, err.Error())
	default:
		response.InternalError(c)
	}
}

// isBodyTooLarge 错误是否来自 BodyLimit
func isBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
