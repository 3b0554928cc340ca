package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roach88/recq/internal/collection"
	"github.com/roach88/recq/internal/metrics"
	"github.com/roach88/recq/internal/schema"
	"github.com/roach88/recq/internal/store"
)

// ErrorResponse provides a consistent error response format
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
	Status int    `json:"status"`
	Field  string `json:"field,omitempty"`
}

// Error codes for failures that do not come from the query engine.
const (
	CodeNotFound      = "NOT_FOUND"
	CodeBadRequest    = "BAD_REQUEST"
	CodeInvalidRecord = "INVALID_RECORD"
	CodeInternal      = "INTERNAL_ERROR"
)

// RespondWithError sends a standardized error response and logs it.
func (s *Server) RespondWithError(c *gin.Context, resp ErrorResponse) {
	level := slog.LevelWarn
	if resp.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.logger.Log(c.Request.Context(), level, "request failed",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", resp.Status,
		"code", resp.Code,
		"error", resp.Error,
		"request_id", requestID(c),
	)
	c.AbortWithStatusJSON(resp.Status, resp)
}

// RespondWithBadRequest sends a 400 Bad Request error response
func (s *Server) RespondWithBadRequest(c *gin.Context, message string) {
	s.RespondWithError(c, ErrorResponse{Error: message, Code: CodeBadRequest, Status: http.StatusBadRequest})
}

// RespondWithNotFound sends a 404 Not Found error response
func (s *Server) RespondWithNotFound(c *gin.Context, message string) {
	s.RespondWithError(c, ErrorResponse{Error: message, Code: CodeNotFound, Status: http.StatusNotFound})
}

// RespondWithErr maps err onto a response. Internal errors are logged in
// full but reported without detail.
func (s *Server) RespondWithErr(c *gin.Context, err error) {
	resp := errorResponse(err)
	if resp.Status >= http.StatusInternalServerError {
		s.logger.Error("internal error", "error", err, "request_id", requestID(c))
	}
	s.RespondWithError(c, resp)
}

func errorResponse(err error) ErrorResponse {
	var (
		ce *collection.Error
		re *schema.RecordError
	)
	switch {
	case errors.As(err, &ce):
		return ErrorResponse{Error: ce.Message, Code: string(ce.Code), Status: http.StatusBadRequest, Field: ce.Field}
	case errors.As(err, &re):
		return ErrorResponse{Error: re.Error(), Code: CodeInvalidRecord, Status: http.StatusBadRequest, Field: re.Field}
	case errors.Is(err, store.ErrCollectionNotFound):
		return ErrorResponse{Error: err.Error(), Code: CodeNotFound, Status: http.StatusNotFound}
	default:
		return ErrorResponse{Error: "internal error", Code: CodeInternal, Status: http.StatusInternalServerError}
	}
}

// outcome classifies err for the query metrics.
func outcome(err error) string {
	switch errorResponse(err).Status {
	case http.StatusBadRequest:
		return metrics.OutcomeInvalid
	case http.StatusNotFound:
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeError
	}
}
