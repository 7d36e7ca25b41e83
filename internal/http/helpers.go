package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/storyshelf/internal/catalog"
	"github.com/mrlokans/storyshelf/internal/importers"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error codes carried in ErrorResponse.Code
const (
	CodeNotFound     = "not_found"
	CodeInvalid      = "invalid_request"
	CodeBookMismatch = "book_mismatch"
	CodeConflict     = "conflict"
	CodePartialWrite = "partial_write"
	CodeInternal     = "internal"
)

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: CodeInvalid})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	logrus.WithError(err).WithField("context", context).Error("Internal error")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: CodeInternal})
}

// respondCatalogError maps catalog errors to HTTP responses.
func respondCatalogError(c *gin.Context, err error, context string) {
	var partial *catalog.PartialWriteError
	switch {
	case errors.As(err, &partial):
		logrus.WithError(err).WithFields(logrus.Fields{
			"context": context,
			"op":      partial.Op,
			"step":    partial.Step,
			"id":      partial.ID,
		}).Error("Partial write")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "operation was only partially applied",
			Code:  CodePartialWrite,
			Details: gin.H{
				"op":   partial.Op,
				"step": partial.Step,
				"id":   partial.ID,
			},
		})
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: CodeNotFound})
	case errors.Is(err, catalog.ErrInvalidReorder),
		errors.Is(err, catalog.ErrInvalidInput),
		errors.Is(err, catalog.ErrInvalidPosition),
		errors.Is(err, catalog.ErrUnknownParent),
		errors.Is(err, catalog.ErrInvalidDocument),
		errors.Is(err, importers.ErrInvalidFixture):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeInvalid})
	case errors.Is(err, catalog.ErrBookMismatch):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: CodeBookMismatch})
	case errors.Is(err, catalog.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: CodeConflict})
	default:
		respondInternalError(c, err, context)
	}
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// respondAccepted sends a 202 Accepted response (for async operations).
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// bindJSON decodes the request body or responds with 400.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid request body",
			Code:    CodeInvalid,
			Details: err.Error(),
		})
		return false
	}
	return true
}

// parsePosition reads the optional position of an attach request.
func parsePosition(c *gin.Context, raw string) (catalog.Position, bool) {
	pos, err := catalog.ParsePosition(raw)
	if err != nil {
		respondCatalogError(c, err, "parse position")
		return 0, false
	}
	return pos, true
}
