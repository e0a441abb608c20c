package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes returned in the "code" field of error bodies
const (
	CodeNotFound        = "NOT_FOUND"
	CodeValidationError = "VALIDATION_ERROR"
	CodeInternalError   = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Status  int               `json:"status"`
	Details map[string]string `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details map[string]string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   message,
		Code:    code,
		Status:  status,
		Details: details,
	})
}

func respondNotFound(c *gin.Context) {
	respondError(c, http.StatusNotFound, CodeNotFound, "Target not found", nil)
}

func respondValidation(c *gin.Context, message string, details map[string]string) {
	respondError(c, http.StatusBadRequest, CodeValidationError, message, details)
}

func respondInternal(c *gin.Context) {
	respondError(c, http.StatusInternalServerError, CodeInternalError, "Internal server error", nil)
}
