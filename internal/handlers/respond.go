package handlers

import (
	"errors"
	"io"
	"net/http"

	"filesmanager/backend/internal/apperrors"
	"filesmanager/backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// respondError renders err as {"error": message}. Errors without a
// client-facing message are logged and reported as 500.
func respondError(c *gin.Context, err error) {
	status, msg := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": msg})
}

// bindJSON decodes the request body into dst. An empty body leaves dst zero so
// validation reports the first missing field; a malformed or mistyped body is
// rejected.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperrors.InvalidArgument("body", "Invalid payload")
	}
	return nil
}
