package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
	"github.com/tirasundara/bpo-reconciliation/internal/logger"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrStructuralInput), errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrStateConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// errorMessage hides internal errors from callers
func errorMessage(err error) string {
	if statusFor(err) == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log := logger.FromContext(c.Request.Context())
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": errorMessage(err)})
}

func abortWithError(c *gin.Context, err error) {
	writeError(c, err)
	c.Abort()
}
