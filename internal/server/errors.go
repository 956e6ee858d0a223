package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bkarpinos/shorty/internal/link"
	"github.com/bkarpinos/shorty/internal/session"
)

// errorCode maps a domain error to its HTTP status and machine readable code.
// Order matters: exhaustion is joined with the last duplicate.
func errorCode(err error) (int, string) {
	switch {
	case errors.Is(err, link.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, link.ErrGenerationExhausted):
		return http.StatusServiceUnavailable, "generation_exhausted"
	case errors.Is(err, link.ErrDuplicateShortcode):
		return http.StatusConflict, "duplicate_shortcode"
	case errors.Is(err, link.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, link.ErrExpired):
		return http.StatusGone, "expired"
	case errors.Is(err, session.ErrUnregistered):
		return http.StatusUnauthorized, "unregistered"
	case errors.Is(err, session.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid_token"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *Server) abortWithError(c *gin.Context, err error) {
	status, code := errorCode(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		message = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": code, "message": message})
}

func (s *Server) internalError(c *gin.Context, err error) {
	s.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.AbortWithStatus(http.StatusInternalServerError)
}
