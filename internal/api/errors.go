package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"poker-tracker/internal/pkg/lock"
	"poker-tracker/internal/service"
)

const internalErrorMessage = "Internal server error"

type messageResponse struct {
	Message string `json:"message"`
}

// statusFor maps a service error to an HTTP status and a client-safe message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrUnknownPlayer):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid or expired token"
	case errors.Is(err, service.ErrPlayerHasHistory):
		return http.StatusForbidden, "Cannot delete a player who has played in games"
	case errors.Is(err, service.ErrPlayerNotFound):
		return http.StatusNotFound, "Player not found"
	case errors.Is(err, service.ErrGameNotFound):
		return http.StatusNotFound, "Game not found"
	case errors.Is(err, lock.ErrLockTimeout):
		return http.StatusConflict, "Game is being modified, try again"
	case errors.Is(err, service.ErrTooManyAttempts):
		return http.StatusTooManyRequests, "Too many failed login attempts, try again later"
	default:
		return http.StatusInternalServerError, internalErrorMessage
	}
}

// respondError writes err as a {"message"} body. Server errors are logged and never echoed.
func respondError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str(requestIDKey, c.GetString(requestIDKey)).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
	}
	c.AbortWithStatusJSON(status, messageResponse{Message: msg})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, messageResponse{Message: msg})
}
