package service

import (
	"errors"

	"poker-tracker/internal/repository"
)

// Errors surfaced to callers. Not-found and integrity errors come straight from the store.
var (
	ErrValidation         = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
	ErrInvalidToken       = errors.New("invalid token")
	ErrHostExists         = errors.New("host already provisioned")
	ErrWeakPassword       = errors.New("password too short")

	ErrPlayerNotFound   = repository.ErrPlayerNotFound
	ErrGameNotFound     = repository.ErrGameNotFound
	ErrPlayerHasHistory = repository.ErrPlayerHasHistory
	ErrUnknownPlayer    = repository.ErrUnknownPlayer
)
