// Package repository provides data access layer implementations.
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Common errors for repository operations.
var (
	ErrPlayerNotFound   = errors.New("player not found")
	ErrGameNotFound     = errors.New("game not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrPlayerHasHistory = errors.New("player has ledger entries")
	ErrUnknownPlayer    = errors.New("ledger entry references an unknown player")
)

// PostgreSQL error codes the repositories translate.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
