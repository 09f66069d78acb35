// Package api exposes the ledger tracker over HTTP using gin.
package api

import (
	"context"

	"poker-tracker/internal/model"
	"poker-tracker/internal/service"
)

// StatsReader computes player statistics.
type StatsReader interface {
	PlayerStats(ctx context.Context, rng model.DateRange) ([]model.PlayerStats, error)
}

// GameManager manages games and their ledgers.
type GameManager interface {
	List(ctx context.Context) ([]model.GameSummary, error)
	Get(ctx context.Context, id int64) (*model.GameDetail, error)
	Create(ctx context.Context, in service.GameInput) (int64, error)
	Update(ctx context.Context, id int64, in service.GameInput) error
	Delete(ctx context.Context, id int64) error
}

// PlayerManager manages players.
type PlayerManager interface {
	List(ctx context.Context) ([]model.Player, error)
	Get(ctx context.Context, id int64) (*model.Player, error)
	Create(ctx context.Context, name string) (*model.Player, error)
	Rename(ctx context.Context, id int64, name string) (*model.Player, error)
	Delete(ctx context.Context, id int64) error
}

// Authenticator logs the host in and checks bearer tokens.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
	ValidateToken(token string) (string, error)
}

// Deps holds everything the router needs.
type Deps struct {
	Stats   StatsReader
	Games   GameManager
	Players PlayerManager
	Auth    Authenticator

	// Health reports whether the backing store is reachable. Nil means always healthy.
	Health func(ctx context.Context) error

	// CORSOrigins lists allowed browser origins; "*" allows any.
	CORSOrigins []string
}
