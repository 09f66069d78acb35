// Package service provides the ledger tracker's use cases.
package service

import (
	"context"
	"time"

	"poker-tracker/internal/model"
)

// PlayerStore persists players.
type PlayerStore interface {
	List(ctx context.Context) ([]model.Player, error)
	GetByID(ctx context.Context, id int64) (*model.Player, error)
	Create(ctx context.Context, name string) (*model.Player, error)
	UpdateName(ctx context.Context, id int64, name string) (*model.Player, error)
	Delete(ctx context.Context, id int64) error
	HasLedgerEntries(ctx context.Context, id int64) (bool, error)
}

// GameStore persists games and their ledger entries.
type GameStore interface {
	List(ctx context.Context) ([]model.Game, error)
	GetByID(ctx context.Context, id int64) (*model.Game, error)
	Create(ctx context.Context, date time.Time, notes *string, entries []model.GamePlayer) (int64, error)
	Replace(ctx context.Context, id int64, date time.Time, notes *string, entries []model.GamePlayer) error
	Delete(ctx context.Context, id int64) error
	EntriesForGame(ctx context.Context, gameID int64) ([]model.LedgerEntry, error)
	ListEntries(ctx context.Context, rng model.DateRange) ([]model.LedgerEntry, error)
	ListGamePlayers(ctx context.Context) ([]model.GamePlayer, error)
}

// CredentialStore holds host credentials.
type CredentialStore interface {
	Create(ctx context.Context, username, passwordHash string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Any(ctx context.Context) (bool, error)
}

// LoginThrottle limits failed login attempts per key.
type LoginThrottle interface {
	Allow(ctx context.Context, key string) (bool, error)
	Fail(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}
