package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"poker-tracker/internal/ledger"
	"poker-tracker/internal/model"
	"poker-tracker/internal/pkg/lock"
)

// DefaultLockTimeout bounds how long a write waits for another write to the same game.
const DefaultLockTimeout = 5 * time.Second

// Ledger input limits. Together they keep every per-game and per-player sum far from
// the int64 range. The request binding tags in the api package mirror them.
const (
	MaxAmount         int64 = 1_000_000_000_000
	MaxBuyInsPerEntry       = 50
	MaxPlayersPerGame       = 100
)

// GameInput is a validated-on-use description of a game and its full ledger.
type GameInput struct {
	Date    time.Time
	Notes   *string
	Entries []model.GamePlayer
}

// Validate checks the input before anything is persisted.
func (in GameInput) Validate() error {
	if in.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	if len(in.Entries) > MaxPlayersPerGame {
		return fmt.Errorf("%w: at most %d players per game", ErrValidation, MaxPlayersPerGame)
	}
	for i, e := range in.Entries {
		if e.PlayerID <= 0 {
			return fmt.Errorf("%w: players[%d]: playerId must be positive", ErrValidation, i)
		}
		if e.CashOut < 0 || e.CashOut > MaxAmount {
			return fmt.Errorf("%w: players[%d]: cashOut must be between 0 and %d", ErrValidation, i, MaxAmount)
		}
		if len(e.BuyIns) > MaxBuyInsPerEntry {
			return fmt.Errorf("%w: players[%d]: at most %d buy-ins", ErrValidation, i, MaxBuyInsPerEntry)
		}
		for j, b := range e.BuyIns {
			if b < 0 || b > MaxAmount {
				return fmt.Errorf("%w: players[%d].buyIns[%d] must be between 0 and %d", ErrValidation, i, j, MaxAmount)
			}
		}
	}
	return nil
}

// normalized returns a copy with the date truncated to a calendar day, blank notes
// dropped, and nil buy-in lists replaced with empty ones.
func (in GameInput) normalized() GameInput {
	out := GameInput{Date: model.TruncateDate(in.Date)}

	if in.Notes != nil {
		if n := strings.TrimSpace(*in.Notes); n != "" {
			out.Notes = &n
		}
	}

	out.Entries = make([]model.GamePlayer, len(in.Entries))
	for i, e := range in.Entries {
		buyIns := make([]int64, len(e.BuyIns))
		copy(buyIns, e.BuyIns)
		out.Entries[i] = model.GamePlayer{PlayerID: e.PlayerID, BuyIns: buyIns, CashOut: e.CashOut}
	}
	return out
}

// GameService manages games and their ledgers.
type GameService struct {
	games       GameStore
	locks       *lock.KeyedLock
	lockTimeout time.Duration
}

// NewGameService creates a new GameService instance.
// A non-positive lockTimeout falls back to DefaultLockTimeout.
func NewGameService(games GameStore, locks *lock.KeyedLock, lockTimeout time.Duration) *GameService {
	if locks == nil {
		locks = lock.NewKeyedLock()
	}
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &GameService{games: games, locks: locks, lockTimeout: lockTimeout}
}

// List returns every game with its total buy-ins, newest first.
func (s *GameService) List(ctx context.Context) ([]model.GameSummary, error) {
	games, err := s.games.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	rows, err := s.games.ListGamePlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger rows: %w", err)
	}
	totals := ledger.GameTotals(rows)

	summaries := make([]model.GameSummary, 0, len(games))
	for _, g := range games {
		summaries = append(summaries, model.GameSummary{Game: g, TotalBuyIns: totals[g.ID]})
	}
	return summaries, nil
}

// Get returns one game with its ledger entries.
func (s *GameService) Get(ctx context.Context, id int64) (*model.GameDetail, error) {
	game, err := s.games.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	entries, err := s.games.EntriesForGame(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load game %d ledger: %w", id, err)
	}

	var total int64
	for _, e := range entries {
		total += ledger.BuyInTotal(e.BuyIns)
	}

	return &model.GameDetail{
		GameSummary: model.GameSummary{Game: *game, TotalBuyIns: total},
		Entries:     entries,
	}, nil
}

// Create records a new game and returns its id.
func (s *GameService) Create(ctx context.Context, in GameInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	in = in.normalized()

	id, err := s.games.Create(ctx, in.Date, in.Notes, in.Entries)
	if err != nil {
		return 0, err
	}

	log.Info().
		Int64("game_id", id).
		Str("date", model.FormatDate(in.Date)).
		Int("entries", len(in.Entries)).
		Msg("Game created")
	return id, nil
}

// Update replaces a game's fields and its whole ledger.
func (s *GameService) Update(ctx context.Context, id int64, in GameInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	in = in.normalized()

	err := s.locks.WithLock(ctx, id, s.lockTimeout, func() error {
		return s.games.Replace(ctx, id, in.Date, in.Notes, in.Entries)
	})
	if err != nil {
		return err
	}

	log.Info().Int64("game_id", id).Int("entries", len(in.Entries)).Msg("Game updated")
	return nil
}

// Delete removes a game and its ledger.
func (s *GameService) Delete(ctx context.Context, id int64) error {
	err := s.locks.WithLock(ctx, id, s.lockTimeout, func() error {
		return s.games.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	log.Info().Int64("game_id", id).Msg("Game deleted")
	return nil
}
