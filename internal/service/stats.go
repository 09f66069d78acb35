package service

import (
	"context"
	"fmt"

	"poker-tracker/internal/ledger"
	"poker-tracker/internal/model"
)

// StatsService computes per-player statistics.
type StatsService struct {
	players PlayerStore
	games   GameStore
}

// NewStatsService creates a new StatsService instance.
func NewStatsService(players PlayerStore, games GameStore) *StatsService {
	return &StatsService{players: players, games: games}
}

// PlayerStats returns the statistics of every player over rng, sorted by name.
// Each call reads a fresh snapshot; nothing is cached between calls. An inverted
// range matches no games, so every player is reported with zero statistics.
func (s *StatsService) PlayerStats(ctx context.Context, rng model.DateRange) ([]model.PlayerStats, error) {
	players, err := s.players.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}

	entries, err := s.games.ListEntries(ctx, rng)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	return ledger.Aggregate(players, entries, rng), nil
}
