package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"poker-tracker/internal/model"
)

// maxNameLength matches the players.name column.
const maxNameLength = 255

// PlayerService manages players.
type PlayerService struct {
	players PlayerStore
}

// NewPlayerService creates a new PlayerService instance.
func NewPlayerService(players PlayerStore) *PlayerService {
	return &PlayerService{players: players}
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrValidation)
	}
	if len([]rune(name)) > maxNameLength {
		return "", fmt.Errorf("%w: name is longer than %d characters", ErrValidation, maxNameLength)
	}
	return name, nil
}

// List returns every player sorted by name.
func (s *PlayerService) List(ctx context.Context) ([]model.Player, error) {
	return s.players.List(ctx)
}

// Get returns one player.
func (s *PlayerService) Get(ctx context.Context, id int64) (*model.Player, error) {
	return s.players.GetByID(ctx, id)
}

// Create adds a player.
func (s *PlayerService) Create(ctx context.Context, name string) (*model.Player, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	p, err := s.players.Create(ctx, name)
	if err != nil {
		return nil, err
	}

	log.Info().Int64("player_id", p.ID).Str("name", p.Name).Msg("Player created")
	return p, nil
}

// Rename changes a player's name.
func (s *PlayerService) Rename(ctx context.Context, id int64, name string) (*model.Player, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	return s.players.UpdateName(ctx, id, name)
}

// Delete removes a player that has no ledger entries.
// Returns ErrPlayerHasHistory, leaving every record untouched, when any game references the player.
func (s *PlayerService) Delete(ctx context.Context, id int64) error {
	hasHistory, err := s.players.HasLedgerEntries(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check player history: %w", err)
	}
	if hasHistory {
		return ErrPlayerHasHistory
	}

	if err := s.players.Delete(ctx, id); err != nil {
		return err
	}

	log.Info().Int64("player_id", id).Msg("Player deleted")
	return nil
}
