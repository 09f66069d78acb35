package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"poker-tracker/internal/model"
)

// PlayerRepository handles player persistence.
type PlayerRepository struct {
	pool *pgxpool.Pool
}

// NewPlayerRepository creates a new PlayerRepository instance.
func NewPlayerRepository(pool *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{pool: pool}
}

// List returns every player ordered by name.
func (r *PlayerRepository) List(ctx context.Context) ([]model.Player, error) {
	const query = `
		SELECT id, name, created_at
		FROM players
		ORDER BY name ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	players := []model.Player{}
	for rows.Next() {
		var p model.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating players: %w", err)
	}

	return players, nil
}

// GetByID retrieves a player by id.
// Returns ErrPlayerNotFound if the player does not exist.
func (r *PlayerRepository) GetByID(ctx context.Context, id int64) (*model.Player, error) {
	const query = `SELECT id, name, created_at FROM players WHERE id = $1`

	var p model.Player
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return &p, nil
}

// Create inserts a new player.
func (r *PlayerRepository) Create(ctx context.Context, name string) (*model.Player, error) {
	const query = `
		INSERT INTO players (name, created_at)
		VALUES ($1, NOW())
		RETURNING id, name, created_at
	`

	var p model.Player
	if err := r.pool.QueryRow(ctx, query, name).Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return &p, nil
}

// UpdateName renames a player.
// Returns ErrPlayerNotFound if the player does not exist.
func (r *PlayerRepository) UpdateName(ctx context.Context, id int64, name string) (*model.Player, error) {
	const query = `
		UPDATE players
		SET name = $2
		WHERE id = $1
		RETURNING id, name, created_at
	`

	var p model.Player
	err := r.pool.QueryRow(ctx, query, id, name).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	return &p, nil
}

// Delete removes a player. The foreign key on game_players is RESTRICT, so a player
// that still has ledger entries yields ErrPlayerHasHistory.
func (r *PlayerRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM players WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return ErrPlayerHasHistory
		}
		return fmt.Errorf("failed to delete player: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}

	return nil
}

// HasLedgerEntries reports whether any game references the player.
func (r *PlayerRepository) HasLedgerEntries(ctx context.Context, id int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM game_players WHERE player_id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check ledger entries: %w", err)
	}

	return exists, nil
}
