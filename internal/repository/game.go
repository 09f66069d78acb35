package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"poker-tracker/internal/model"
)

// GameRepository handles games and their ledger entries.
type GameRepository struct {
	pool *pgxpool.Pool
}

// NewGameRepository creates a new GameRepository instance.
func NewGameRepository(pool *pgxpool.Pool) *GameRepository {
	return &GameRepository{pool: pool}
}

// List returns every game, newest first.
func (r *GameRepository) List(ctx context.Context) ([]model.Game, error) {
	const query = `
		SELECT id, game_date, notes, created_at
		FROM games
		ORDER BY game_date DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	games := []model.Game{}
	for rows.Next() {
		var g model.Game
		if err := rows.Scan(&g.ID, &g.Date, &g.Notes, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}

	return games, nil
}

// GetByID retrieves a game by id.
// Returns ErrGameNotFound if the game does not exist.
func (r *GameRepository) GetByID(ctx context.Context, id int64) (*model.Game, error) {
	const query = `SELECT id, game_date, notes, created_at FROM games WHERE id = $1`

	var g model.Game
	err := r.pool.QueryRow(ctx, query, id).Scan(&g.ID, &g.Date, &g.Notes, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return &g, nil
}

// Create inserts a game and its ledger entries in one transaction and returns the new id.
func (r *GameRepository) Create(ctx context.Context, date time.Time, notes *string, entries []model.GamePlayer) (int64, error) {
	const query = `
		INSERT INTO games (game_date, notes, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id
	`

	var gameID int64
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, query, date, notes).Scan(&gameID); err != nil {
			return fmt.Errorf("failed to create game: %w", err)
		}
		return insertEntries(ctx, tx, gameID, entries)
	})
	if err != nil {
		return 0, err
	}

	return gameID, nil
}

// Replace updates a game's date and notes and replaces its whole ledger: existing entries
// are deleted and the given ones inserted, all in one transaction holding the game row lock.
func (r *GameRepository) Replace(ctx context.Context, id int64, date time.Time, notes *string, entries []model.GamePlayer) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var locked int64
		err := tx.QueryRow(ctx, `SELECT id FROM games WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrGameNotFound
			}
			return fmt.Errorf("failed to lock game: %w", err)
		}

		if _, err := tx.Exec(ctx, `UPDATE games SET game_date = $2, notes = $3 WHERE id = $1`, id, date, notes); err != nil {
			return fmt.Errorf("failed to update game: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM game_players WHERE game_id = $1`, id); err != nil {
			return fmt.Errorf("failed to clear ledger: %w", err)
		}

		return insertEntries(ctx, tx, id, entries)
	})
}

// Delete removes a game; its ledger entries go with it through ON DELETE CASCADE.
func (r *GameRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrGameNotFound
	}

	return nil
}

// EntriesForGame returns the ledger of one game with player names, ordered by player name.
func (r *GameRepository) EntriesForGame(ctx context.Context, gameID int64) ([]model.LedgerEntry, error) {
	const query = `
		SELECT gp.id, gp.game_id, gp.player_id, gp.buy_ins, gp.cash_out, g.game_date, p.name
		FROM game_players gp
		JOIN games g ON gp.game_id = g.id
		JOIN players p ON gp.player_id = p.id
		WHERE gp.game_id = $1
		ORDER BY p.name ASC, gp.id ASC
	`

	rows, err := r.pool.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game entries: %w", err)
	}
	return scanLedgerEntries(rows)
}

// ListEntries returns every ledger entry whose game date lies in rng (inclusive).
func (r *GameRepository) ListEntries(ctx context.Context, rng model.DateRange) ([]model.LedgerEntry, error) {
	const query = `
		SELECT gp.id, gp.game_id, gp.player_id, gp.buy_ins, gp.cash_out, g.game_date, p.name
		FROM game_players gp
		JOIN games g ON gp.game_id = g.id
		JOIN players p ON gp.player_id = p.id
		WHERE ($1::date IS NULL OR g.game_date >= $1::date)
		  AND ($2::date IS NULL OR g.game_date <= $2::date)
	`

	rows, err := r.pool.Query(ctx, query, rng.Start, rng.End)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return scanLedgerEntries(rows)
}

// ListGamePlayers returns the raw ledger rows of every game.
func (r *GameRepository) ListGamePlayers(ctx context.Context) ([]model.GamePlayer, error) {
	const query = `SELECT id, game_id, player_id, buy_ins, cash_out FROM game_players`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list game players: %w", err)
	}
	defer rows.Close()

	entries := []model.GamePlayer{}
	for rows.Next() {
		var gp model.GamePlayer
		if err := rows.Scan(&gp.ID, &gp.GameID, &gp.PlayerID, &gp.BuyIns, &gp.CashOut); err != nil {
			return nil, fmt.Errorf("failed to scan game player: %w", err)
		}
		entries = append(entries, gp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating game players: %w", err)
	}

	return entries, nil
}

func scanLedgerEntries(rows pgx.Rows) ([]model.LedgerEntry, error) {
	defer rows.Close()

	entries := []model.LedgerEntry{}
	for rows.Next() {
		var e model.LedgerEntry
		err := rows.Scan(
			&e.ID,
			&e.GameID,
			&e.PlayerID,
			&e.BuyIns,
			&e.CashOut,
			&e.GameDate,
			&e.PlayerName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entries: %w", err)
	}

	return entries, nil
}

func insertEntries(ctx context.Context, tx pgx.Tx, gameID int64, entries []model.GamePlayer) error {
	if len(entries) == 0 {
		return nil
	}

	const query = `
		INSERT INTO game_players (game_id, player_id, buy_ins, cash_out)
		VALUES ($1, $2, $3, $4)
	`

	batch := &pgx.Batch{}
	for _, e := range entries {
		buyIns := e.BuyIns
		if buyIns == nil {
			buyIns = []int64{}
		}
		batch.Queue(query, gameID, e.PlayerID, buyIns, e.CashOut)
	}

	br := tx.SendBatch(ctx, batch)
	for range entries {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			if pgErrorCode(err) == pgForeignKeyViolation {
				return ErrUnknownPlayer
			}
			return fmt.Errorf("failed to insert ledger entry: %w", err)
		}
	}

	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert ledger entries: %w", err)
	}

	return nil
}
