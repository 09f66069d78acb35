// Package model defines the data models for the poker tracker.
package model

import (
	"fmt"
	"time"
)

// DateLayout is the ISO calendar date format used on the wire and in the database.
const DateLayout = "2006-01-02"

// Player is a person who takes part in home games.
type Player struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Game is one poker session. Date is a calendar date stored as UTC midnight.
type Game struct {
	ID        int64     `db:"id"`
	Date      time.Time `db:"game_date"`
	Notes     *string   `db:"notes"`
	CreatedAt time.Time `db:"created_at"`
}

// GamePlayer is a ledger entry: one player's buy-ins and cash-out for one game.
// BuyIns holds every buy-in transaction in the order it happened.
type GamePlayer struct {
	ID       int64   `db:"id"`
	GameID   int64   `db:"game_id"`
	PlayerID int64   `db:"player_id"`
	BuyIns   []int64 `db:"buy_ins"`
	CashOut  int64   `db:"cash_out"`
}

// LedgerEntry is a GamePlayer annotated with its game's date and the player's name.
type LedgerEntry struct {
	GamePlayer
	GameDate   time.Time `db:"game_date"`
	PlayerName string    `db:"player_name"`
}

// GameSummary is a game together with the sum of all buy-ins recorded for it.
type GameSummary struct {
	Game
	TotalBuyIns int64
}

// GameDetail is a game with its full ledger.
type GameDetail struct {
	GameSummary
	Entries []LedgerEntry
}

// PlayerStats is the aggregate result for one player over a date window.
type PlayerStats struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	TotalBuyIns  int64  `json:"totalBuyIns"`
	TotalCashOut int64  `json:"totalCashOut"`
	NetProfit    int64  `json:"netProfit"`
	BiggestWin   int64  `json:"biggestWin"`
}

// User is the host credential record.
type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// DateRange is an inclusive window of calendar dates. A nil bound is unbounded.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Contains reports whether the calendar date of t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	d := TruncateDate(t)
	if r.Start != nil && d.Before(TruncateDate(*r.Start)) {
		return false
	}
	if r.End != nil && d.After(TruncateDate(*r.End)) {
		return false
	}
	return true
}

// IsUnbounded reports whether neither bound is set.
func (r DateRange) IsUnbounded() bool {
	return r.Start == nil && r.End == nil
}

// TruncateDate drops the time of day, keeping the calendar date in UTC.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
