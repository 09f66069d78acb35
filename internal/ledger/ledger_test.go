package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poker-tracker/internal/model"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func entry(gameID, playerID int64, day time.Time, cashOut int64, buyIns ...int64) model.LedgerEntry {
	return model.LedgerEntry{
		GamePlayer: model.GamePlayer{
			GameID:   gameID,
			PlayerID: playerID,
			BuyIns:   buyIns,
			CashOut:  cashOut,
		},
		GameDate: day,
	}
}

func statsFor(t *testing.T, stats []model.PlayerStats, id int64) model.PlayerStats {
	t.Helper()
	for _, s := range stats {
		if s.ID == id {
			return s
		}
	}
	t.Fatalf("no stats for player %d", id)
	return model.PlayerStats{}
}

func TestBuyInTotal(t *testing.T) {
	tests := []struct {
		name   string
		buyIns []int64
		want   int64
	}{
		{"nil", nil, 0},
		{"empty", []int64{}, 0},
		{"single", []int64{20}, 20},
		{"rebuys", []int64{10, 10, 25}, 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuyInTotal(tt.buyIns))
		})
	}
}

func TestProfit(t *testing.T) {
	assert.Equal(t, int64(10), Profit(model.GamePlayer{BuyIns: []int64{10, 10}, CashOut: 30}))
	assert.Equal(t, int64(-20), Profit(model.GamePlayer{BuyIns: []int64{20}, CashOut: 0}))
	assert.Equal(t, int64(15), Profit(model.GamePlayer{CashOut: 15}))
}

func TestAggregate_TwoGameScenario(t *testing.T) {
	alice := model.Player{ID: 1, Name: "Alice"}
	bob := model.Player{ID: 2, Name: "Bob"}

	game1 := date(t, "2024-01-05")
	game2 := date(t, "2024-02-05")
	entries := []model.LedgerEntry{
		entry(2, alice.ID, game2, 0, 20),
		entry(1, alice.ID, game1, 30, 10, 10),
	}

	stats := Aggregate([]model.Player{bob, alice}, entries, model.DateRange{})
	require.Len(t, stats, 2)

	a := statsFor(t, stats, alice.ID)
	assert.Equal(t, int64(40), a.TotalBuyIns)
	assert.Equal(t, int64(30), a.TotalCashOut)
	assert.Equal(t, int64(-10), a.NetProfit)
	assert.Equal(t, int64(10), a.BiggestWin)

	b := statsFor(t, stats, bob.ID)
	assert.Equal(t, model.PlayerStats{ID: bob.ID, Name: "Bob"}, b)

	// Filter to a window containing only the first game.
	end := date(t, "2024-01-31")
	filtered := Aggregate([]model.Player{bob, alice}, entries, model.DateRange{End: &end})
	a = statsFor(t, filtered, alice.ID)
	assert.Equal(t, int64(20), a.TotalBuyIns)
	assert.Equal(t, int64(30), a.TotalCashOut)
	assert.Equal(t, int64(10), a.NetProfit)
	assert.Equal(t, int64(10), a.BiggestWin)
}

func TestAggregate_BiggestWin(t *testing.T) {
	day := date(t, "2024-03-01")

	tests := []struct {
		name    string
		entries []model.LedgerEntry
		want    int64
	}{
		{"no games is zero", nil, 0},
		{"break even is zero", []model.LedgerEntry{entry(1, 1, day, 50, 50)}, 0},
		{"single loss is negative", []model.LedgerEntry{entry(1, 1, day, 5, 50)}, -45},
		{"least negative loss", []model.LedgerEntry{
			entry(1, 1, day, 5, 50),
			entry(2, 1, day, 40, 50),
		}, -10},
		{"uses per-game profit not cash-out", []model.LedgerEntry{
			entry(1, 1, day, 100, 90),
			entry(2, 1, day, 60, 20),
		}, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := Aggregate([]model.Player{{ID: 1, Name: "p"}}, tt.entries, model.DateRange{})
			require.Len(t, stats, 1)
			assert.Equal(t, tt.want, stats[0].BiggestWin)
		})
	}
}

func TestAggregate_PlayerOutsideWindowIsZero(t *testing.T) {
	players := []model.Player{{ID: 7, Name: "Zed"}}
	entries := []model.LedgerEntry{entry(1, 7, date(t, "2023-06-01"), 5, 100)}

	start := date(t, "2024-01-01")
	stats := Aggregate(players, entries, model.DateRange{Start: &start})

	require.Len(t, stats, 1)
	assert.Equal(t, model.PlayerStats{ID: 7, Name: "Zed"}, stats[0])
}

func TestAggregate_InclusiveBounds(t *testing.T) {
	players := []model.Player{{ID: 1, Name: "p"}}
	first := date(t, "2024-01-01")
	last := date(t, "2024-01-31")
	entries := []model.LedgerEntry{
		entry(1, 1, first, 10, 5),
		entry(2, 1, last, 20, 5),
		entry(3, 1, date(t, "2024-02-01"), 1000, 5),
	}

	stats := Aggregate(players, entries, model.DateRange{Start: &first, End: &last})
	require.Len(t, stats, 1)
	assert.Equal(t, int64(10), stats[0].TotalBuyIns)
	assert.Equal(t, int64(30), stats[0].TotalCashOut)
}

func TestAggregate_SortedByName(t *testing.T) {
	players := []model.Player{
		{ID: 3, Name: "carol"},
		{ID: 1, Name: "Bob"},
		{ID: 4, Name: "alice"},
		{ID: 2, Name: "Bob"},
	}

	stats := Aggregate(players, nil, model.DateRange{})

	var ids []int64
	for _, s := range stats {
		ids = append(ids, s.ID)
	}
	// Byte-wise comparison puts upper case first.
	assert.Equal(t, []int64{1, 2, 4, 3}, ids)
}

func TestAggregate_IgnoresUnknownPlayers(t *testing.T) {
	players := []model.Player{{ID: 1, Name: "p"}}
	entries := []model.LedgerEntry{entry(1, 99, date(t, "2024-01-01"), 10, 5)}

	stats := Aggregate(players, entries, model.DateRange{})
	require.Len(t, stats, 1)
	assert.Equal(t, int64(0), stats[0].TotalBuyIns)
}

func TestAggregate_EmptyPlayers(t *testing.T) {
	stats := Aggregate(nil, []model.LedgerEntry{entry(1, 1, date(t, "2024-01-01"), 1, 1)}, model.DateRange{})
	assert.NotNil(t, stats)
	assert.Empty(t, stats)
}

func TestGameTotals(t *testing.T) {
	entries := []model.GamePlayer{
		{GameID: 1, BuyIns: []int64{10, 10}},
		{GameID: 1, BuyIns: []int64{20}},
		{GameID: 2, BuyIns: nil},
		{GameID: 3, BuyIns: []int64{5}},
	}

	totals := GameTotals(entries)
	assert.Equal(t, int64(40), totals[1])
	assert.Equal(t, int64(0), totals[2])
	assert.Equal(t, int64(5), totals[3])
	assert.Len(t, totals, 3)
}
