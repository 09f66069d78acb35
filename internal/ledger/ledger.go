// Package ledger computes per-player statistics from game ledger entries.
// Everything here is a pure function of its arguments.
package ledger

import (
	"sort"

	"poker-tracker/internal/model"
)

// BuyInTotal returns the sum of a sequence of buy-ins. An empty sequence sums to 0.
func BuyInTotal(buyIns []int64) int64 {
	var total int64
	for _, b := range buyIns {
		total += b
	}
	return total
}

// Profit returns the net result of a single ledger entry: cash-out minus total buy-ins.
func Profit(gp model.GamePlayer) int64 {
	return gp.CashOut - BuyInTotal(gp.BuyIns)
}

// tally accumulates one player's entries.
type tally struct {
	buyIns     int64
	cashOut    int64
	biggestWin int64
	games      int
}

func (t *tally) add(gp model.GamePlayer) {
	profit := Profit(gp)
	if t.games == 0 || profit > t.biggestWin {
		t.biggestWin = profit
	}
	t.buyIns += BuyInTotal(gp.BuyIns)
	t.cashOut += gp.CashOut
	t.games++
}

// Aggregate produces one PlayerStats for every player, restricted to entries whose game
// date falls inside rng. Players without qualifying entries are reported with all zeros.
// Entries may arrive in any order; entries for unknown players are ignored.
// The result is sorted by name, then by id.
func Aggregate(players []model.Player, entries []model.LedgerEntry, rng model.DateRange) []model.PlayerStats {
	tallies := make(map[int64]*tally, len(players))
	for _, p := range players {
		tallies[p.ID] = &tally{}
	}

	for _, e := range entries {
		if !rng.Contains(e.GameDate) {
			continue
		}
		t, ok := tallies[e.PlayerID]
		if !ok {
			continue
		}
		t.add(e.GamePlayer)
	}

	stats := make([]model.PlayerStats, 0, len(players))
	for _, p := range players {
		t := tallies[p.ID]
		stats = append(stats, model.PlayerStats{
			ID:           p.ID,
			Name:         p.Name,
			TotalBuyIns:  t.buyIns,
			TotalCashOut: t.cashOut,
			NetProfit:    t.cashOut - t.buyIns,
			BiggestWin:   t.biggestWin,
		})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Name != stats[j].Name {
			return stats[i].Name < stats[j].Name
		}
		return stats[i].ID < stats[j].ID
	})

	return stats
}

// GameTotals returns the total buy-ins per game id across the given entries.
func GameTotals(entries []model.GamePlayer) map[int64]int64 {
	totals := make(map[int64]int64)
	for _, gp := range entries {
		totals[gp.GameID] += BuyInTotal(gp.BuyIns)
	}
	return totals
}
