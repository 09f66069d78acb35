// Package handler provides Telegram bot command handlers.
package handler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"poker-tracker/internal/ledger"
	"poker-tracker/internal/model"
	"poker-tracker/internal/repository"
)

const (
	commandTimeout = 10 * time.Second
	recentGames    = 10
)

// StatsReader computes player statistics.
type StatsReader interface {
	PlayerStats(ctx context.Context, rng model.DateRange) ([]model.PlayerStats, error)
}

// GameReader reads games and their ledgers.
type GameReader interface {
	List(ctx context.Context) ([]model.GameSummary, error)
	Get(ctx context.Context, id int64) (*model.GameDetail, error)
}

// LedgerHandler answers read-only ledger queries.
type LedgerHandler struct {
	stats StatsReader
	games GameReader
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(stats StatsReader, games GameReader) *LedgerHandler {
	return &LedgerHandler{stats: stats, games: games}
}

// HandleHelp handles /start and /help.
func (h *LedgerHandler) HandleHelp(c tele.Context) error {
	return c.Send(HelpText)
}

// HelpText lists the bot's commands.
const HelpText = "♠️ Poker tracker\n" +
	"/stats [start] [end] - leaderboard, dates as YYYY-MM-DD\n" +
	"/games - the last 10 games\n" +
	"/game <id> - ledger of one game"

// HandleStats handles /stats [start] [end].
func (h *LedgerHandler) HandleStats(c tele.Context) error {
	rng, err := ParseStatsArgs(c.Args())
	if err != nil {
		return c.Reply("❌ " + err.Error() + "\nUsage: /stats [YYYY-MM-DD] [YYYY-MM-DD]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	stats, err := h.stats.PlayerStats(ctx, rng)
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute stats for bot")
		return c.Reply("❌ Could not load stats, try again later")
	}

	return c.Send(FormatLeaderboard(stats, rng))
}

// HandleGames handles /games.
func (h *LedgerHandler) HandleGames(c tele.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	games, err := h.games.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list games for bot")
		return c.Reply("❌ Could not load games, try again later")
	}

	return c.Send(FormatGames(games, recentGames))
}

// HandleGame handles /game <id>.
func (h *LedgerHandler) HandleGame(c tele.Context) error {
	args := c.Args()
	if len(args) != 1 {
		return c.Reply("Usage: /game <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return c.Reply("❌ Game id must be a positive number")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	detail, err := h.games.Get(ctx, id)
	if errors.Is(err, repository.ErrGameNotFound) {
		return c.Reply(fmt.Sprintf("❌ Game %d not found", id))
	}
	if err != nil {
		log.Error().Err(err).Int64("game_id", id).Msg("Failed to load game for bot")
		return c.Reply("❌ Could not load game, try again later")
	}

	return c.Send(FormatGame(detail))
}

// ParseStatsArgs reads an optional start and end date.
func ParseStatsArgs(args []string) (model.DateRange, error) {
	var rng model.DateRange
	if len(args) > 2 {
		return rng, fmt.Errorf("too many arguments")
	}

	if len(args) >= 1 {
		start, err := model.ParseDate(args[0])
		if err != nil {
			return rng, err
		}
		rng.Start = &start
	}
	if len(args) == 2 {
		end, err := model.ParseDate(args[1])
		if err != nil {
			return rng, err
		}
		rng.End = &end
	}
	return rng, nil
}

func describeRange(rng model.DateRange) string {
	switch {
	case rng.IsUnbounded():
		return "all time"
	case rng.End == nil:
		return "since " + model.FormatDate(*rng.Start)
	case rng.Start == nil:
		return "until " + model.FormatDate(*rng.End)
	default:
		return model.FormatDate(*rng.Start) + " to " + model.FormatDate(*rng.End)
	}
}

func signed(n int64) string {
	if n > 0 {
		return "+" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

// FormatLeaderboard ranks players by net profit; ties keep name order.
// Players who did not play in the window are left out of the ranking.
func FormatLeaderboard(stats []model.PlayerStats, rng model.DateRange) string {
	ranked := make([]model.PlayerStats, 0, len(stats))
	for _, s := range stats {
		if s.TotalBuyIns != 0 || s.TotalCashOut != 0 {
			ranked = append(ranked, s)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].NetProfit > ranked[j].NetProfit
	})

	var sb strings.Builder
	sb.WriteString("📊 Leaderboard (" + describeRange(rng) + ")\n")
	sb.WriteString("━━━━━━━━━━━━━━━\n")

	if len(ranked) == 0 {
		sb.WriteString("No games in this period\n")
		return sb.String()
	}

	medals := []string{"🥇", "🥈", "🥉"}
	for i, s := range ranked {
		rank := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			rank = medals[i]
		}
		fmt.Fprintf(&sb, "%s %s: %s (in %d, out %d, best %s)\n",
			rank, s.Name, signed(s.NetProfit), s.TotalBuyIns, s.TotalCashOut, signed(s.BiggestWin))
	}
	return sb.String()
}

// FormatGames lists at most limit games as given, newest first.
func FormatGames(games []model.GameSummary, limit int) string {
	if len(games) == 0 {
		return "No games recorded yet"
	}
	if len(games) > limit {
		games = games[:limit]
	}

	var sb strings.Builder
	sb.WriteString("🃏 Recent games\n")
	for _, g := range games {
		fmt.Fprintf(&sb, "#%d %s: buy-ins %d", g.ID, model.FormatDate(g.Date), g.TotalBuyIns)
		if g.Notes != nil && *g.Notes != "" {
			sb.WriteString(" (" + *g.Notes + ")")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatGame renders one game's ledger with each player's net result.
func FormatGame(d *model.GameDetail) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🃏 Game #%d, %s\n", d.ID, model.FormatDate(d.Date))
	if d.Notes != nil && *d.Notes != "" {
		sb.WriteString(*d.Notes + "\n")
	}
	sb.WriteString("━━━━━━━━━━━━━━━\n")

	if len(d.Entries) == 0 {
		sb.WriteString("No players recorded\n")
	}
	for _, e := range d.Entries {
		fmt.Fprintf(&sb, "%s: in %d, out %d, net %s\n",
			e.PlayerName, ledger.BuyInTotal(e.BuyIns), e.CashOut, signed(ledger.Profit(e.GamePlayer)))
	}

	fmt.Fprintf(&sb, "Total buy-ins: %d", d.TotalBuyIns)
	return sb.String()
}
