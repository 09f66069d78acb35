// Package bot provides the read-only Telegram bot.
package bot

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"poker-tracker/internal/config"
	"poker-tracker/internal/handler"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot           *tele.Bot
	cfg           *config.Config
	ledgerHandler *handler.LedgerHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config *config.Config
	Stats  handler.StatsReader
	Games  handler.GameReader
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Telegram.Token == "" {
		return nil, fmt.Errorf("telegram token is required")
	}

	pref := tele.Settings{
		Token:  deps.Config.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			log.Error().Err(err).Msg("Telegram handler error")
		},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:           teleBot,
		cfg:           deps.Config,
		ledgerHandler: handler.NewLedgerHandler(deps.Stats, deps.Games),
	}

	b.registerMiddleware()
	b.registerHandlers()

	return b, nil
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(WhitelistMiddleware(b.cfg))
	b.bot.Use(LoggingMiddleware())
}

// registerHandlers registers all command handlers.
func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", b.ledgerHandler.HandleHelp)
	b.bot.Handle("/help", b.ledgerHandler.HandleHelp)
	b.bot.Handle("/stats", b.ledgerHandler.HandleStats)
	b.bot.Handle("/games", b.ledgerHandler.HandleGames)
	b.bot.Handle("/game", b.ledgerHandler.HandleGame)
}

// Start starts the bot polling. It blocks until Stop is called.
func (b *Bot) Start() {
	log.Info().Str("username", b.bot.Me.Username).Msg("Starting Telegram bot")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping Telegram bot")
	b.bot.Stop()
}
