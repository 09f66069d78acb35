package bot

import (
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"poker-tracker/internal/config"
)

// WhitelistMiddleware drops updates from chats outside the configured whitelist.
// An empty whitelist allows every chat.
func WhitelistMiddleware(cfg *config.Config) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			chat := c.Chat()
			if chat == nil {
				return nil
			}

			if !cfg.IsChatAllowed(chat.ID) {
				log.Debug().
					Int64("chat_id", chat.ID).
					Msg("Ignoring command from non-whitelisted chat")
				return nil
			}

			return next(c)
		}
	}
}

// LoggingMiddleware logs every command with how long it took and whether it failed.
func LoggingMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			start := time.Now()
			err := next(c)

			event := log.Debug()
			if err != nil {
				event = log.Warn().Err(err)
			}
			if chat := c.Chat(); chat != nil {
				event = event.Int64("chat_id", chat.ID)
			}
			if sender := c.Sender(); sender != nil {
				event = event.Int64("user_id", sender.ID)
			}
			event.
				Str("text", c.Text()).
				Dur("took", time.Since(start)).
				Msg("Handled command")

			return err
		}
	}
}

// RecoveryMiddleware creates a middleware that recovers from panics.
func RecoveryMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Interface("panic", r).
						Msg("Recovered from panic in handler")
					err = c.Reply("❌ Internal error, try again later")
				}
			}()
			return next(c)
		}
	}
}
