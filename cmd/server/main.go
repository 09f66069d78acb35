// Package main is the entry point for the poker tracker server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"

	"poker-tracker/internal/config"
)

const usage = `Usage: poker-tracker [--config DIR] <command> [args]

Commands:
  serve                          run the HTTP API (default)
  migrate up                     apply pending migrations
  migrate down [N]               roll back N migrations (default 1)
  migrate status                 show the applied schema version
  provision-host --username NAME create the host credential (password read from the terminal or stdin)
`

func main() {
	global := flag.NewFlagSet("poker-tracker", flag.ContinueOnError)
	global.SetInterspersed(false)
	configDir := global.String("config", "config", "directory containing config.yaml")
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }

	if err := global.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	setupLogging(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := global.Args()
	command := "serve"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	switch command {
	case "serve":
		err = runServe(ctx, cfg)
	case "migrate":
		err = runMigrate(cfg, args)
	case "provision-host":
		err = runProvisionHost(ctx, cfg, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		err = fmt.Errorf("unknown command %q", command)
	}

	if err != nil {
		log.Error().Err(err).Str("command", command).Msg("Command failed")
		stop()
		os.Exit(1)
	}
}

// setupLogging configures the global zerolog logger.
func setupLogging(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		return
	}
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}
