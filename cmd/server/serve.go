package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"poker-tracker/internal/api"
	"poker-tracker/internal/bot"
	"poker-tracker/internal/config"
	"poker-tracker/internal/pkg/db"
	"poker-tracker/internal/pkg/lock"
	"poker-tracker/internal/pkg/throttle"
	"poker-tracker/internal/repository"
	"poker-tracker/internal/service"
)

func runServe(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := db.MigrateUp(cfg.Database.DSN()); err != nil {
		return err
	}

	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	playerRepo := repository.NewPlayerRepository(dbPool.Pool)
	gameRepo := repository.NewGameRepository(dbPool.Pool)
	userRepo := repository.NewUserRepository(dbPool.Pool)

	var loginThrottle service.LoginThrottle
	if cfg.Redis.Addr != "" {
		client, err := throttle.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer client.Close()
		loginThrottle = throttle.New(client, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Login throttling enabled")
	} else {
		log.Warn().Msg("redis.addr is empty, login throttling disabled")
	}

	statsService := service.NewStatsService(playerRepo, gameRepo)
	gameService := service.NewGameService(gameRepo, lock.NewKeyedLock(), cfg.Auth.LockTimeout)
	playerService := service.NewPlayerService(playerRepo)
	authService := service.NewAuthService(userRepo, loginThrottle, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	provisioned, err := authService.HostProvisioned(ctx)
	if err != nil {
		return err
	}
	if !provisioned {
		log.Warn().Msg("No host credential exists; run `poker-tracker provision-host --username NAME` to enable writes")
	}

	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}
	router := api.NewRouter(api.Deps{
		Stats:       statsService,
		Games:       gameService,
		Players:     playerService,
		Auth:        authService,
		Health:      dbPool.HealthCheck,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var telegramBot *bot.Bot
	if cfg.Telegram.Token != "" {
		telegramBot, err = bot.New(&bot.Dependencies{
			Config: cfg,
			Stats:  statsService,
			Games:  gameService,
		})
		if err != nil {
			_ = srv.Close()
			return err
		}
		go telegramBot.Start()
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("Received shutdown signal")
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if telegramBot != nil {
		telegramBot.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}

	log.Info().Msg("Server stopped gracefully")
	return nil
}
