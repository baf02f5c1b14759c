package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/apps/go-server/internal/config"
	"github.com/robalobadob/hangman/apps/go-server/internal/httpserver"
	"github.com/robalobadob/hangman/apps/go-server/internal/provider"
	"github.com/robalobadob/hangman/apps/go-server/internal/session"
	"github.com/robalobadob/hangman/apps/go-server/internal/storage"
	"github.com/robalobadob/hangman/apps/go-server/internal/store"
	"github.com/robalobadob/hangman/apps/go-server/internal/words"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	if err := words.Init(); err != nil {
		log.Fatal().Err(err).Str("file", cfg.PuzzlesFile).Msg("failed to load puzzle bank")
	}

	db, err := storage.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	if err := db.Migrate(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	gen, err := newGenerator(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("puzzle provider")
	}

	reg := store.NewRegistry(httpserver.SessionFactory(gen, db, session.Options{
		Tick:           cfg.BossTick,
		BossIntro:      cfg.BossIntro,
		PrefetchTarget: cfg.PrefetchSize,
	}))
	srv := httpserver.New(cfg, reg, db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("provider", cfg.Provider).
			Str("db", db.Driver()).
			Msg("starting hangman server")
		errc <- srv.Start(":" + cfg.Port)
	}()

	select {
	case err := <-errc:
		if err != nil {
			log.Error().Err(err).Msg("server exited")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := srv.Shutdown(sctx); err != nil {
			log.Warn().Err(err).Msg("shutdown")
		}
		cancel()
	}

	reg.CloseAll()
	if err := db.Close(); err != nil {
		log.Warn().Err(err).Msg("close database")
	}
}

// newGenerator wraps the configured puzzle client in the validating adapter.
func newGenerator(cfg *config.Config) (*provider.Adapter, error) {
	var c provider.Client
	switch cfg.Provider {
	case config.ProviderGemini:
		c = provider.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	case config.ProviderDeepseek:
		c = provider.NewDeepseekClient(cfg.DeepseekAPIKey, cfg.DeepseekModel)
	case config.ProviderLocal:
		lc, err := provider.NewLocalClient()
		if err != nil {
			return nil, err
		}
		c = lc
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	return provider.NewAdapter(c, cfg.ProviderTimeout), nil
}
