package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jgalan247/Edexcel-GCSE/internal/catalog"
	"github.com/jgalan247/Edexcel-GCSE/internal/certificate"
	"github.com/jgalan247/Edexcel-GCSE/internal/config"
	"github.com/jgalan247/Edexcel-GCSE/internal/game"
	"github.com/jgalan247/Edexcel-GCSE/internal/httpserver"
	"github.com/jgalan247/Edexcel-GCSE/internal/notify"
	"github.com/jgalan247/Edexcel-GCSE/internal/results"
	"github.com/jgalan247/Edexcel-GCSE/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A failed load is served as "catalog_unavailable" and can be retried
	// with POST /catalog/reload.
	loader := catalog.NewLoader(catalog.NewSource(cfg.CatalogURL, cfg.CatalogFile))
	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := loader.Load(loadCtx); err != nil {
		log.Warn().Err(err).Msg("starting without a catalog")
	}
	cancel()

	db, err := results.Open(ctx, results.Config{Type: cfg.DatabaseType, Path: cfg.DatabasePath, URL: cfg.DatabaseURL})
	if err != nil {
		log.Fatal().Err(err).Str("type", cfg.DatabaseType).Msg("failed to open results database")
	}
	defer db.Close()

	mailer, err := notify.New(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.TeacherEmailDomains)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure SES")
	}

	mem := store.NewMemoryStore()
	go store.Heartbeat(ctx, mem, cfg.Heartbeat, cfg.SessionTTL)

	srv := httpserver.New(httpserver.Deps{
		Config:   cfg,
		Catalog:  loader,
		Store:    mem,
		Results:  db,
		Certs:    certificate.NewIssuer(cfg.CertSecret, cfg.CertExpiryDays, cfg.PublicBaseURL),
		Listener: game.Listeners{db.Recorder(5 * time.Second), mailer},
	})

	httpSrv := &http.Server{Addr: ":" + cfg.Port, Handler: srv.Router()}
	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("port", cfg.Port).Bool("email", mailer.Enabled()).Msg("starting revision server")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server exited")
	}
}
