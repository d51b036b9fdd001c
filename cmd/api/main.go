package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	server "accessible_map/internal/adapters/http_server"
	"accessible_map/internal/adapters/observability"
	"accessible_map/internal/adapters/overpass"
	"accessible_map/internal/app"
	"accessible_map/internal/chat"
	"accessible_map/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := overpass.New(cfg.OverpassURL, overpass.Options{
		RPS:         cfg.OverpassRPS,
		MaxInFlight: cfg.OverpassInFlight,
		Timeout:     cfg.OverpassTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize interpreter client")
	}
	bot, err := chat.Load(cfg.ChatRulesPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load chat rules")
	}
	log.Info().Int("rules", bot.Len()).Msg("chat rules loaded")

	sessions := app.NewSessions(ctx, client, app.SystemScheduler{}, app.SessionsConfig{
		Debounce:      cfg.Debounce,
		MaxSessions:   cfg.MaxSessions,
		IdleTTL:       cfg.SessionIdle,
		PermalinkBase: cfg.PermalinkBase,
	})

	// session creation fetches inline; leave room for the interpreter's own timeout
	reqTimeout := cfg.OverpassTimeout + 5*time.Second
	if cfg.OverpassTimeout <= 0 {
		reqTimeout = 0
	}
	srv := server.New(reqTimeout)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Sessions: sessions, Chat: bot})

	servers := []*http.Server{{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}}
	if cfg.MetricsAddr != "" {
		servers = append(servers, observability.NewMetricsServer(cfg.MetricsAddr, reg))
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range servers {
		s := s
		g.Go(func() error {
			log.Info().Str("addr", s.Addr).Msg("listening")
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		return sessions.RunReaper(gctx, time.Minute)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, s := range servers {
			if err := s.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Str("addr", s.Addr).Msg("shutdown failed")
			}
		}
		sessions.CloseAll()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("stopped")
}
