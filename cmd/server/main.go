package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/callrelay/internal/adapters/http"
	sigws "github.com/dkeye/callrelay/internal/adapters/signal"
	"github.com/dkeye/callrelay/internal/app"
	"github.com/dkeye/callrelay/internal/app/orch"
	"github.com/dkeye/callrelay/internal/config"
	"github.com/dkeye/callrelay/internal/presence"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.Mode == "release" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	policy, err := app.PolicyFromName(cfg.BackpressurePolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid backpressure policy")
	}
	lifecycle, err := app.ParseLifecycleMode(cfg.LifecycleMode)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid lifecycle mode")
	}
	iceServers, err := cfg.WebRTCICEServers()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid ice servers")
	}

	var sink app.PresenceSink = app.NopPresence{}
	if cfg.Redis.Enabled {
		client, err := presence.Connect(ctx, presence.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("presence mirror")
		}
		defer client.Close()
		mirror := presence.NewMirror(client, cfg.Redis.TTL, 0)
		go mirror.Run(ctx)
		sink = mirror
		log.Info().Str("addr", cfg.Redis.Addr).Msg("presence mirror enabled")
	}

	o := &orch.Orchestrator{
		Registry:  app.NewRegistry(),
		Rooms:     app.NewRoomManager(),
		Policy:    policy,
		Presence:  sink,
		Lifecycle: lifecycle,
	}

	ctrl := sigws.NewSignalWSController(o, sigws.Options{
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
		PongWait:   cfg.PongWait,
		WriteWait:  cfg.WriteWait,
		SendBuffer: cfg.SendBuffer,
	}, sigws.NewRateLimiter(cfg.RateLimit.Limit, cfg.RateLimit.Interval))

	r := router.SetupRouter(ctx, cfg, o, ctrl, iceServers)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Str("lifecycle", string(lifecycle)).Msg("call relay started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Int("sessions", o.Shutdown()).Msg("Server exited gracefully")
}
