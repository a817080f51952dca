package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tasknest/realtime/internal/auth"
	"github.com/tasknest/realtime/internal/bridge"
	"github.com/tasknest/realtime/internal/config"
	"github.com/tasknest/realtime/internal/database"
	postgresrepo "github.com/tasknest/realtime/internal/repository/postgres"
	"github.com/tasknest/realtime/internal/service"
	"github.com/tasknest/realtime/internal/transport/http/handlers"
	"github.com/tasknest/realtime/internal/transport/http/middleware"
	"github.com/tasknest/realtime/internal/transport/ws"
)

func main() {
	cfg := config.Load()
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	presenceRepo := postgresrepo.NewPresenceRepo(pool)
	notificationRepo := postgresrepo.NewNotificationRepo(pool)

	// One hub instance per process; everything that publishes or queries
	// membership gets it handed in explicitly.
	verifier := auth.NewVerifier(cfg.JWTSecret)
	tracker := ws.NewTracker(presenceRepo, logger)
	hub := ws.NewHub(ws.NewRooms(), tracker, logger)
	tracker.SetBroadcaster(hub)

	// Optional cross-instance bridge
	if cfg.RedisAddr != "" {
		b := bridge.NewRedisBridge(bridge.DefaultRedisConfig(cfg.RedisAddr, cfg.RedisPassword), hub, logger)
		if err := b.Start(); err != nil {
			logger.Fatal().Err(err).Msg("redis bridge failed to start")
		}
		defer b.Stop()
		hub.SetBridge(b)
	}

	// Services
	announceService := service.NewAnnounceService(hub, logger)
	notificationService := service.NewNotificationService(notificationRepo, hub, logger)

	// Handlers
	realtimeHandler := handlers.NewRealtimeHandler(hub)
	announceHandler := handlers.NewAnnounceHandler(announceService)
	notificationHandler := handlers.NewNotificationHandler(notificationService, logger)

	authMw := middleware.Auth(verifier)

	// Routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.Handle("GET /ws", ws.ServeWS(hub, verifier, userRepo, logger))

	// Live-state queries
	mux.Handle("GET /api/v1/projects/{id}/viewers", authMw(http.HandlerFunc(realtimeHandler.ProjectViewers)))
	mux.Handle("GET /api/v1/presence/online", authMw(http.HandlerFunc(realtimeHandler.OnlineUsers)))

	// Service-to-service announce surface, called by the main API after it
	// has persisted the underlying mutation.
	mux.Handle("POST /internal/v1/notifications", authMw(http.HandlerFunc(notificationHandler.Push)))
	mux.Handle("POST /internal/v1/announce/task-status", authMw(http.HandlerFunc(announceHandler.TaskStatusChanged)))
	mux.Handle("POST /internal/v1/announce/message", authMw(http.HandlerFunc(announceHandler.MessageReceived)))
	mux.Handle("POST /internal/v1/announce/project", authMw(http.HandlerFunc(announceHandler.ProjectNotification)))
	mux.Handle("POST /internal/v1/announce/member-update", authMw(http.HandlerFunc(announceHandler.MemberUpdate)))
	mux.Handle("POST /internal/v1/announce/system", authMw(http.HandlerFunc(announceHandler.SystemAnnouncement)))

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
	logger.Info().Msg("server stopped")
}
