package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Wal-20/roomchat/internal/api"
	"github.com/Wal-20/roomchat/internal/api/handlers"
	"github.com/Wal-20/roomchat/internal/api/middleware"
	"github.com/Wal-20/roomchat/internal/api/ws"
	"github.com/Wal-20/roomchat/internal/config"
	"github.com/Wal-20/roomchat/internal/cron"
	"github.com/Wal-20/roomchat/internal/repositories"
	"github.com/Wal-20/roomchat/internal/services"
	"github.com/Wal-20/roomchat/internal/utils"
	"github.com/mama165/sdk-go/logs"
	"github.com/redis/go-redis/v9"
)

func main() {
	issueToken := flag.Uint("issue-token", 0, "print a bearer token for the given user id and exit")
	flag.Parse()

	if err := run(*issueToken); err != nil {
		log.Fatal(err)
	}
}

func run(issueToken uint) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logs.GetLoggerFromString(cfg.LogLevel)

	db, err := config.InitDB(cfg.DBDialect, cfg.ServiceURI)
	if err != nil {
		return fmt.Errorf("DB not initialized: %w", err)
	}
	if cfg.SeedDemoData {
		if err := config.SeedDemoData(db); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	store := repositories.NewStore(db, logger,
		repositories.WithTimeout(cfg.StoreTimeout),
		repositories.WithAttempts(cfg.StoreAttempts))

	rooms := services.NewRoomService(store, utils.NewMembershipCache(cfg.MembershipCacheTTL), logger)
	invitations := services.NewInvitationService(store, logger)
	messages := services.NewMessageService(store)
	users := services.NewUserService(store)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if issueToken != 0 {
		return printToken(ctx, cfg, users, issueToken)
	}

	bus, err := newBus(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer bus.Close()

	hub, err := ws.NewHub(ws.Services{Rooms: rooms, Invitations: invitations, Messages: messages, Users: users},
		bus, logger, ws.WithSendBuffer(cfg.SendBufferSize))
	if err != nil {
		return err
	}

	scheduler, err := cron.StartCronJobs(invitations, cfg.InvitationTTL, cfg.InvitationSweepInterval, logger)
	if err != nil {
		return fmt.Errorf("start invitation sweep: %w", err)
	}
	defer scheduler.Stop()

	h := handlers.New(rooms, invitations, messages, users, hub, func(r *http.Request) bool {
		return middleware.OriginAllowed(cfg.AllowedOrigins, r.Header.Get("Origin"))
	}, logger)
	router := api.NewRouter(h, api.RouterConfig{JWTSecret: cfg.JWTSecret, AllowedOrigins: cfg.AllowedOrigins},
		utils.NewAuthCache(cfg.TokenTTL), logger)
	server := api.NewServer(cfg.HTTPAddr, router)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Listening", "addr", cfg.HTTPAddr, "dialect", cfg.DBDialect)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// Hijacked websocket connections are not tracked by Shutdown.
	hub.Shutdown(shutdownCtx)
	return server.Shutdown(shutdownCtx)
}

func newBus(ctx context.Context, cfg config.Config, logger *slog.Logger) (ws.Bus, error) {
	if cfg.RedisURL == "" {
		return ws.NewLocalBus(), nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return ws.NewRedisBus(client, cfg.RedisChannel, logger), nil
}

func printToken(ctx context.Context, cfg config.Config, users *services.UserService, userID uint) error {
	user, err := users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	token, err := utils.GenerateJWTToken(cfg.JWTSecret, user.ID, user.Name, cfg.TokenTTL)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
