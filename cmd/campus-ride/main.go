// Package main is the campus-ride server binary.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	chatApi "campus-ride/internal/chat/api"
	chatApp "campus-ride/internal/chat/app"
	chatRepo "campus-ride/internal/chat/repo"
	identityApi "campus-ride/internal/identity/api"
	identityApp "campus-ride/internal/identity/app"
	identityRepo "campus-ride/internal/identity/repo"
	rideApi "campus-ride/internal/ride/api"
	rideApp "campus-ride/internal/ride/app"
	"campus-ride/internal/ride/consumer"
	rideRepo "campus-ride/internal/ride/repo"
	"campus-ride/internal/shared/config"
	"campus-ride/internal/shared/db"
	"campus-ride/internal/shared/health"
	"campus-ride/internal/shared/jwt"
	"campus-ride/internal/shared/middleware"
	"campus-ride/internal/shared/mq"
	"campus-ride/internal/shared/realtime"
	"campus-ride/internal/shared/util"
	"campus-ride/internal/shared/validation"
)

const appName = "campus-ride"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Campus ride-sharing booking service",
		Long: `campus-ride lets students at one institution post rides and train
journeys, request seats, accept or deny requests, chat about a ride and
rate each other afterwards.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Config file path (YAML)")

	var migrate bool
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath, migrate)
		},
	}
	serve.Flags().BoolVar(&migrate, "migrate", false, "Apply the schema before serving")

	cmd.AddCommand(serve, &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), configPath)
		},
	})

	return cmd
}

func setup(path string) (*config.Config, *util.Logger, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := util.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func runMigrate(ctx context.Context, path string) error {
	cfg, logger, err := setup(path)
	if err != nil {
		return err
	}
	defer logger.Sync()

	pool, err := db.ConnectToDB(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		return err
	}
	logger.OK("Migrate", "schema applied")
	return nil
}

// changeNotifier is satisfied by both *realtime.Hub and *mq.Publisher.
type changeNotifier interface {
	Notify(ctx context.Context, table, key string) error
}

func runServe(parent context.Context, path string, migrate bool) error {
	instance := "Serve"

	cfg, logger, err := setup(path)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.ConnectToDB(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.OK(instance, "connected to PostgreSQL")

	if migrate {
		if err := db.Migrate(ctx, pool); err != nil {
			return err
		}
		logger.OK(instance, "schema applied")
	}

	loc, err := cfg.Discovery.Location()
	if err != nil {
		return err
	}
	validator, err := validation.New(cfg.Auth.EmailPattern)
	if err != nil {
		return err
	}
	tokens := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	hub := realtime.NewHub()

	var (
		notifier changeNotifier = hub
		broker   health.Closer
	)
	if cfg.RabbitMQ.Enabled {
		conn, err := connectBroker(ctx, cfg.RabbitMQ, hub, logger)
		if err != nil {
			return err
		}
		defer conn.Close()
		notifier = mq.NewPublisher(conn, cfg.RabbitMQ.Exchange)
		broker = conn
	}

	profiles := identityApp.NewAuthService(identityRepo.NewProfileRepo(pool), tokens, validator, logger)
	rides := rideApp.NewRideService(rideRepo.NewRideRepo(pool), profiles, notifier, validator, logger, rideApp.Options{
		AllowOverbooking: cfg.Booking.AllowOverbooking,
		Location:         loc,
	})
	chats := chatApp.NewChatService(chatRepo.NewMessageRepo(pool), rides, notifier, logger)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: newMux(pool, broker, tokens, hub, profiles, rides, chats, logger),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.OK(instance, appName+" running on :"+cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info(instance, "shutting down "+appName+"...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.OK(instance, appName+" stopped gracefully")
	return nil
}

// connectBroker dials RabbitMQ, declares the change topology and feeds
// delivered change signals into the hub.
func connectBroker(ctx context.Context, cfg config.RabbitMQConfig, hub *realtime.Hub, logger *util.Logger) (*mq.Connection, error) {
	conn, err := mq.ConnectToRMQ(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err == nil {
		err = mq.DeclareTopology(ch, cfg.Exchange, cfg.Queue)
	}
	if err == nil {
		err = consumer.NewChangeConsumer(conn, hub, cfg.Queue, logger).Start(ctx)
	}
	if err != nil {
		conn.Close()
		return nil, err
	}

	logger.OK("Serve", "connected to RabbitMQ")
	return conn, nil
}

func newMux(
	pool *pgxpool.Pool,
	broker health.Closer,
	tokens *jwt.Manager,
	hub *realtime.Hub,
	profiles *identityApp.AuthService,
	rides *rideApp.RideService,
	chats *chatApp.ChatService,
	logger *util.Logger,
) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.Auth(tokens)

	identityApi.NewHandler(profiles).RegisterRoutes(mux, auth)
	rideApi.NewHandler(rides, hub, tokens, logger).RegisterRoutes(mux, auth)
	chatApi.NewHandler(chats, hub, tokens, logger).RegisterRoutes(mux, auth)

	mux.HandleFunc("GET /health", health.Handler(appName, pool, broker))
	mux.Handle("GET /metrics", promhttp.Handler())

	return middleware.RequestID(middleware.Observe(logger)(mux))
}
