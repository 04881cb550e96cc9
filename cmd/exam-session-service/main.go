package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/SAP-F-2025/exam-session-service/internal/cache"
	"github.com/SAP-F-2025/exam-session-service/internal/config"
	"github.com/SAP-F-2025/exam-session-service/internal/handlers"
	"github.com/SAP-F-2025/exam-session-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/exam-session-service/internal/services"
	"github.com/SAP-F-2025/exam-session-service/internal/utils"
	"github.com/SAP-F-2025/exam-session-service/internal/validator"
	"github.com/SAP-F-2025/exam-session-service/pkg"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "exam-session-service",
		Short:        "Exam composition, sessions and attempts API",
		SilenceUsage: true,
	}

	f := root.PersistentFlags()
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "json", "Log format (text, json)")

	root.AddCommand(serveCmd(), migrateCmd())
	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE:  runServe,
	}
	cmd.Flags().StringP("addr", "a", "", "HTTP listen address (defaults to :$PORT)")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the tables owned by this service",
		RunE:  runMigrate,
	}
}

// viperForCmd layers flags over EXAM_SESSION_* environment variables
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())
	_ = v.BindPFlags(cmd.InheritedFlags())

	v.SetEnvPrefix("EXAM_SESSION")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func setup(cmd *cobra.Command) (*viper.Viper, *config.Config, *slog.Logger, error) {
	v := viperForCmd(cmd)

	logger, err := utils.NewLogger(os.Stdout, v.GetString("log-level"), v.GetString("log-format"))
	if err != nil {
		return nil, nil, nil, err
	}
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return v, cfg, logger, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	_, cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	if err := postgres.Migrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Info("Database migrated")
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	v, cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}

	var cacheService cache.CacheService = cache.NoopCache{}
	if cfg.ResultsCacheTTL > 0 {
		redisClient, err := pkg.NewRedisClient(ctx, cfg)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient, logger, "exam-session:")
	}

	publisher, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		return fmt.Errorf("failed to create event publisher: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close event publisher", "error", err)
		}
	}()

	serviceManager := services.NewServiceManager(
		postgres.NewRepository(db),
		cacheService,
		cfg.ResultsCacheTTL,
		logger,
		validator.New(),
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	appLogger := utils.NewSlogLogger(logger)

	router := gin.New()
	router.Use(utils.ContextLogger(appLogger), utils.LoggerMiddleware(appLogger), gin.Recovery())

	auth := handlers.AuthMiddleware(handlers.NewCasdoorVerifier(cfg.Casdoor), appLogger)
	handlers.NewHandlerManager(serviceManager, publisher, appLogger).SetupRoutes(router, auth)

	addr := v.GetString("addr")
	if addr == "" {
		addr = ":" + cfg.Port
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "addr", addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
