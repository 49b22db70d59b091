package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/daily-stamp/internal/config"
	"github.com/iliyamo/daily-stamp/internal/database"
	"github.com/iliyamo/daily-stamp/internal/handler"
	"github.com/iliyamo/daily-stamp/internal/middleware"
	"github.com/iliyamo/daily-stamp/internal/queue"
	"github.com/iliyamo/daily-stamp/internal/repository"
	"github.com/iliyamo/daily-stamp/internal/router"
	"github.com/iliyamo/daily-stamp/internal/service"
	"github.com/iliyamo/daily-stamp/internal/utils"
)

var (
	autoMigrate bool
	stampLog    string
)

var rootCmd = &cobra.Command{
	Use:          "daily-stamp",
	Short:        "Daily stamp habit tracker API",
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the users, streaks and stamps tables",
	RunE:  runMigrate,
}

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Append stamp.recorded events to a rotating stamp log",
	RunE:  runConsume,
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, serveCmd} {
		c.Flags().BoolVar(&autoMigrate, "migrate", false, "create missing tables before serving")
	}
	consumeCmd.Flags().StringVar(&stampLog, "out", "logs/stamps.log", "stamp log file")
	rootCmd.AddCommand(serveCmd, migrateCmd, consumeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	log := utils.NewLogger(cfg.Log)
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if autoMigrate {
		if err := database.Migrate(cmd.Context(), db, cfg.DBDriver); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Warn("redis unavailable: local rate limiting, no response cache, inline summaries only")
	} else {
		defer rdb.Close()
	}

	users := repository.NewUserRepo(db)
	streaks := repository.NewStreakRepo(db)
	stampRepo := repository.NewStampRepo(db)

	verifier := service.NewUserVerifier(users, cfg.StoreTimeout)
	stamps := service.NewStampService(verifier, streaks, stampRepo, log, cfg.StoreTimeout)
	var summaries handler.SummaryTaker
	if rdb != nil {
		sr := repository.NewSummaryRepo(rdb, cfg.SummaryTTL)
		stamps.Summaries = sr
		summaries = sr
	}
	if cfg.AMQPURL != "" {
		stamps.Events = service.NewAMQPPublisher(cfg.AMQPURL, log)
	}
	accounts := &service.AccountService{
		Users:        users,
		Verifier:     verifier,
		BcryptCost:   cfg.BcryptCost,
		JWTSecret:    cfg.JWTSecret,
		UnlockTTLMin: cfg.UnlockTTLMin,
		Timeout:      cfg.StoreTimeout,
	}
	history := &service.HistoryService{Stamps: stampRepo, Streaks: streaks, Timeout: cfg.StoreTimeout}

	e := echo.New()
	e.HideBanner = true
	router.Setup(e, log, cfg.AllowedOrigins)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log)
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAccountHandler(accounts), limiter)
	router.RegisterStamps(e, handler.NewStampHandler(stamps, summaries, cfg.NoteMaxLen), limiter)
	router.RegisterHistory(e, handler.NewHistoryHandler(history), middleware.NewRedisCache(config.LoadCacheConfig(), rdb), cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("db", cfg.DBDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return e.Shutdown(shutdownCtx)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg := config.LoadDB()
	log := utils.NewLogger(cfg.Log)
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := database.Migrate(cmd.Context(), db, cfg.DBDriver); err != nil {
		return err
	}
	log.Info("schema ready", zap.String("db", cfg.DBDriver))
	return nil
}

func runConsume(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()
	logCfg := config.LoadLogConfig()
	log := utils.NewLogger(logCfg)
	defer func() { _ = log.Sync() }()

	url := config.AMQPURL()
	if url == "" {
		return errors.New("RABBITMQ_URL or AMQP_URL must be set")
	}
	out := utils.RotatingFile(stampLog, logCfg)
	defer out.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &queue.Consumer{URL: url, Out: out, Log: log}
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
