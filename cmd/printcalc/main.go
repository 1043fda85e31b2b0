package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"printcalc/internal/api"
	"printcalc/internal/bot"
	"printcalc/internal/config"
	"printcalc/internal/prices"
	"printcalc/internal/storage"
	"printcalc/internal/storage/redis"
	"printcalc/pkg/logger"
)

// ENTRY POINT

func main() {
	rollback := flag.Bool("rollback", false, "roll back the latest database migration and exit")
	flag.Parse()

	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(cfg.DevMode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	if err := run(ctx, cfg, *rollback, zapLogger); err != nil {
		zapLogger.Fatal("Calculator stopped with error", zap.Error(err))
	}

	zapLogger.Info("Calculator shutdown gracefully")
}

func run(ctx context.Context, cfg *config.Config, rollback bool, logger *zap.Logger) error {
	var (
		pgStorage *storage.PostgresStorage
		store     prices.TableStore
	)
	if cfg.PricesSource == config.SourcePostgres || cfg.StoreEnabled() {
		var err error
		pgStorage, err = storage.NewPostgresStorage(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer pgStorage.Close()

		if rollback {
			return storage.RollbackMigration(ctx, pgStorage.DB(), logger)
		}
		if err := storage.RunMigrations(ctx, pgStorage.DB(), logger); err != nil {
			return err
		}
		store = pgStorage
	} else if rollback {
		return fmt.Errorf("rollback requires a configured database")
	}

	var source prices.Source
	switch cfg.PricesSource {
	case config.SourceFile:
		source = prices.NewFileSource(cfg.PricesFile)
	case config.SourcePostgres:
		source = prices.NewStoreSource(pgStorage)
	default:
		httpSource := prices.NewHTTPSource(cfg.PricesBaseURL, cfg.DevMode, cfg.HTTPRequestTimeout, logger)
		logger.Info("Using remote price table", zap.String("url", httpSource.URL()))
		source = httpSource
	}

	svc := prices.NewService(source, store, prices.NewHolder(), logger)

	// The calculator starts blocked when the first load fails and stays
	// usable through /reload or an upload.
	if _, err := svc.Reload(ctx); err != nil {
		logger.Warn("Starting without a price table", zap.Error(err))
	}

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	if cfg.BotEnabled() {
		sessions := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SessionTTL)
		defer sessions.Close()

		if err := sessions.Ping(ctx); err != nil {
			return err
		}

		tgBot, err := bot.New(cfg.TelegramToken, sessions, svc, logger, cfg)
		if err != nil {
			return err
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := tgBot.Start(ctx); err != nil {
				errCh <- fmt.Errorf("bot: %w", err)
				stop()
			}
		}()
	}

	server := api.New(svc, cfg.PublicBaseURL, cfg.DevMode, logger).WithCORS(cfg.CORSOrigins)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Run(ctx, cfg.HTTPAddr); err != nil {
			errCh <- fmt.Errorf("api: %w", err)
			stop()
		}
	}()

	wg.Wait()
	close(errCh)
	return <-errCh
}
