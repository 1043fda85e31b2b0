package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"printcalc/internal/config"
)

// ErrNotFound is returned when no price table version has been stored yet.
var ErrNotFound = errors.New("not found")

type PostgresStorage struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// PriceTableRecord is one stored version of the price document.
type PriceTableRecord struct {
	Version   int64           `db:"version"`
	Body      json.RawMessage `db:"body"`
	Source    string          `db:"source"`
	Author    string          `db:"author"`
	CreatedAt time.Time       `db:"created_at"`
}

func DSN(cfg config.Database) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
}

func NewPostgresStorage(ctx context.Context, cfg config.Database, logger *zap.Logger) (*PostgresStorage, error) {
	const operation = "storage.NewPostgresStorage"

	var db *sqlx.DB

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 2 * time.Minute
	retryPolicy.MaxInterval = 15 * time.Second

	logger.Info("Connecting to PostgreSQL...", zap.String("host", cfg.Host), zap.String("db", cfg.Name))

	err := backoff.RetryNotify(
		func() error {
			conn, err := sqlx.ConnectContext(ctx, "postgres", DSN(cfg))
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			if err := conn.PingContext(ctx); err != nil {
				conn.Close()
				return fmt.Errorf("ping: %w", err)
			}
			db = conn
			return nil
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, next time.Duration) {
			logger.Warn("PostgreSQL connection failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", next))
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect after retries: %w", operation, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	logger.Info("Successfully connected to PostgreSQL")
	return &PostgresStorage{db: db, logger: logger}, nil
}

// DB exposes the underlying pool for migrations.
func (s *PostgresStorage) DB() *sql.DB {
	return s.db.DB
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

// LatestPriceTable returns the newest stored version.
func (s *PostgresStorage) LatestPriceTable(ctx context.Context) (PriceTableRecord, error) {
	const operation = "storage.LatestPriceTable"

	const query = `
		SELECT version, body, source, author, created_at
		FROM price_tables
		ORDER BY version DESC
		LIMIT 1
	`

	var rec PriceTableRecord
	if err := s.db.GetContext(ctx, &rec, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PriceTableRecord{}, fmt.Errorf("%s: %w", operation, ErrNotFound)
		}
		return PriceTableRecord{}, fmt.Errorf("%s: failed to get price table: %w", operation, err)
	}
	return rec, nil
}

// SavePriceTable stores body as a new version and returns its number.
func (s *PostgresStorage) SavePriceTable(ctx context.Context, body json.RawMessage, source, author string) (int64, error) {
	const operation = "storage.SavePriceTable"

	const query = `
		INSERT INTO price_tables (body, source, author, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING version
	`

	var version int64
	err := s.db.QueryRowContext(ctx, query, []byte(body), source, author, time.Now().UTC()).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to save price table: %w", operation, err)
	}

	s.logger.Info("Price table stored",
		zap.Int64("version", version),
		zap.String("source", source),
		zap.String("author", author))
	return version, nil
}

// PriceTableHistory lists stored versions without their bodies, newest first.
func (s *PostgresStorage) PriceTableHistory(ctx context.Context, limit int) ([]PriceTableRecord, error) {
	const operation = "storage.PriceTableHistory"

	const query = `
		SELECT version, source, author, created_at
		FROM price_tables
		ORDER BY version DESC
		LIMIT $1
	`

	var records []PriceTableRecord
	if err := s.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("%s: failed to list price tables: %w", operation, err)
	}
	return records, nil
}
