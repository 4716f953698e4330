package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PoolConfig holds database connection pool configuration.
type PoolConfig struct {
	MaxOpenConns    int32
	MinIdleConns    int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultPoolConfig returns sensible default pool configuration.
func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		MaxOpenConns:    25,
		MinIdleConns:    10,
		ConnMaxLifetime: 1 * time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

// NewPool creates a PostgreSQL connection pool and verifies connectivity
// by pinging the database.
func NewPool(ctx context.Context, connString string, config *PoolConfig) (*pgxpool.Pool, error) {
	if config == nil {
		config = DefaultPoolConfig()
	}

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	poolConfig.MaxConns = config.MaxOpenConns
	poolConfig.MinConns = config.MinIdleConns
	poolConfig.MaxConnLifetime = config.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = config.ConnMaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// postgresStore implements Store on a single key-value table with a
// JSONB document column. It carries the same last-writer-wins contract
// as the file store; the database is used as durable storage, not as a
// coordination mechanism.
type postgresStore struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresStore creates a PostgreSQL-backed store and ensures the
// state table exists.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) (Store, error) {
	s := &postgresStore{
		pool:   pool,
		logger: logger.With().Str("component", "postgres-store").Logger(),
	}

	schema := `
		CREATE TABLE IF NOT EXISTS storefront_state (
			key VARCHAR(100) PRIMARY KEY,
			doc JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`

	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create state table: %w", err)
	}

	return s, nil
}

// Load reads and parses the document stored under key. An unparseable
// document is deleted and reported as absent.
func (s *postgresStore) Load(ctx context.Context, key string, out any) (bool, error) {
	query := `SELECT doc FROM storefront_state WHERE key = $1`

	var data []byte
	err := s.pool.QueryRow(ctx, query, key).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to query key %s: %w", key, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn().
			Err(err).
			Str("key", key).
			Str("code", model.ErrCodeCorruptState).
			Msg("corrupt persisted state, resetting key")

		if rmErr := s.Remove(ctx, key); rmErr != nil {
			s.logger.Error().Err(rmErr).Str("key", key).Msg("failed to remove corrupt key")
		}
		return false, nil
	}

	return true, nil
}

// Save upserts the document under key.
func (s *postgresStore) Save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize key %s: %w", key, err)
	}

	query := `
		INSERT INTO storefront_state (key, doc, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE
		SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at
	`

	if _, err := s.pool.Exec(ctx, query, key, data); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}

	s.logger.Debug().Str("key", key).Int("bytes", len(data)).Msg("state saved")

	return nil
}

// Remove deletes the document under key.
func (s *postgresStore) Remove(ctx context.Context, key string) error {
	query := `DELETE FROM storefront_state WHERE key = $1`

	if _, err := s.pool.Exec(ctx, query, key); err != nil {
		return fmt.Errorf("failed to remove key %s: %w", key, err)
	}
	return nil
}
