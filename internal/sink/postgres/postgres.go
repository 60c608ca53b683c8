// Package postgres persists decoded events to a single flat table via
// pgx's connection pool.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lugondev/solana-decoder/internal/config"
	"github.com/lugondev/solana-decoder/internal/decoder/core"
)

// Sink persists decoded events to Postgres.
type Sink struct {
	pool *pgxpool.Pool
}

// New opens a connection pool against cfg, runs pending migrations, and
// returns a ready-to-use Sink.
func New(ctx context.Context, cfg *config.PostgresConfig) (*Sink, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = time.Duration(cfg.ConnMaxLifetime) * time.Second
	}
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrate(ctx, pool); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Sink{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (s *Sink) Close() {
	s.pool.Close()
}

// Record is one decoded event ready for storage.
type Record struct {
	Signature string
	Platform  core.Platform
	EventType core.EventType
	Slot      uint64
	Event     core.DecodedEvent
}

// Insert persists a batch of decoded events for one transaction in a single
// round trip, using pgx's batch API.
func (s *Sink) Insert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range records {
		data, err := json.Marshal(r.Event)
		if err != nil {
			return fmt.Errorf("marshal decoded event: %w", err)
		}
		batch.Queue(
			`INSERT INTO decoded_events
				(id, signature, platform, event_type, slot, data, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (id) DO NOTHING`,
			uuid.NewString(), r.Signature, string(r.Platform), string(r.EventType),
			r.Slot, data, time.Now().UTC(),
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range records {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert decoded event: %w", err)
		}
	}

	return nil
}
