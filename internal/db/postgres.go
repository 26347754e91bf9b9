// internal/db/postgres.go
package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	connectTimeout  = 10 * time.Second
	pingAttempts    = 3
	pingRetryDelay  = 2 * time.Second
	connMaxLifetime = time.Hour
	connMaxIdleTime = 30 * time.Minute
)

type PostgresDB struct {
	Pool *pgxpool.Pool
}

// NewPostgresDB opens a pgx pool sized from configuration. The ping is
// retried a few times so the API survives the database coming up a moment
// later than the app container.
func NewPostgresDB(databaseURL string, maxConns, minConns int32) (*PostgresDB, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolCfg.MaxConns = maxConns
	poolCfg.MinConns = minConns
	poolCfg.MaxConnLifetime = connMaxLifetime
	poolCfg.MaxConnIdleTime = connMaxIdleTime
	poolCfg.HealthCheckPeriod = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	for attempt := 1; ; attempt++ {
		err = pool.Ping(ctx)
		if err == nil {
			break
		}
		if attempt >= pingAttempts {
			pool.Close()
			return nil, fmt.Errorf("database unreachable after %d attempts: %w", attempt, err)
		}
		log.Printf("[DB] ⚠️ Ping attempt %d failed: %v (retrying)", attempt, err)
		time.Sleep(pingRetryDelay)
	}

	log.Printf("[DB] ✅ PostgreSQL pool ready (max=%d min=%d)", maxConns, minConns)
	return &PostgresDB{Pool: pool}, nil
}

func (db *PostgresDB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		log.Println("[DB] PostgreSQL pool closed")
	}
}
