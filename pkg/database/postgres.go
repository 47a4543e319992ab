package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/ugportal-api/pkg/config"
)

const pingTimeout = 5 * time.Second

type pinger interface {
	PingContext(ctx context.Context) error
}

// DSN renders the lib/pq connection string for cfg.
func DSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
}

// NewPostgres opens the portal database and waits for it to answer. A failed
// ping is retried cfg.ConnectRetries times, cfg.ConnectRetryDelay apart.
func NewPostgres(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, err
	}
	configurePool(db, cfg)

	if err := pingWithRetry(ctx, db, cfg.ConnectRetries, cfg.ConnectRetryDelay, logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func configurePool(db *sqlx.DB, cfg config.DatabaseConfig) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
}

func pingWithRetry(ctx context.Context, db pinger, retries int, delay time.Duration, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if retries < 0 {
		retries = 0
	}
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			logger.Warn("postgres not ready, retrying",
				zap.Int("attempt", attempt),
				zap.Int("retries", retries),
				zap.Error(err),
			)
			select {
			case <-ctx.Done():
				return fmt.Errorf("ping postgres: %w", ctx.Err())
			case <-time.After(delay):
			}
		}
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
	}
	return fmt.Errorf("ping postgres after %d attempts: %w", retries+1, err)
}
