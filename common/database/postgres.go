package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"baymax-vitals/common/config"

	_ "github.com/lib/pq"
)

const defaultPingTimeout = 5 * time.Second

// NewPostgresDB opens a lib/pq pool sized from cfg and verifies it with a
// bounded ping, so a dead database fails service startup instead of the first query.
func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	applyPoolSettings(db, cfg)

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Database, err)
	}
	return db, nil
}

func applyPoolSettings(db *sql.DB, cfg *config.DatabaseConfig) {
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	// idle 不能超过 open
	idle := cfg.MaxIdle
	if cfg.MaxConns > 0 && idle > cfg.MaxConns {
		idle = cfg.MaxConns
	}
	if idle > 0 {
		db.SetMaxIdleConns(idle)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
}

// Close 关闭数据库连接, nil 安全
func Close(db *sql.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}
