// Package db opens the pgx-backed *sql.DB used by the postgres GORM dialector.
package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// pingTimeout bounds the connectivity check performed by NewDB.
var pingTimeout = 3 * time.Second

// NewDB creates a *sql.DB for dsn using the pgx stdlib driver and pings it
// with a short timeout to verify connectivity.
func NewDB(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is empty")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
