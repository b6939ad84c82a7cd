// ABOUTME: Postgres connection pool setup and shared store errors
// ABOUTME: Supports dialing through an SSH+SOCKS5 bastion via DB_ALL_PROXY

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sentinel errors returned by all repositories. Handlers translate these to
// the API error body; they never leak SQL detail.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Connect creates a pgx pool for the given DSN. When allProxy is non-empty
// (ssh+socks5://user@host:port?private-key=/path), all connections are dialed
// through the SSH+SOCKS5 tunnel, for databases reachable only via a bastion.
func Connect(ctx context.Context, dsn, allProxy string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DB DSN: %w", err)
	}

	if allProxy != "" {
		dialFunc, err := socks5DialContextFunc(allProxy)
		if err != nil {
			return nil, fmt.Errorf("configure DB tunnel: %w", err)
		}
		cfg.ConnConfig.DialFunc = dialFunc
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
