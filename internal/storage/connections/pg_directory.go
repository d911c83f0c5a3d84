// Package connections is the Postgres-backed connection directory and
// credential provider consumed by the dispatcher.
package connections

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/adkite/adkite/internal/domain"
)

// PgDirectory reads platform connections and their access credentials.
type PgDirectory struct {
	pool *pgxpool.Pool
}

// NewPgDirectory opens a connection pool and verifies connectivity.
func NewPgDirectory(ctx context.Context, dsn string) (*PgDirectory, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "create connection directory pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	return &PgDirectory{pool: pool}, nil
}

// NewPgDirectoryFromPool wraps an existing pool.
func NewPgDirectoryFromPool(pool *pgxpool.Pool) *PgDirectory {
	return &PgDirectory{pool: pool}
}

// ActiveConnection returns the organization's active connection for the
// platform, or nil when none exists. Inactive rows are treated the same
// as missing ones: the operator must reconnect either way.
func (d *PgDirectory) ActiveConnection(ctx context.Context, orgID string, platform domain.Platform) (*domain.Connection, error) {
	var conn domain.Connection
	err := d.pool.QueryRow(ctx, `
		SELECT id, org_id, platform, account_id, active
		FROM platform_connections
		WHERE org_id = $1 AND platform = $2 AND active`,
		orgID, platform).Scan(&conn.ID, &conn.OrgID, &conn.Platform, &conn.AccountID, &conn.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "query active connection")
	}
	return &conn, nil
}

// AccessToken returns the opaque bearer token stored for a connection,
// or "" when none is stored.
func (d *PgDirectory) AccessToken(ctx context.Context, connectionID string) (string, error) {
	var token string
	err := d.pool.QueryRow(ctx,
		`SELECT access_token FROM connection_credentials WHERE connection_id = $1`,
		connectionID).Scan(&token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", errors.Wrap(err, "query access token")
	}
	return token, nil
}

// Close releases the pool.
func (d *PgDirectory) Close() {
	d.pool.Close()
}
