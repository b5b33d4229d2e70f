package wishlist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool abstracts the pgx connection pool.
type Pool interface {
	Acquire(ctx context.Context) (*pgxpool.Conn, error)
	Close()
}

// Connect opens a PostgreSQL connection pool.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

type PostgresStore struct {
	pool Pool
}

func NewPostgresStore(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the wishlist table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS wishlist_entries (
            id BIGSERIAL PRIMARY KEY,
            owner_id TEXT NOT NULL,
            game_id INTEGER NOT NULL,
            added_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
        CREATE INDEX IF NOT EXISTS wishlist_entries_owner_idx ON wishlist_entries (owner_id);
    `)
	if err != nil {
		return fmt.Errorf("create wishlist schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Add(ctx context.Context, owner string, gameID int) error {
	if owner == "" {
		return ErrNoOwner
	}
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `
        INSERT INTO wishlist_entries (owner_id, game_id) VALUES ($1, $2)
    `, owner, gameID); err != nil {
		return fmt.Errorf("insert wishlist entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, owner string) ([]Entry, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT owner_id, game_id, added_at
        FROM wishlist_entries
        WHERE owner_id = $1
        ORDER BY id ASC
    `, owner)
	if err != nil {
		return nil, fmt.Errorf("query wishlist: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Owner, &e.GameID, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("scan wishlist entry: %w", err)
		}
		e.AddedAt = e.AddedAt.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wishlist: %w", err)
	}
	return entries, nil
}
