package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/gabriel/raw-source-finder/internal/searchutil"
)

// Store keeps serialized responses in the response_cache table. Expiry times
// are stored as unix milliseconds.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Get returns the payload for key if it has not expired at now.
func (s *Store) Get(ctx context.Context, key string, now time.Time) ([]byte, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT payload
		FROM response_cache
		WHERE key = ? AND expires_at > ?
	`, key, now.UnixMilli())

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get cached response: %w", err)
	}
	return payload, true, nil
}

func (s *Store) Put(ctx context.Context, key string, payload []byte, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO response_cache (key, payload, expires_at, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			expires_at = excluded.expires_at,
			created_at = excluded.created_at
	`, key, payload, expiresAt.UnixMilli(), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("put cached response: %w", err)
	}
	return nil
}

// PurgeExpired deletes every entry that has expired at now and reports how
// many were removed.
func (s *Store) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM response_cache WHERE expires_at <= ?`, now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("purge cached responses: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count purged responses: %w", err)
	}
	return removed, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// NormalizeQuery folds a query to NFC and collapses its whitespace. Callers
// that cache by KeyFor should look up the normalized form so a cached body
// is valid for every query sharing its key.
func NormalizeQuery(query string) string {
	return searchutil.CollapseSpace(norm.NFC.String(query))
}

// KeyFor builds the cache key of a request. Queries that differ only in
// Unicode composition or whitespace share a key.
func KeyFor(path string, query string, debug bool) string {
	var builder strings.Builder
	builder.WriteString(path)
	builder.WriteString("?q=")
	builder.WriteString(NormalizeQuery(query))
	if debug {
		builder.WriteString("&debug=1")
	}
	return builder.String()
}
