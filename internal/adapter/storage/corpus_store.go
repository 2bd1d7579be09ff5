// internal/adapter/storage/corpus_store.go

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"mtc/internal/domain/trend"
)

// CorpusStore caches fetched trend corpora in Postgres. It backs the fast
// path of the escalation controller: the first fetch of a ranking pass reads
// here, and only a fresh fetch bypasses it.
type CorpusStore struct {
	db *pgxpool.Pool
}

// NewCorpusStore creates a new corpus cache store.
func NewCorpusStore(db *pgxpool.Pool) *CorpusStore {
	return &CorpusStore{db: db}
}

// Save upserts the corpus fetched for a cache key.
func (s *CorpusStore) Save(ctx context.Context, key string, items []trend.Item) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("error marshaling corpus: %w", err)
	}

	query := `
		INSERT INTO corpus_cache (cache_key, fetched_at, items)
		VALUES ($1, $2, $3)
		ON CONFLICT (cache_key) DO UPDATE
		SET fetched_at = $2, items = $3
	`
	if _, err := s.db.Exec(ctx, query, key, time.Now().UTC(), payload); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}

// Load returns the cached corpus for key if one exists and is younger than
// maxAge. The second return value reports a usable hit.
func (s *CorpusStore) Load(ctx context.Context, key string, maxAge time.Duration) ([]trend.Item, bool, error) {
	query := `
		SELECT fetched_at, items
		FROM corpus_cache
		WHERE cache_key = $1
	`

	var (
		fetchedAt time.Time
		payload   []byte
	)
	err := s.db.QueryRow(ctx, query, key).Scan(&fetchedAt, &payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("error querying corpus cache: %w", err)
	}

	if maxAge > 0 && time.Since(fetchedAt) > maxAge {
		return nil, false, nil
	}

	var items []trend.Item
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, false, fmt.Errorf("error unmarshaling corpus: %w", err)
	}
	return items, true, nil
}
