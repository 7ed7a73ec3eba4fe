package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps documents in the arena_documents table (JSONB body)
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a store over an existing pool
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get decodes the document into dest
func (s *PostgresStore) Get(ctx context.Context, key Key, dest interface{}) error {
	query := `
		SELECT body
		FROM arena_documents
		WHERE category = $1 AND doc_date = $2 AND name = $3
	`

	var body []byte
	err := s.db.QueryRow(ctx, query, key.Category, key.Date, key.Name).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("query %s: %w", key, err)
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Put upserts the document
func (s *PostgresStore) Put(ctx context.Context, key Key, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	query := `
		INSERT INTO arena_documents (category, doc_date, name, body, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (category, doc_date, name) DO UPDATE SET
			body = EXCLUDED.body,
			updated_at = NOW()
	`

	if _, err := s.db.Exec(ctx, query, key.Category, key.Date, key.Name, body); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

// Exists reports whether the document is present
func (s *PostgresStore) Exists(ctx context.Context, key Key) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM arena_documents
			WHERE category = $1 AND doc_date = $2 AND name = $3
		)
	`

	var exists bool
	if err := s.db.QueryRow(ctx, query, key.Category, key.Date, key.Name).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists %s: %w", key, err)
	}
	return exists, nil
}

// List returns the documents of a dated category, sorted by name
func (s *PostgresStore) List(ctx context.Context, category, date string) ([]Key, error) {
	query := `
		SELECT name
		FROM arena_documents
		WHERE category = $1 AND doc_date = $2
		ORDER BY name
	`

	rows, err := s.db.Query(ctx, query, category, date)
	if err != nil {
		return nil, fmt.Errorf("list %s/%s: %w", category, date, err)
	}
	defer rows.Close()

	var keys []Key
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		keys = append(keys, Key{Category: category, Date: date, Name: name})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s/%s: %w", category, date, err)
	}
	return keys, nil
}
