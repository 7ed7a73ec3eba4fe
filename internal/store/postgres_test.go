package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/predictarena/internal/contracts"
	"github.com/wonny/predictarena/pkg/config"
	"github.com/wonny/predictarena/pkg/database"
)

func testDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	db, err := database.New(context.Background(), &config.Config{
		Database: config.DatabaseConfig{
			URL:             url,
			MaxConns:        4,
			MinConns:        1,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: time.Minute,
		},
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestPostgresStore_RoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewPostgresStore(db.Pool)

	date := "1999-12-31"
	_, err := db.Pool.Exec(ctx, `DELETE FROM arena_documents WHERE doc_date = $1`, date)
	require.NoError(t, err)

	key := PredictionKey(date, "claude")
	var missing contracts.ForecastBatch
	assert.ErrorIs(t, s.Get(ctx, key, &missing), ErrNotFound)

	batch := contracts.ForecastBatch{ForecasterID: "claude", DisplayName: "Claude", Date: date}
	require.NoError(t, s.Put(ctx, key, batch))
	batch.DisplayName = "Claude 2"
	require.NoError(t, s.Put(ctx, key, batch))

	ok, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	var got contracts.ForecastBatch
	require.NoError(t, s.Get(ctx, key, &got))
	assert.Equal(t, "Claude 2", got.DisplayName)

	keys, err := s.List(ctx, CategoryPredictions, date)
	require.NoError(t, err)
	assert.Equal(t, []Key{key}, keys)
}

func TestPostgresLocker(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	l := NewPostgresLocker(db.Pool)

	release, err := l.Lock(ctx, "test-lock")
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = l.Lock(waitCtx, "test-lock")
	assert.Error(t, err)

	require.NoError(t, release(ctx))

	again, err := l.Lock(ctx, "test-lock")
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}
