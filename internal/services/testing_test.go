package services

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/gorgio/shortlink-be/internal/cache"
	"github.com/gorgio/shortlink-be/internal/database"
)

// newTestDB opens a fresh in-memory database, one per test, with the full
// schema applied. Shared cache keeps every pool connection on the same
// memory database; a single connection avoids SQLITE_LOCKED noise under
// the test's concurrent writers.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := database.New(dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// noCache is a disabled cache; every operation is a no-op.
func noCache(t *testing.T) *cache.Cache {
	t.Helper()
	c, err := cache.New(context.Background(), "")
	require.NoError(t, err)
	return c
}

// seedUser inserts a user row directly and returns its id. Link rows
// reference users, so most link and click tests need one.
func seedUser(t *testing.T, db *sql.DB, username string) string {
	t.Helper()
	id := uuid.New().String()
	_, err := db.Exec("INSERT INTO users (id, username, password_hash) VALUES (?, ?, ?)",
		id, username, "x")
	require.NoError(t, err)
	return id
}
