package database

import (
	"database/sql"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver
)

// New creates a new database connection pool.
func New(dataSourceName string) (*sql.DB, error) {
	sep := "?"
	if strings.Contains(dataSourceName, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite", dataSourceName+sep+"_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer; a small pool keeps contention bounded.
	db.SetMaxOpenConns(4)
	if err = db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS links (
		code TEXT NOT NULL PRIMARY KEY,
		owner_id TEXT NOT NULL REFERENCES users(id),
		original_url TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_links_owner ON links(owner_id, created_at);

	CREATE TABLE IF NOT EXISTS clicks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL REFERENCES links(code),
		fingerprint TEXT NOT NULL,
		referer TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_clicks_code ON clicks(code);
	CREATE INDEX IF NOT EXISTS idx_clicks_code_fp ON clicks(code, fingerprint);
	`
	_, err := db.Exec(sqlStmt)
	return err
}

// TimeLayout is the format CURRENT_TIMESTAMP stores, used when comparing
// timestamps in SQL so text ordering matches chronological ordering.
const TimeLayout = "2006-01-02 15:04:05"

// IsUniqueViolation reports whether err comes from a UNIQUE constraint.
// The reservation of short codes and usernames relies on this: the insert
// is the atomic check, never a separate lookup.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
