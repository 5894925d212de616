package database

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

const MemoryDSN = ":memory:"

// Open opens a sqlite database with a single connection. State transitions
// are serialized anyway, and ":memory:" databases are per connection, so one
// connection is both sufficient and required.
func Open(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Rollback is for deferred use: it is a no-op once the tx has committed.
func Rollback(tx *sql.Tx) {
	_ = tx.Rollback()
}
