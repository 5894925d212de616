package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStmtCache(t *testing.T) {
	db, err := Open(MemoryDSN)
	assert.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE kv (key TEXT PRIMARY KEY, value TEXT)`)
	assert.NoError(t, err)

	sc := NewStmtCache(db)
	defer sc.Clear()

	s1, err := sc.Prepare(`INSERT INTO kv (key, value) VALUES (?, ?)`)
	assert.NoError(t, err)
	s2, err := sc.Prepare(`INSERT INTO kv (key, value) VALUES (?, ?)`)
	assert.NoError(t, err)
	assert.Same(t, s1, s2)

	_, err = sc.Prepare(`SELECT nothing FROM nowhere`)
	assert.Error(t, err)
}

func TestPrepareTxRollback(t *testing.T) {
	db, err := Open(MemoryDSN)
	assert.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE kv (key TEXT PRIMARY KEY, value TEXT)`)
	assert.NoError(t, err)

	sc := NewStmtCache(db)
	defer sc.Clear()

	insert := `INSERT INTO kv (key, value) VALUES (?, ?)`
	count := func() int {
		var n int
		assert.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&n))
		return n
	}

	tx, err := db.Begin()
	assert.NoError(t, err)
	stmt, err := sc.PrepareTx(tx, insert)
	assert.NoError(t, err)
	_, err = stmt.Exec("a", "1")
	assert.NoError(t, err)
	assert.NoError(t, tx.Rollback())
	assert.Equal(t, 0, count())

	tx, err = db.Begin()
	assert.NoError(t, err)
	stmt, err = sc.PrepareTx(tx, insert)
	assert.NoError(t, err)
	_, err = stmt.Exec("a", "1")
	assert.NoError(t, err)
	assert.NoError(t, tx.Commit())
	Rollback(tx)
	assert.Equal(t, 1, count())
}

func TestPrepareTxUncached(t *testing.T) {
	db, err := Open(MemoryDSN)
	assert.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE kv (key TEXT PRIMARY KEY, value TEXT)`)
	assert.NoError(t, err)

	sc := NewStmtCache(db)
	defer sc.Clear()

	// must not wait for a second connection
	tx, err := db.Begin()
	assert.NoError(t, err)
	stmt, err := sc.PrepareTx(tx, `INSERT INTO kv (key, value) VALUES (?, ?)`)
	assert.NoError(t, err)
	_, err = stmt.Exec("b", "2")
	assert.NoError(t, err)
	assert.NoError(t, tx.Commit())

	assert.NoError(t, sc.Warm(`SELECT value FROM kv WHERE key = ?`))
	var v string
	assert.NoError(t, sc.MustPrepare(`SELECT value FROM kv WHERE key = ?`).QueryRow("b").Scan(&v))
	assert.Equal(t, "2", v)
}
