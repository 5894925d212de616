package database

import (
	"database/sql"
	"sync"
)

// to cache prepared sql statement, which maps query string to stmt.
type StmtCache struct {
	db *sql.DB
	m  sync.Map
}

func NewStmtCache(db *sql.DB) *StmtCache {
	return &StmtCache{db: db}
}

func (sc *StmtCache) Prepare(query string) (*sql.Stmt, error) {
	cached, _ := sc.m.Load(query)
	if cached == nil {
		stmt, err := sc.db.Prepare(query)
		if err != nil {
			return nil, err
		}
		if prev, loaded := sc.m.LoadOrStore(query, stmt); loaded {
			_ = stmt.Close()
			return prev.(*sql.Stmt), nil
		}
		cached = stmt
	}
	return cached.(*sql.Stmt), nil
}

// Warm prepares the given queries up front. Statements used inside a
// transaction should be warmed: with a single connection the pool cannot
// prepare on the db while the transaction holds the connection.
func (sc *StmtCache) Warm(queries ...string) error {
	for _, query := range queries {
		if _, err := sc.Prepare(query); err != nil {
			return err
		}
	}
	return nil
}

// PrepareTx returns the cached statement bound to tx, or a statement
// prepared on tx itself if the query has not been cached. Either way it is
// closed when tx commits or rolls back.
func (sc *StmtCache) PrepareTx(tx *sql.Tx, query string) (*sql.Stmt, error) {
	cached, _ := sc.m.Load(query)
	if cached == nil {
		return tx.Prepare(query)
	}
	return tx.Stmt(cached.(*sql.Stmt)), nil
}

func (sc *StmtCache) MustPrepare(query string) *sql.Stmt {
	stmt, err := sc.Prepare(query)
	if err != nil {
		panic(err)
	}
	return stmt
}

func (sc *StmtCache) Clear() {
	sc.m.Range(func(k, v interface{}) bool {
		_ = v.(*sql.Stmt).Close()
		sc.m.Delete(k)
		return true
	})
}
