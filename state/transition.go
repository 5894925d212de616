package state

import (
	"database/sql"
	"math"

	"github.com/TEENet-io/renbridge-go/agreement"
)

// Transition is one all-or-nothing state change backed by a sql
// transaction. It is not safe for concurrent use; callers serialize
// transitions.
type Transition struct {
	st *StateDB
	tx *sql.Tx

	// signatures recorded in this transition, cached once committed
	recorded []agreement.Signature
}

// Tx exposes the underlying transaction so that collaborators such as the
// currency can take part in the same commit.
func (t *Transition) Tx() *sql.Tx {
	return t.tx
}

func (t *Transition) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return err
	}
	for _, sig := range t.recorded {
		t.st.sigCache.add(sig)
	}
	t.recorded = nil
	return nil
}

// Rollback discards the transition. It is a no-op after Commit, so it can
// be deferred.
func (t *Transition) Rollback() {
	_ = t.tx.Rollback()
	t.recorded = nil
}

// HasSignature is the replay check as seen from inside the transition.
func (t *Transition) HasSignature(sig agreement.Signature) (bool, error) {
	sig = sig.Canonical()
	// a committed signature stays consumed forever
	if t.st.sigCache.has(sig) {
		return true, nil
	}

	stmt, err := t.st.stmtCache.PrepareTx(t.tx, queryHasSignature)
	if err != nil {
		return false, err
	}
	return scanExists(stmt.QueryRow(sigToHex(sig)))
}

// RecordSignature marks sig as consumed. Recording twice is harmless.
func (t *Transition) RecordSignature(sig agreement.Signature) error {
	sig = sig.Canonical()
	stmt, err := t.st.stmtCache.PrepareTx(t.tx, queryInsertSignature)
	if err != nil {
		return err
	}
	if _, err := stmt.Exec(sigToHex(sig)); err != nil {
		return err
	}
	t.recorded = append(t.recorded, sig)
	return nil
}

// AllocateBurnId returns the next burn event id and advances the counter.
// The counter cannot pass math.MaxUint32, so that value is never issued and
// ErrBurnIdOverflow is returned with the counter untouched.
func (t *Transition) AllocateBurnId() (agreement.BurnEventId, error) {
	getStmt, err := t.st.stmtCache.PrepareTx(t.tx, queryGetKeyedValue)
	if err != nil {
		return 0, err
	}
	v, ok, err := getKeyedValue(getStmt, KeyNextBurnEventId)
	if err != nil {
		return 0, err
	}

	var next uint32
	if ok {
		if next, err = hashToUint32(v); err != nil {
			return 0, err
		}
	}

	if next == math.MaxUint32 {
		return 0, ErrBurnIdOverflow
	}

	setStmt, err := t.st.stmtCache.PrepareTx(t.tx, querySetKeyedValue)
	if err != nil {
		return 0, err
	}
	if err := setKeyedValue(setStmt, KeyNextBurnEventId, uint64ToHash(uint64(next)+1)); err != nil {
		return 0, err
	}

	return agreement.BurnEventId(next), nil
}

// RecordBurnEvent stores ev under id. Ids are never overwritten.
func (t *Transition) RecordBurnEvent(id agreement.BurnEventId, ev *agreement.BurnEvent) error {
	r, err := encodeBurnEvent(ev)
	if err != nil {
		return err
	}

	stmt, err := t.st.stmtCache.PrepareTx(t.tx, queryInsertBurnEvent)
	if err != nil {
		return err
	}
	if _, err := stmt.Exec(int64(id), r.Height, r.Destination, r.Amount); err != nil {
		return err
	}
	return nil
}

// Height is the ledger height as seen from inside the transition.
func (t *Transition) Height() (uint64, error) {
	stmt, err := t.st.stmtCache.PrepareTx(t.tx, queryGetKeyedValue)
	if err != nil {
		return 0, err
	}
	v, ok, err := getKeyedValue(stmt, KeyHeight)
	if err != nil || !ok {
		return 0, err
	}
	return hashToUint64(v)
}
