package state

import (
	"math"
	"math/big"
	"testing"

	"github.com/TEENet-io/renbridge-go/agreement"
	"github.com/TEENet-io/renbridge-go/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStateDBEnv(t *testing.T) (*StateDB, func()) {
	sqlDB := getMemoryDB()
	statedb, err := NewStateDB(sqlDB)
	require.NoError(t, err)
	return statedb, func() {
		statedb.Close()
		sqlDB.Close()
	}
}

func TestRecordSignature(t *testing.T) {
	db, close := newTestStateDBEnv(t)
	defer close()

	sig := common.RandSignature()

	ok, err := db.HasSignature(sig)
	assert.NoError(t, err)
	assert.False(t, ok)

	tr, err := db.Begin()
	require.NoError(t, err)
	ok, err = tr.HasSignature(sig)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, tr.RecordSignature(sig))
	ok, err = tr.HasSignature(sig)
	assert.NoError(t, err)
	assert.True(t, ok)
	// idempotent
	assert.NoError(t, tr.RecordSignature(sig))
	assert.NoError(t, tr.Commit())

	ok, err = db.HasSignature(sig)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, db.sigCache.has(sig))
}

func TestRecordSignatureRecoveryIdForms(t *testing.T) {
	db, close := newTestStateDBEnv(t)
	defer close()

	sig := common.RandSignature()
	twin := sig
	twin[64] += 27

	tr, err := db.Begin()
	require.NoError(t, err)
	assert.NoError(t, tr.RecordSignature(twin))
	ok, err := tr.HasSignature(sig)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, tr.Commit())

	// stored and cached once, under the 0/1 form
	assert.True(t, db.sigCache.has(sig))
	for _, s := range []agreement.Signature{sig, twin} {
		ok, err = db.HasSignature(s)
		assert.NoError(t, err)
		assert.True(t, ok)
	}

	db.sigCache.cache.Purge()
	ok, err = db.HasSignature(twin)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestRecordSignatureRollback(t *testing.T) {
	db, close := newTestStateDBEnv(t)
	defer close()

	sig := common.RandSignature()

	tr, err := db.Begin()
	require.NoError(t, err)
	assert.NoError(t, tr.RecordSignature(sig))
	tr.Rollback()

	ok, err := db.HasSignature(sig)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, db.sigCache.has(sig))
}

func TestHasSignatureFromDatabase(t *testing.T) {
	sqlDB := getMemoryDB()
	defer sqlDB.Close()

	db, err := NewStateDB(sqlDB)
	require.NoError(t, err)

	sig := common.RandSignature()
	tr, err := db.Begin()
	require.NoError(t, err)
	assert.NoError(t, tr.RecordSignature(sig))
	assert.NoError(t, tr.Commit())
	db.Close()

	// a fresh StateDB over the same database starts with an empty cache
	db, err = NewStateDB(sqlDB)
	require.NoError(t, err)
	defer db.Close()
	assert.False(t, db.sigCache.has(sig))

	ok, err := db.HasSignature(sig)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, db.sigCache.has(sig))
}

func TestAllocateBurnId(t *testing.T) {
	db, close := newTestStateDBEnv(t)
	defer close()

	next, err := db.NextBurnEventId()
	assert.NoError(t, err)
	assert.Equal(t, uint32(0), next)

	for i := 0; i < 3; i++ {
		tr, err := db.Begin()
		require.NoError(t, err)
		id, err := tr.AllocateBurnId()
		assert.NoError(t, err)
		assert.Equal(t, agreement.BurnEventId(i), id)
		assert.NoError(t, tr.Commit())
	}

	next, err = db.NextBurnEventId()
	assert.NoError(t, err)
	assert.Equal(t, uint32(3), next)

	// rolled back allocation leaves no gap
	tr, err := db.Begin()
	require.NoError(t, err)
	_, err = tr.AllocateBurnId()
	assert.NoError(t, err)
	tr.Rollback()

	next, err = db.NextBurnEventId()
	assert.NoError(t, err)
	assert.Equal(t, uint32(3), next)
}

func TestAllocateBurnIdOverflow(t *testing.T) {
	db, close := newTestStateDBEnv(t)
	defer close()

	err := db.SetKeyedValue(KeyNextBurnEventId, uint64ToHash(math.MaxUint32-1))
	require.NoError(t, err)

	tr, err := db.Begin()
	require.NoError(t, err)
	id, err := tr.AllocateBurnId()
	assert.NoError(t, err)
	assert.Equal(t, agreement.BurnEventId(math.MaxUint32-1), id)
	assert.NoError(t, tr.Commit())

	tr, err = db.Begin()
	require.NoError(t, err)
	_, err = tr.AllocateBurnId()
	assert.ErrorIs(t, err, ErrBurnIdOverflow)
	tr.Rollback()

	next, err := db.NextBurnEventId()
	assert.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), next)
}

func TestRecordBurnEvent(t *testing.T) {
	db, close := newTestStateDBEnv(t)
	defer close()

	expected := RandBurnEvent()

	tr, err := db.Begin()
	require.NoError(t, err)
	id, err := tr.AllocateBurnId()
	require.NoError(t, err)
	assert.NoError(t, tr.RecordBurnEvent(id, expected))
	// ids are never overwritten
	assert.Error(t, tr.RecordBurnEvent(id, RandBurnEvent()))
	assert.NoError(t, tr.Commit())

	actual, ok, err := db.GetBurnEvent(id)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, expected.Height, actual.Height)
	assert.Equal(t, expected.Destination, actual.Destination)
	assert.Equal(t, 0, expected.Amount.Cmp(actual.Amount))

	_, ok, err = db.GetBurnEvent(id + 1)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordBurnEventInvalid(t *testing.T) {
	db, close := newTestStateDBEnv(t)
	defer close()

	tr, err := db.Begin()
	require.NoError(t, err)
	defer tr.Rollback()

	ev := RandBurnEvent()
	ev.Destination = nil
	assert.ErrorIs(t, tr.RecordBurnEvent(0, ev), ErrBurnEventInvalid)

	ev = RandBurnEvent()
	ev.Amount = new(big.Int).Lsh(big.NewInt(1), 128)
	assert.ErrorIs(t, tr.RecordBurnEvent(0, ev), ErrBurnEventInvalid)
}

func TestGetBurnEvents(t *testing.T) {
	db, close := newTestStateDBEnv(t)
	defer close()

	var expected []*agreement.BurnEvent
	tr, err := db.Begin()
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		ev := RandBurnEvent()
		ev.Amount = common.MaxU128
		id, err := tr.AllocateBurnId()
		require.NoError(t, err)
		require.NoError(t, tr.RecordBurnEvent(id, ev))
		expected = append(expected, ev)
	}
	require.NoError(t, tr.Commit())

	ids, events, err := db.GetBurnEvents(1, 3)
	assert.NoError(t, err)
	assert.Equal(t, []agreement.BurnEventId{1, 2, 3}, ids)
	assert.Len(t, events, 3)
	for i, ev := range events {
		assert.Equal(t, expected[i+1].Destination, ev.Destination)
		assert.Equal(t, 0, common.MaxU128.Cmp(ev.Amount))
	}

	ids, _, err = db.GetBurnEvents(10, 3)
	assert.NoError(t, err)
	assert.Len(t, ids, 0)
}

func TestHeight(t *testing.T) {
	db, close := newTestStateDBEnv(t)
	defer close()

	h, err := db.Height()
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), h)

	assert.NoError(t, db.SetHeight(10))
	assert.NoError(t, db.SetHeight(10))
	assert.ErrorIs(t, db.SetHeight(9), ErrHeightDecreased)

	tr, err := db.Begin()
	require.NoError(t, err)
	defer tr.Rollback()
	h, err = tr.Height()
	assert.NoError(t, err)
	assert.Equal(t, uint64(10), h)
}
