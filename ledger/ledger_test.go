package ledger

import (
	"database/sql"
	"math/big"
	"testing"

	"github.com/TEENet-io/renbridge-go/common"
	"github.com/TEENet-io/renbridge-go/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedgerEnv(t *testing.T) (*Ledger, *sql.DB, func()) {
	db, err := database.Open(database.MemoryDSN)
	require.NoError(t, err)
	l, err := New(db)
	require.NoError(t, err)
	return l, db, func() {
		l.Close()
		db.Close()
	}
}

func inTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	require.NoError(t, err)
	if err := fn(tx); err != nil {
		require.NoError(t, tx.Rollback())
		return err
	}
	require.NoError(t, tx.Commit())
	return nil
}

func TestDepositWithdraw(t *testing.T) {
	l, db, close := newTestLedgerEnv(t)
	defer close()

	alice := common.RandAccountId()

	free, err := l.FreeBalance(alice)
	assert.NoError(t, err)
	assert.Equal(t, 0, free.Sign())

	err = inTx(t, db, func(tx *sql.Tx) error {
		return l.Deposit(tx, alice, big.NewInt(1000))
	})
	assert.NoError(t, err)

	err = inTx(t, db, func(tx *sql.Tx) error {
		return l.Withdraw(tx, alice, big.NewInt(300))
	})
	assert.NoError(t, err)

	free, err = l.FreeBalance(alice)
	assert.NoError(t, err)
	assert.Equal(t, 0, free.Cmp(big.NewInt(700)))

	total, err := l.TotalIssuance()
	assert.NoError(t, err)
	assert.Equal(t, 0, total.Cmp(big.NewInt(700)))
}

func TestWithdrawInsufficientBalance(t *testing.T) {
	l, db, close := newTestLedgerEnv(t)
	defer close()

	alice := common.RandAccountId()
	require.NoError(t, inTx(t, db, func(tx *sql.Tx) error {
		return l.Deposit(tx, alice, big.NewInt(10))
	}))

	err := inTx(t, db, func(tx *sql.Tx) error {
		return l.Withdraw(tx, alice, big.NewInt(11))
	})
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// unknown account has nothing to withdraw
	err = inTx(t, db, func(tx *sql.Tx) error {
		return l.Withdraw(tx, common.RandAccountId(), big.NewInt(1))
	})
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	free, err := l.FreeBalance(alice)
	assert.NoError(t, err)
	assert.Equal(t, 0, free.Cmp(big.NewInt(10)))
}

func TestDepositCapacity(t *testing.T) {
	l, db, close := newTestLedgerEnv(t)
	defer close()

	alice := common.RandAccountId()
	bob := common.RandAccountId()

	require.NoError(t, inTx(t, db, func(tx *sql.Tx) error {
		return l.Deposit(tx, alice, common.MaxU128)
	}))

	err := inTx(t, db, func(tx *sql.Tx) error {
		return l.Deposit(tx, alice, big.NewInt(1))
	})
	assert.ErrorIs(t, err, ErrInsufficientCapacity)

	// total issuance is bounded too
	err = inTx(t, db, func(tx *sql.Tx) error {
		return l.Deposit(tx, bob, big.NewInt(1))
	})
	assert.ErrorIs(t, err, ErrInsufficientCapacity)

	err = inTx(t, db, func(tx *sql.Tx) error {
		return l.Deposit(tx, bob, big.NewInt(-1))
	})
	assert.ErrorIs(t, err, common.ErrAmountOutOfRange)

	free, err := l.FreeBalance(alice)
	assert.NoError(t, err)
	assert.Equal(t, 0, free.Cmp(common.MaxU128))
}

func TestRollbackLeavesBalance(t *testing.T) {
	l, db, close := newTestLedgerEnv(t)
	defer close()

	alice := common.RandAccountId()
	tx, err := db.Begin()
	require.NoError(t, err)
	assert.NoError(t, l.Deposit(tx, alice, big.NewInt(5)))
	assert.NoError(t, l.IncNonceTx(tx, alice))
	require.NoError(t, tx.Rollback())

	free, err := l.FreeBalance(alice)
	assert.NoError(t, err)
	assert.Equal(t, 0, free.Sign())
	nonce, err := l.Nonce(alice)
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), nonce)
}

func TestNonce(t *testing.T) {
	l, db, close := newTestLedgerEnv(t)
	defer close()

	alice := common.RandAccountId()
	for i := 0; i < 3; i++ {
		require.NoError(t, inTx(t, db, func(tx *sql.Tx) error {
			n, err := l.NonceTx(tx, alice)
			assert.NoError(t, err)
			assert.Equal(t, uint64(i), n)
			return l.IncNonceTx(tx, alice)
		}))
	}

	nonce, err := l.Nonce(alice)
	assert.NoError(t, err)
	assert.Equal(t, uint64(3), nonce)

	// bumping the nonce keeps the balance
	free, err := l.FreeBalance(alice)
	assert.NoError(t, err)
	assert.Equal(t, 0, free.Sign())

	accounts, err := l.Accounts()
	assert.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, alice, accounts[0].Id)
	assert.Equal(t, uint64(3), accounts[0].Nonce)
}
