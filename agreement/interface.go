package agreement

import (
	"database/sql"
	"errors"
	"math/big"
)

// Errors a Currency reports for the two expected failures.
var (
	ErrInsufficientBalance  = errors.New("insufficient free balance")
	ErrInsufficientCapacity = errors.New("balance would exceed the maximum amount")
)

// Currency is the balance engine the bridge mints into and burns from.
//
// Both calls run inside the caller's transaction so that the balance change
// commits or rolls back together with the bridge's own bookkeeping. An error
// means nothing was changed by the call.
type Currency interface {
	// Deposit credits amount to who. Fails with ErrInsufficientCapacity if the
	// balance would overflow.
	Deposit(tx *sql.Tx, who AccountId, amount *big.Int) error

	// Withdraw debits amount from who. Fails with ErrInsufficientBalance if the
	// free balance is short.
	Withdraw(tx *sql.Tx, who AccountId, amount *big.Int) error
}
