package ledger

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/TEENet-io/renbridge-go/agreement"
	"github.com/TEENet-io/renbridge-go/common"
	"github.com/TEENet-io/renbridge-go/database"
	logger "github.com/sirupsen/logrus"
)

var (
	ErrInsufficientBalance  = agreement.ErrInsufficientBalance
	ErrInsufficientCapacity = agreement.ErrInsufficientCapacity
	ErrNonceOverflow        = errors.New("account nonce cannot be advanced")
	ErrStoredAccountInvalid = errors.New("stored account cannot be decoded")
)

// Ledger keeps free balances and burn nonces of accounts in sqlite. It is
// the currency the bridge mints into and burns from.
type Ledger struct {
	db        *sql.DB
	stmtCache *database.StmtCache
}

var _ agreement.Currency = (*Ledger)(nil)

type Account struct {
	Id    agreement.AccountId
	Free  *big.Int
	Nonce uint64
}

func New(db *sql.DB) (*Ledger, error) {
	if _, err := db.Exec(accountTable + issuanceTable); err != nil {
		return nil, err
	}

	sc := database.NewStmtCache(db)
	if err := sc.Warm(txQueries...); err != nil {
		sc.Clear()
		return nil, err
	}

	return &Ledger{db: db, stmtCache: sc}, nil
}

func (l *Ledger) Close() {
	l.stmtCache.Clear()
}

// Deposit credits amount to who, creating the account if needed.
func (l *Ledger) Deposit(tx *sql.Tx, who agreement.AccountId, amount *big.Int) error {
	if !common.IsU128(amount) {
		return common.ErrAmountOutOfRange
	}

	free, _, err := l.account(tx, who)
	if err != nil {
		return err
	}
	issuance, err := l.issuance(tx)
	if err != nil {
		return err
	}

	free.Add(free, amount)
	issuance.Add(issuance, amount)
	if !common.IsU128(free) || !common.IsU128(issuance) {
		return ErrInsufficientCapacity
	}

	if err := l.setFree(tx, who, free); err != nil {
		return err
	}
	return l.setIssuance(tx, issuance)
}

// Withdraw debits amount from who. Nothing changes if the free balance is
// less than amount.
func (l *Ledger) Withdraw(tx *sql.Tx, who agreement.AccountId, amount *big.Int) error {
	if !common.IsU128(amount) {
		return common.ErrAmountOutOfRange
	}

	free, _, err := l.account(tx, who)
	if err != nil {
		return err
	}
	if free.Cmp(amount) < 0 {
		logger.WithFields(logger.Fields{
			"account": who.String(),
			"free":    free,
			"amount":  amount,
		}).Debug("insufficient balance")
		return ErrInsufficientBalance
	}

	issuance, err := l.issuance(tx)
	if err != nil {
		return err
	}
	issuance.Sub(issuance, amount)
	if issuance.Sign() < 0 {
		return fmt.Errorf("%w: issuance below zero", ErrStoredAccountInvalid)
	}

	if err := l.setFree(tx, who, free.Sub(free, amount)); err != nil {
		return err
	}
	return l.setIssuance(tx, issuance)
}

// NonceTx reads the burn nonce of who inside tx.
func (l *Ledger) NonceTx(tx *sql.Tx, who agreement.AccountId) (uint64, error) {
	_, nonce, err := l.account(tx, who)
	return nonce, err
}

// IncNonceTx advances the burn nonce of who by one inside tx.
func (l *Ledger) IncNonceTx(tx *sql.Tx, who agreement.AccountId) error {
	_, nonce, err := l.account(tx, who)
	if err != nil {
		return err
	}
	if nonce >= math.MaxInt64 {
		return ErrNonceOverflow
	}

	stmt, err := l.stmtCache.PrepareTx(tx, querySetNonce)
	if err != nil {
		return err
	}
	_, err = stmt.Exec(accountKey(who), int64(nonce+1))
	return err
}

// FreeBalance is zero for unknown accounts.
func (l *Ledger) FreeBalance(who agreement.AccountId) (*big.Int, error) {
	stmt, err := l.stmtCache.Prepare(queryGetAccount)
	if err != nil {
		return nil, err
	}
	free, _, err := scanAccount(stmt.QueryRow(accountKey(who)))
	return free, err
}

func (l *Ledger) Nonce(who agreement.AccountId) (uint64, error) {
	stmt, err := l.stmtCache.Prepare(queryGetAccount)
	if err != nil {
		return 0, err
	}
	_, nonce, err := scanAccount(stmt.QueryRow(accountKey(who)))
	return nonce, err
}

// TotalIssuance is the sum of all free balances.
func (l *Ledger) TotalIssuance() (*big.Int, error) {
	stmt, err := l.stmtCache.Prepare(queryGetIssuance)
	if err != nil {
		return nil, err
	}
	return scanAmount(stmt.QueryRow())
}

func (l *Ledger) Accounts() ([]*Account, error) {
	stmt, err := l.stmtCache.Prepare(queryListAccounts)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []*Account{}
	for rows.Next() {
		var (
			key   string
			free  string
			nonce int64
		)
		if err := rows.Scan(&key, &free, &nonce); err != nil {
			return nil, err
		}
		id, err := common.HexStrToBytes32(key)
		if err != nil {
			return nil, ErrStoredAccountInvalid
		}
		amount, ok := new(big.Int).SetString(free, 10)
		if !ok || nonce < 0 {
			return nil, ErrStoredAccountInvalid
		}
		accounts = append(accounts, &Account{Id: id, Free: amount, Nonce: uint64(nonce)})
	}

	return accounts, rows.Err()
}

func (l *Ledger) account(tx *sql.Tx, who agreement.AccountId) (*big.Int, uint64, error) {
	stmt, err := l.stmtCache.PrepareTx(tx, queryGetAccount)
	if err != nil {
		return nil, 0, err
	}
	return scanAccount(stmt.QueryRow(accountKey(who)))
}

func (l *Ledger) setFree(tx *sql.Tx, who agreement.AccountId, free *big.Int) error {
	stmt, err := l.stmtCache.PrepareTx(tx, querySetFree)
	if err != nil {
		return err
	}
	_, err = stmt.Exec(accountKey(who), free.String())
	return err
}

func (l *Ledger) issuance(tx *sql.Tx) (*big.Int, error) {
	stmt, err := l.stmtCache.PrepareTx(tx, queryGetIssuance)
	if err != nil {
		return nil, err
	}
	return scanAmount(stmt.QueryRow())
}

func (l *Ledger) setIssuance(tx *sql.Tx, total *big.Int) error {
	stmt, err := l.stmtCache.PrepareTx(tx, querySetIssuance)
	if err != nil {
		return err
	}
	_, err = stmt.Exec(total.String())
	return err
}

func scanAccount(row *sql.Row) (*big.Int, uint64, error) {
	var (
		free  string
		nonce int64
	)
	if err := row.Scan(&free, &nonce); err != nil {
		if err == sql.ErrNoRows {
			return big.NewInt(0), 0, nil
		}
		return nil, 0, err
	}

	amount, ok := new(big.Int).SetString(free, 10)
	if !ok || nonce < 0 {
		return nil, 0, ErrStoredAccountInvalid
	}
	return amount, uint64(nonce), nil
}

func scanAmount(row *sql.Row) (*big.Int, error) {
	var s string
	if err := row.Scan(&s); err != nil {
		if err == sql.ErrNoRows {
			return big.NewInt(0), nil
		}
		return nil, err
	}

	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, ErrStoredAccountInvalid
	}
	return amount, nil
}

func accountKey(who agreement.AccountId) string {
	return hex.EncodeToString(who[:])
}
