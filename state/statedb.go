package state

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"math"
	"math/big"

	"github.com/TEENet-io/renbridge-go/agreement"
	"github.com/TEENet-io/renbridge-go/common"
	"github.com/TEENet-io/renbridge-go/database"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	logger "github.com/sirupsen/logrus"
)

var (
	KeyNextBurnEventId = crypto.Keccak256Hash([]byte("NextBurnEventId"))
	KeyHeight          = crypto.Keccak256Hash([]byte("Height"))

	ErrBurnIdOverflow       = errors.New("burn event id space exhausted")
	ErrHeightDecreased      = errors.New("new height less than the stored one")
	ErrStoredValueInvalid   = errors.New("stored value is invalid")
	ErrBurnEventInvalid     = errors.New("burn event is invalid")
	ErrStoredBurnEventError = errors.New("stored burn event cannot be decoded")
)

const signatureCacheSize = 4096

type StateDB struct {
	db        *sql.DB
	stmtCache *database.StmtCache
	sigCache  *signatureCache
}

func NewStateDB(db *sql.DB) (*StateDB, error) {
	// 1. Create the tables.
	if _, err := db.Exec(signatureTable + burnEventTable + kvTable); err != nil {
		return nil, err
	}

	// 2. A stmt cache + db.
	sc := database.NewStmtCache(db)
	if err := sc.Warm(txQueries...); err != nil {
		sc.Clear()
		return nil, err
	}

	return &StateDB{
		db:        db,
		stmtCache: sc,
		sigCache:  newSignatureCache(signatureCacheSize),
	}, nil
}

func (st *StateDB) Close() {
	st.stmtCache.Clear()
}

// Begin opens a transition. All reads and writes made through it are
// applied together on Commit or not at all.
func (st *StateDB) Begin() (*Transition, error) {
	tx, err := st.db.Begin()
	if err != nil {
		return nil, err
	}
	return &Transition{st: st, tx: tx}, nil
}

// HasSignature reports whether sig, in any encoding of its recovery id, has
// already been consumed by a mint. It never writes and may be called
// concurrently.
func (st *StateDB) HasSignature(sig agreement.Signature) (bool, error) {
	sig = sig.Canonical()
	if st.sigCache.has(sig) {
		return true, nil
	}

	stmt, err := st.stmtCache.Prepare(queryHasSignature)
	if err != nil {
		return false, err
	}

	ok, err := scanExists(stmt.QueryRow(sigToHex(sig)))
	if err != nil {
		return false, err
	}
	if ok {
		st.sigCache.add(sig)
	}
	return ok, nil
}

// NextBurnEventId is the id the next burn will get.
func (st *StateDB) NextBurnEventId() (uint32, error) {
	v, ok, err := st.GetKeyedValue(KeyNextBurnEventId)
	if err != nil || !ok {
		return 0, err
	}
	return hashToUint32(v)
}

func (st *StateDB) GetBurnEvent(id agreement.BurnEventId) (*agreement.BurnEvent, bool, error) {
	stmt, err := st.stmtCache.Prepare(queryGetBurnEvent)
	if err != nil {
		return nil, false, err
	}

	var r sqlBurnEvent
	if err := stmt.QueryRow(int64(id)).Scan(&r.Height, &r.Destination, &r.Amount); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}

	ev, err := r.decode()
	if err != nil {
		return nil, false, err
	}
	return ev, true, nil
}

// GetBurnEvents returns up to limit burn events with id >= from in id order.
func (st *StateDB) GetBurnEvents(from agreement.BurnEventId, limit int) ([]agreement.BurnEventId, []*agreement.BurnEvent, error) {
	stmt, err := st.stmtCache.Prepare(queryGetBurnEvents)
	if err != nil {
		return nil, nil, err
	}

	rows, err := stmt.Query(int64(from), limit)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var (
		ids    []agreement.BurnEventId
		events []*agreement.BurnEvent
	)
	for rows.Next() {
		var (
			id int64
			r  sqlBurnEvent
		)
		if err := rows.Scan(&id, &r.Height, &r.Destination, &r.Amount); err != nil {
			return nil, nil, err
		}
		ev, err := r.decode()
		if err != nil {
			return nil, nil, err
		}
		ids = append(ids, agreement.BurnEventId(id))
		events = append(events, ev)
	}

	return ids, events, rows.Err()
}

// Height is the current ledger height, 0 if never set.
func (st *StateDB) Height() (uint64, error) {
	v, ok, err := st.GetKeyedValue(KeyHeight)
	if err != nil || !ok {
		return 0, err
	}
	return hashToUint64(v)
}

// SetHeight stores a new ledger height. Heights never go backwards.
func (st *StateDB) SetHeight(h uint64) error {
	stored, err := st.Height()
	if err != nil {
		return err
	}
	if h < stored {
		logger.WithFields(logger.Fields{
			"new":    h,
			"stored": stored,
		}).Warn("new height less than the stored one")
		return ErrHeightDecreased
	}
	return st.SetKeyedValue(KeyHeight, uint64ToHash(h))
}

func (st *StateDB) GetKeyedValue(key ethcommon.Hash) (ethcommon.Hash, bool, error) {
	stmt, err := st.stmtCache.Prepare(queryGetKeyedValue)
	if err != nil {
		return ethcommon.Hash{}, false, err
	}
	return getKeyedValue(stmt, key)
}

func (st *StateDB) SetKeyedValue(key, value ethcommon.Hash) error {
	stmt, err := st.stmtCache.Prepare(querySetKeyedValue)
	if err != nil {
		return err
	}
	return setKeyedValue(stmt, key, value)
}

func getKeyedValue(stmt *sql.Stmt, key ethcommon.Hash) (ethcommon.Hash, bool, error) {
	var value string
	keyHex := key.String()[2:]
	if err := stmt.QueryRow(keyHex).Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return ethcommon.Hash{}, false, nil
		}
		return ethcommon.Hash{}, false, err
	}

	b, err := common.HexStrToBytes32(value)
	if err != nil {
		return ethcommon.Hash{}, false, ErrStoredValueInvalid
	}
	return b, true, nil
}

func setKeyedValue(stmt *sql.Stmt, key, value ethcommon.Hash) error {
	keyHex := key.String()[2:]
	valueHex := value.String()[2:]
	if _, err := stmt.Exec(keyHex, valueHex); err != nil {
		return err
	}
	return nil
}

func scanExists(row *sql.Row) (bool, error) {
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func sigToHex(sig agreement.Signature) string {
	return hex.EncodeToString(sig[:])
}

func uint64ToHash(v uint64) ethcommon.Hash {
	return ethcommon.BigToHash(new(big.Int).SetUint64(v))
}

func hashToUint64(h ethcommon.Hash) (uint64, error) {
	v := h.Big()
	if !v.IsUint64() {
		return 0, ErrStoredValueInvalid
	}
	return v.Uint64(), nil
}

func hashToUint32(h ethcommon.Hash) (uint32, error) {
	v, err := hashToUint64(h)
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint32 {
		return 0, ErrStoredValueInvalid
	}
	return uint32(v), nil
}
