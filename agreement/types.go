// Golbal Agreement on types

package agreement

import (
	"encoding/hex"
	"fmt"
	"math/big"
)

// AccountId identifies an account on the ledger. Its SCALE encoding is the
// raw 32 bytes, which is what the custodian network signs as the recipient.
type AccountId [32]byte

func (a AccountId) Bytes() []byte {
	return a[:]
}

func (a AccountId) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// Signature is a 65-byte recoverable ECDSA signature laid out as r ++ s ++ v.
// It is only ever used as a lookup key and for public key recovery.
type Signature [65]byte

func (s Signature) Bytes() []byte {
	return s[:]
}

func (s Signature) String() string {
	return "0x" + hex.EncodeToString(s[:])
}

// Canonical returns s with a recovery id of 27 or 28 rewritten to 0 or 1.
// Both forms recover the same key, so consumed signatures are always
// looked up and stored in canonical form.
func (s Signature) Canonical() Signature {
	if s[64] == 27 || s[64] == 28 {
		s[64] -= 27
	}
	return s
}

// BurnEventId is allocated from a gapless counter starting at 0.
type BurnEventId uint32

// MintClaim is what a submitter presents to get wrapped asset minted.
// It is never persisted as such, only its signature is.
type MintClaim struct {
	Beneficiary AccountId
	PHash       [32]byte
	Amount      *big.Int // u128
	NHash       [32]byte
	Signature   Signature
}

func (c *MintClaim) String() string {
	return fmt.Sprintf("{beneficiary=%s, pHash=0x%x, amount=%v, nHash=0x%x, sig=%s}",
		c.Beneficiary, c.PHash, c.Amount, c.NHash, c.Signature)
}

// BurnEvent records a burn so that the custodian network can release the
// locked asset on the foreign chain. Created once, never mutated.
type BurnEvent struct {
	Height      uint64
	Destination []byte
	Amount      *big.Int // u128
}

func (ev *BurnEvent) String() string {
	return fmt.Sprintf("{height=%d, dest=0x%x, amount=%v}", ev.Height, ev.Destination, ev.Amount)
}

// MintedEvent is emitted after a mint has been committed.
type MintedEvent struct {
	Owner     AccountId
	Amount    *big.Int
	Signature Signature
}

func (ev *MintedEvent) String() string {
	return fmt.Sprintf("%+v", *ev)
}

// BurntEvent is emitted after a burn has been committed.
type BurntEvent struct {
	Id          BurnEventId
	Owner       AccountId
	Destination []byte
	Amount      *big.Int
	Height      uint64
}

func (ev *BurntEvent) String() string {
	return fmt.Sprintf("%+v", *ev)
}

type JSONBurnEvent struct {
	Id          uint32 `json:"id"`
	Height      uint64 `json:"height"`
	Destination string `json:"destination"`
	Amount      string `json:"amount"`
}
