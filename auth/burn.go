// Package auth authenticates burn callers. An account id is an ed25519
// public key and every burn request carries the account's next nonce.
package auth

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/TEENet-io/renbridge-go/agreement"
	"github.com/TEENet-io/renbridge-go/common"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/ed25519"
)

const burnDomain = "renvm-bridge/burn"

var (
	ErrInvalidBurnSignature = errors.New("invalid burn signature")
	ErrInvalidKey           = errors.New("invalid ed25519 key")
)

type SignedBurn struct {
	Account     agreement.AccountId
	Nonce       uint64
	Destination []byte
	Amount      *big.Int
	Signature   []byte
}

func (b *SignedBurn) String() string {
	return fmt.Sprintf("{account=%s, nonce=%d, dest=0x%x, amount=%v}", b.Account, b.Nonce, b.Destination, b.Amount)
}

// BurnPayload is the hash an account signs to request a burn:
// keccak256(domain ++ account ++ nonce_be(8) ++ amount_be(16) ++ destination).
func BurnPayload(account agreement.AccountId, nonce uint64, amount *big.Int, destination []byte) (ethcommon.Hash, error) {
	amountBytes, err := common.U128Bytes(amount)
	if err != nil {
		return ethcommon.Hash{}, err
	}

	var nonceBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], nonce)

	var buf bytes.Buffer
	buf.WriteString(burnDomain)
	buf.Write(account[:])
	buf.Write(nonceBytes[:])
	buf.Write(amountBytes[:])
	buf.Write(destination)

	return crypto.Keccak256Hash(buf.Bytes()), nil
}

// Verify checks that the request was signed by the key behind Account.
// It says nothing about whether the nonce is current.
func (b *SignedBurn) Verify() error {
	hash, err := BurnPayload(b.Account, b.Nonce, b.Amount, b.Destination)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBurnSignature, err)
	}
	if len(b.Signature) != ed25519.SignatureSize {
		return fmt.Errorf("%w: signature length %d", ErrInvalidBurnSignature, len(b.Signature))
	}
	if !ed25519.Verify(ed25519.PublicKey(b.Account[:]), hash.Bytes(), b.Signature) {
		return ErrInvalidBurnSignature
	}
	return nil
}

// Signer holds the key of a burning account.
type Signer struct {
	sk ed25519.PrivateKey
}

func NewSigner(seed []byte) (*Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, ErrInvalidKey
	}
	return &Signer{sk: ed25519.NewKeyFromSeed(seed)}, nil
}

func NewRandomSigner() (*Signer, error) {
	_, sk, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &Signer{sk: sk}, nil
}

func (s *Signer) Account() agreement.AccountId {
	var id agreement.AccountId
	copy(id[:], s.sk.Public().(ed25519.PublicKey))
	return id
}

func (s *Signer) Seed() []byte {
	return s.sk.Seed()
}

func (s *Signer) SignBurn(nonce uint64, destination []byte, amount *big.Int) (*SignedBurn, error) {
	account := s.Account()
	hash, err := BurnPayload(account, nonce, amount, destination)
	if err != nil {
		return nil, err
	}

	return &SignedBurn{
		Account:     account,
		Nonce:       nonce,
		Destination: append([]byte{}, destination...),
		Amount:      common.BigIntClone(amount),
		Signature:   ed25519.Sign(s.sk, hash.Bytes()),
	}, nil
}
