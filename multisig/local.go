package multisig

import (
	"errors"
	"math/big"

	"github.com/TEENet-io/renbridge-go/agreement"
	"github.com/TEENet-io/renbridge-go/renvm"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrInvalidHashLength = errors.New("signing hash must be 32 bytes")

// Define a local ecdsa signer, which is backed by one single private key.
// It stands in for the custodian network in tests and dev deployments.
type LocalEcdsaSigner struct {
	Sk *btcec.PrivateKey
}

// If user provides a 256-bit (32byte) private key, we can create a signer.
func NewLocalEcdsaSigner(privkey []byte) (*LocalEcdsaSigner, error) {
	if len(privkey) != 32 {
		return nil, errors.New("private key must be 32 bytes")
	}
	sk, _ := btcec.PrivKeyFromBytes(privkey)
	return &LocalEcdsaSigner{Sk: sk}, nil
}

// If user choose to randomly generate a signer.
func NewRandomLocalEcdsaSigner() (*LocalEcdsaSigner, error) {
	sk, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, err
	}
	return &LocalEcdsaSigner{Sk: sk}, nil
}

// Sign a 32-byte hash. The result is laid out as r ++ s ++ v with v in {0, 1}.
func (l *LocalEcdsaSigner) Sign(hash []byte) (agreement.Signature, error) {
	var sig agreement.Signature
	if len(hash) != 32 {
		return sig, ErrInvalidHashLength
	}

	// compact = (27 + recid) ++ r ++ s, for an uncompressed key
	compact := ecdsa.SignCompact(l.Sk, hash, false)
	copy(sig[:64], compact[1:])
	sig[64] = compact[0] - 27

	return sig, nil
}

// Address is the 20-byte address the bridge is configured to trust.
func (l *LocalEcdsaSigner) Address() ethcommon.Address {
	return crypto.PubkeyToAddress(*l.Sk.PubKey().ToECDSA())
}

// SignMint signs a mint claim for the given token the same way the
// custodian network does.
func (l *LocalEcdsaSigner) SignMint(
	pHash [32]byte,
	amount *big.Int,
	token [32]byte,
	to []byte,
	nHash [32]byte,
) (agreement.Signature, error) {
	hash, err := renvm.MessageHash(pHash, amount, token, to, nHash)
	if err != nil {
		return agreement.Signature{}, err
	}
	return l.Sign(hash.Bytes())
}

// NewMintClaim builds and signs a claim minting amount to beneficiary.
func (l *LocalEcdsaSigner) NewMintClaim(
	beneficiary agreement.AccountId,
	pHash [32]byte,
	amount *big.Int,
	token [32]byte,
	nHash [32]byte,
) (*agreement.MintClaim, error) {
	sig, err := l.SignMint(pHash, amount, token, beneficiary.Bytes(), nHash)
	if err != nil {
		return nil, err
	}
	return &agreement.MintClaim{
		Beneficiary: beneficiary,
		PHash:       pHash,
		Amount:      new(big.Int).Set(amount),
		NHash:       nHash,
		Signature:   sig,
	}, nil
}
