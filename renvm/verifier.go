package renvm

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/TEENet-io/renbridge-go/agreement"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrInvalidSignature = errors.New("invalid mint signature")

	errRecoveryFailed  = errors.New("public key recovery failed")
	errMalformedValues = errors.New("signature values out of range")
	errSignerMismatch  = errors.New("recovered signer is not the trusted address")
)

// Verifier checks that a mint claim was signed by the custodian network.
// It holds immutable configuration only and is safe for concurrent use.
type Verifier struct {
	trusted ethcommon.Address
	token   [32]byte
}

func NewVerifier(trusted ethcommon.Address, token [32]byte) *Verifier {
	return &Verifier{trusted: trusted, token: token}
}

func (v *Verifier) TrustedAddress() ethcommon.Address {
	return v.trusted
}

func (v *Verifier) Token() [32]byte {
	return v.token
}

// Verify recovers the signer of the mint message and compares it with the
// trusted address. Any failure is reported as ErrInvalidSignature.
func (v *Verifier) Verify(pHash [32]byte, amount *big.Int, to []byte, nHash [32]byte, sig agreement.Signature) error {
	hash, err := MessageHash(pHash, amount, v.token, to, nHash)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	signer, err := RecoverSigner(hash, sig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if signer != v.trusted {
		return fmt.Errorf("%w: %v, signer=%s", ErrInvalidSignature, errSignerMismatch, signer.Hex())
	}

	return nil
}

// VerifyClaim is Verify on a claim whose recipient is the beneficiary account.
func (v *Verifier) VerifyClaim(claim *agreement.MintClaim) error {
	return v.Verify(claim.PHash, claim.Amount, claim.Beneficiary.Bytes(), claim.NHash, claim.Signature)
}

// RecoverSigner returns the address whose key produced sig over hash.
// The recovery id may be given as 0/1 or 27/28. Signatures with s in the
// upper half of the curve order are refused, so each signed message has a
// single acceptable encoding.
func RecoverSigner(hash ethcommon.Hash, sig agreement.Signature) (ethcommon.Address, error) {
	normalized := sig.Canonical()

	r := new(big.Int).SetBytes(normalized[:32])
	s := new(big.Int).SetBytes(normalized[32:64])
	if !crypto.ValidateSignatureValues(normalized[64], r, s, true) {
		return ethcommon.Address{}, errMalformedValues
	}

	pub, err := crypto.SigToPub(hash.Bytes(), normalized[:])
	if err != nil {
		return ethcommon.Address{}, fmt.Errorf("%w: %v", errRecoveryFailed, err)
	}

	return crypto.PubkeyToAddress(*pub), nil
}
