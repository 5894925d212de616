package bridge

import (
	"errors"

	"github.com/TEENet-io/renbridge-go/agreement"
	"github.com/TEENet-io/renbridge-go/auth"
	"github.com/TEENet-io/renbridge-go/renvm"
	"github.com/TEENet-io/renbridge-go/state"
)

var (
	ErrSignatureReplayed = errors.New("mint signature already consumed")
	ErrInvalidBurn       = errors.New("burn needs a destination and a positive amount")
	ErrBadNonce          = errors.New("burn nonce is not the account's next nonce")
	ErrSignedBurnOff     = errors.New("currency does not keep nonces, signed burns disabled")

	// Re-exported so that callers only need this package for errors.Is.
	ErrInvalidSignature     = renvm.ErrInvalidSignature
	ErrBurnIdOverflow       = state.ErrBurnIdOverflow
	ErrInsufficientBalance  = agreement.ErrInsufficientBalance
	ErrInsufficientCapacity = agreement.ErrInsufficientCapacity
	ErrInvalidBurnSignature = auth.ErrInvalidBurnSignature
)

// rejection reasons used as metric labels
const (
	reasonReplayed     = "replayed"
	reasonBadSignature = "bad_signature"
	reasonBalance      = "insufficient_balance"
	reasonCapacity     = "insufficient_capacity"
	reasonOverflow     = "id_overflow"
	reasonInvalid      = "invalid"
	reasonBadNonce     = "bad_nonce"
	reasonInternal     = "internal"
)

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrSignatureReplayed):
		return reasonReplayed
	case errors.Is(err, ErrInvalidSignature), errors.Is(err, ErrInvalidBurnSignature):
		return reasonBadSignature
	case errors.Is(err, ErrInsufficientBalance):
		return reasonBalance
	case errors.Is(err, ErrInsufficientCapacity):
		return reasonCapacity
	case errors.Is(err, ErrBurnIdOverflow):
		return reasonOverflow
	case errors.Is(err, ErrInvalidBurn):
		return reasonInvalid
	case errors.Is(err, ErrBadNonce):
		return reasonBadNonce
	default:
		return reasonInternal
	}
}
