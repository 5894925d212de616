package common

import (
	"errors"
	"math/big"
)

var (
	// MaxU128 is 2^128 - 1, the largest amount the bridge accepts.
	MaxU128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

	ErrAmountOutOfRange = errors.New("amount is not an unsigned 128-bit integer")
)

// IsU128 reports whether v fits in an unsigned 128-bit integer.
func IsU128(v *big.Int) bool {
	return v != nil && v.Sign() >= 0 && v.BitLen() <= 128
}

// U128Bytes returns v as a 16-byte big-endian array.
func U128Bytes(v *big.Int) ([16]byte, error) {
	var b [16]byte
	if !IsU128(v) {
		return b, ErrAmountOutOfRange
	}
	v.FillBytes(b[:])
	return b, nil
}

// ParseU128 parses a decimal string into an amount.
func ParseU128(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || !IsU128(v) {
		return nil, ErrAmountOutOfRange
	}
	return v, nil
}
