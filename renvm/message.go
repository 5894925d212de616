package renvm

import (
	"bytes"
	"math/big"

	"github.com/TEENet-io/renbridge-go/common"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Field widths of the signed mint message. The layout is positional and has
// no version field; it must match what the custodian network signs byte for
// byte.
const (
	hashLen       = 32
	amountPadLen  = 16
	amountLen     = 16
	tokenLen      = 32
	fixedFieldLen = hashLen + amountPadLen + amountLen + tokenLen + hashLen
)

// SignableMessage builds the payload signed by the custodian network:
//
//	pHash(32) ++ zero(16) ++ amount(16, big-endian) ++ token(32) ++ to ++ nHash(32)
//
// The amount occupies a 32-byte word of which only the lower 16 bytes can be
// non-zero.
func SignableMessage(pHash [32]byte, amount *big.Int, token [32]byte, to []byte, nHash [32]byte) ([]byte, error) {
	amountBytes, err := common.U128Bytes(amount)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(fixedFieldLen + len(to))
	buf.Write(pHash[:])
	buf.Write(make([]byte, amountPadLen))
	buf.Write(amountBytes[:])
	buf.Write(token[:])
	buf.Write(to)
	buf.Write(nHash[:])

	return buf.Bytes(), nil
}

// MessageHash is keccak256 of the signable message.
func MessageHash(pHash [32]byte, amount *big.Int, token [32]byte, to []byte, nHash [32]byte) (ethcommon.Hash, error) {
	msg, err := SignableMessage(pHash, amount, token, to, nHash)
	if err != nil {
		return ethcommon.Hash{}, err
	}
	return crypto.Keccak256Hash(msg), nil
}
