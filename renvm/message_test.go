package renvm

import (
	"math/big"
	"testing"

	"github.com/TEENet-io/renbridge-go/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
)

func TestSignableMessageLayout(t *testing.T) {
	pHash := [32]byte{31: 0x01}
	nHash := [32]byte{31: 0x02}
	token := common.RandBytes32()
	to := common.RandBytes(32)

	msg, err := SignableMessage(pHash, big.NewInt(1000), token, to, nHash)
	assert.NoError(t, err)
	assert.Len(t, msg, 32+16+16+32+32+32)

	assert.Equal(t, pHash[:], msg[:32])
	assert.Equal(t, make([]byte, 16), msg[32:48])
	amount := make([]byte, 16)
	amount[14], amount[15] = 0x03, 0xe8
	assert.Equal(t, amount, msg[48:64])
	assert.Equal(t, token[:], msg[64:96])
	assert.Equal(t, to, msg[96:128])
	assert.Equal(t, nHash[:], msg[128:160])
}

func TestSignableMessageVariableRecipient(t *testing.T) {
	pHash, nHash, token := common.RandBytes32(), common.RandBytes32(), common.RandBytes32()

	// no length prefix: the recipient simply shifts nHash
	for _, n := range []int{0, 1, 20, 32, 33} {
		to := common.RandBytes(n)
		msg, err := SignableMessage(pHash, big.NewInt(1), token, to, nHash)
		assert.NoError(t, err)
		assert.Len(t, msg, fixedFieldLen+n)
		assert.Equal(t, to, msg[96:96+n])
		assert.Equal(t, nHash[:], msg[96+n:])
	}
}

func TestSignableMessageDeterministic(t *testing.T) {
	pHash, nHash, token := common.RandBytes32(), common.RandBytes32(), common.RandBytes32()
	to := common.RandBytes(32)
	amount := common.RandBigInt(16)

	m1, err := SignableMessage(pHash, amount, token, to, nHash)
	assert.NoError(t, err)
	m2, err := SignableMessage(pHash, new(big.Int).Set(amount), token, append([]byte{}, to...), nHash)
	assert.NoError(t, err)
	assert.Equal(t, m1, m2)
}

func TestSignableMessageSingleFieldChange(t *testing.T) {
	pHash, nHash, token := common.RandBytes32(), common.RandBytes32(), common.RandBytes32()
	to := common.RandBytes(32)
	amount := big.NewInt(1000)

	base, err := MessageHash(pHash, amount, token, to, nHash)
	assert.NoError(t, err)

	flip := func(b [32]byte) [32]byte {
		b[7] ^= 0x01
		return b
	}
	toChanged := append([]byte{}, to...)
	toChanged[31] ^= 0x01

	variants := []struct {
		name string
		fn   func() ([]byte, error)
	}{
		{"pHash", func() ([]byte, error) { return SignableMessage(flip(pHash), amount, token, to, nHash) }},
		{"amount", func() ([]byte, error) { return SignableMessage(pHash, big.NewInt(1001), token, to, nHash) }},
		{"token", func() ([]byte, error) { return SignableMessage(pHash, amount, flip(token), to, nHash) }},
		{"to", func() ([]byte, error) { return SignableMessage(pHash, amount, token, toChanged, nHash) }},
		{"nHash", func() ([]byte, error) { return SignableMessage(pHash, amount, token, to, flip(nHash)) }},
	}
	for _, v := range variants {
		msg, err := v.fn()
		assert.NoError(t, err, v.name)
		assert.NotEqual(t, base, crypto.Keccak256Hash(msg), v.name)
	}
}

func TestSignableMessageAmountOutOfRange(t *testing.T) {
	pHash, nHash, token := common.RandBytes32(), common.RandBytes32(), common.RandBytes32()

	_, err := SignableMessage(pHash, new(big.Int).Lsh(big.NewInt(1), 128), token, nil, nHash)
	assert.ErrorIs(t, err, common.ErrAmountOutOfRange)

	_, err = SignableMessage(pHash, big.NewInt(-1), token, nil, nHash)
	assert.ErrorIs(t, err, common.ErrAmountOutOfRange)

	msg, err := SignableMessage(pHash, common.MaxU128, token, nil, nHash)
	assert.NoError(t, err)
	assert.Equal(t, make([]byte, 16), msg[32:48])
}
