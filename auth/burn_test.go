package auth

import (
	"math/big"
	"testing"

	"github.com/TEENet-io/renbridge-go/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	s, err := NewRandomSigner()
	require.NoError(t, err)

	b, err := s.SignBurn(7, common.RandBytes(20), big.NewInt(500))
	require.NoError(t, err)
	assert.Equal(t, s.Account(), b.Account)
	assert.NoError(t, b.Verify())

	// every signed field matters
	tampered := *b
	tampered.Nonce = 8
	assert.ErrorIs(t, tampered.Verify(), ErrInvalidBurnSignature)

	tampered = *b
	tampered.Amount = big.NewInt(501)
	assert.ErrorIs(t, tampered.Verify(), ErrInvalidBurnSignature)

	tampered = *b
	tampered.Destination = common.RandBytes(20)
	assert.ErrorIs(t, tampered.Verify(), ErrInvalidBurnSignature)

	tampered = *b
	tampered.Account = common.RandAccountId()
	assert.ErrorIs(t, tampered.Verify(), ErrInvalidBurnSignature)

	tampered = *b
	tampered.Signature = b.Signature[:10]
	assert.ErrorIs(t, tampered.Verify(), ErrInvalidBurnSignature)
}

func TestSignerFromSeed(t *testing.T) {
	seed := common.RandBytes(32)
	s1, err := NewSigner(seed)
	require.NoError(t, err)
	s2, err := NewSigner(s1.Seed())
	require.NoError(t, err)
	assert.Equal(t, s1.Account(), s2.Account())

	_, err = NewSigner(seed[:31])
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestBurnPayload(t *testing.T) {
	account := common.RandAccountId()
	dest := common.RandBytes(20)

	h1, err := BurnPayload(account, 1, big.NewInt(10), dest)
	assert.NoError(t, err)
	h2, err := BurnPayload(account, 1, big.NewInt(10), dest)
	assert.NoError(t, err)
	assert.Equal(t, h1, h2)

	h3, err := BurnPayload(account, 2, big.NewInt(10), dest)
	assert.NoError(t, err)
	assert.NotEqual(t, h1, h3)

	_, err = BurnPayload(account, 1, big.NewInt(-1), dest)
	assert.ErrorIs(t, err, common.ErrAmountOutOfRange)
}

func TestJSONSignedBurn(t *testing.T) {
	s, err := NewRandomSigner()
	require.NoError(t, err)
	b, err := s.SignBurn(0, []byte("bcrt1qexample"), common.MaxU128)
	require.NoError(t, err)

	decoded, err := b.ToJSON().Decode()
	require.NoError(t, err)
	assert.NoError(t, decoded.Verify())
	assert.Equal(t, b.Destination, decoded.Destination)

	j := b.ToJSON()
	j.Amount = "not a number"
	_, err = j.Decode()
	assert.ErrorIs(t, err, common.ErrAmountOutOfRange)
}
