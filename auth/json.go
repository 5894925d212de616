package auth

import (
	"github.com/TEENet-io/renbridge-go/common"
)

// JSONSignedBurn is the wire form of a SignedBurn. Byte fields are hex
// strings, the amount a decimal string.
type JSONSignedBurn struct {
	Account     string `json:"account"`
	Nonce       uint64 `json:"nonce"`
	Destination string `json:"destination"`
	Amount      string `json:"amount"`
	Signature   string `json:"signature"`
}

func (b *SignedBurn) ToJSON() *JSONSignedBurn {
	return &JSONSignedBurn{
		Account:     common.Prepend0xPrefix(common.ByteSliceToPureHexStr(b.Account[:])),
		Nonce:       b.Nonce,
		Destination: common.Prepend0xPrefix(common.ByteSliceToPureHexStr(b.Destination)),
		Amount:      b.Amount.String(),
		Signature:   common.Prepend0xPrefix(common.ByteSliceToPureHexStr(b.Signature)),
	}
}

func (j *JSONSignedBurn) Decode() (*SignedBurn, error) {
	account, err := common.HexStrToBytes32(j.Account)
	if err != nil {
		return nil, err
	}
	amount, err := common.ParseU128(j.Amount)
	if err != nil {
		return nil, err
	}
	dest, err := common.DecodeHex(j.Destination)
	if err != nil {
		return nil, err
	}
	sig, err := common.DecodeHex(j.Signature)
	if err != nil {
		return nil, err
	}

	return &SignedBurn{
		Account:     account,
		Nonce:       j.Nonce,
		Destination: dest,
		Amount:      amount,
		Signature:   sig,
	}, nil
}
