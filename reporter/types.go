package reporter

import (
	"github.com/TEENet-io/renbridge-go/agreement"
	"github.com/TEENet-io/renbridge-go/common"
)

// JSONMintClaim is the body of POST /mint. Byte fields are hex strings,
// the amount a decimal string.
type JSONMintClaim struct {
	Beneficiary string `json:"beneficiary" binding:"required"`
	PHash       string `json:"p_hash" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	NHash       string `json:"n_hash" binding:"required"`
	Signature   string `json:"signature" binding:"required"`
}

func NewJSONMintClaim(c *agreement.MintClaim) *JSONMintClaim {
	return &JSONMintClaim{
		Beneficiary: c.Beneficiary.String(),
		PHash:       common.Prepend0xPrefix(common.ByteSliceToPureHexStr(c.PHash[:])),
		Amount:      c.Amount.String(),
		NHash:       common.Prepend0xPrefix(common.ByteSliceToPureHexStr(c.NHash[:])),
		Signature:   c.Signature.String(),
	}
}

func (j *JSONMintClaim) Decode() (*agreement.MintClaim, error) {
	beneficiary, err := common.HexStrToBytes32(j.Beneficiary)
	if err != nil {
		return nil, err
	}
	pHash, err := common.HexStrToBytes32(j.PHash)
	if err != nil {
		return nil, err
	}
	nHash, err := common.HexStrToBytes32(j.NHash)
	if err != nil {
		return nil, err
	}
	amount, err := common.ParseU128(j.Amount)
	if err != nil {
		return nil, err
	}
	sig, err := common.HexStrToBytes65(j.Signature)
	if err != nil {
		return nil, err
	}

	return &agreement.MintClaim{
		Beneficiary: beneficiary,
		PHash:       pHash,
		Amount:      amount,
		NHash:       nHash,
		Signature:   sig,
	}, nil
}

type JSONAdmission struct {
	Result    string `json:"result"`
	Tag       string `json:"tag,omitempty"`
	Priority  uint64 `json:"priority,omitempty"`
	Longevity uint64 `json:"longevity,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Error     string `json:"error,omitempty"`
}

type JSONBurnResult struct {
	Id uint32 `json:"id"`
}

type JSONBalance struct {
	Account string `json:"account"`
	Free    string `json:"free"`
	Nonce   uint64 `json:"nonce"`
}

type JSONSignatureStatus struct {
	Signature string `json:"signature"`
	Consumed  bool   `json:"consumed"`
}

func toJSONBurnEvent(id agreement.BurnEventId, ev *agreement.BurnEvent) *agreement.JSONBurnEvent {
	return &agreement.JSONBurnEvent{
		Id:          uint32(id),
		Height:      ev.Height,
		Destination: common.Prepend0xPrefix(common.ByteSliceToPureHexStr(ev.Destination)),
		Amount:      ev.Amount.String(),
	}
}
