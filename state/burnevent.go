package state

import (
	"math"
	"math/big"

	"github.com/TEENet-io/renbridge-go/agreement"
	"github.com/TEENet-io/renbridge-go/common"
)

type sqlBurnEvent struct {
	Height      int64
	Destination []byte
	Amount      string
}

func encodeBurnEvent(ev *agreement.BurnEvent) (*sqlBurnEvent, error) {
	if ev == nil || len(ev.Destination) == 0 || !common.IsU128(ev.Amount) || ev.Height > math.MaxInt64 {
		return nil, ErrBurnEventInvalid
	}

	return &sqlBurnEvent{
		Height:      int64(ev.Height),
		Destination: append([]byte{}, ev.Destination...),
		Amount:      ev.Amount.String(),
	}, nil
}

func (s *sqlBurnEvent) decode() (*agreement.BurnEvent, error) {
	amount, ok := new(big.Int).SetString(s.Amount, 10)
	if !ok || s.Height < 0 {
		return nil, ErrStoredBurnEventError
	}

	return &agreement.BurnEvent{
		Height:      uint64(s.Height),
		Destination: s.Destination,
		Amount:      amount,
	}, nil
}
