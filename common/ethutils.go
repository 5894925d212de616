package common

import (
	"crypto/rand"

	"github.com/TEENet-io/renbridge-go/agreement"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

func RandEthAddress() ethcommon.Address {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return ethcommon.Address{}
	}
	return ethcommon.BytesToAddress(b[:])
}

func RandAccountId() agreement.AccountId {
	return agreement.AccountId(RandBytes32())
}

func RandSignature() agreement.Signature {
	var sig agreement.Signature
	copy(sig[:], RandBytes(65))
	sig[64] &= 1
	return sig
}
