package common

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

func IsValidBtcAddress(address string, cfg *chaincfg.Params) bool {
	if _, err := btcutil.DecodeAddress(address, cfg); err != nil {
		return false
	}

	return true
}

// BtcChainParams maps "mainnet", "testnet" and "regtest" to chain params.
// Anything else falls back to regtest.
func BtcChainParams(name string) *chaincfg.Params {
	switch name {
	case "mainnet":
		return &chaincfg.MainNetParams
	case "testnet":
		return &chaincfg.TestNet3Params
	default:
		return &chaincfg.RegressionNetParams
	}
}

// BtcBurnDestination validates a BTC address and returns the bytes to be
// recorded as the burn destination, which is the address string itself.
func BtcBurnDestination(address string, cfg *chaincfg.Params) ([]byte, bool) {
	if !IsValidBtcAddress(address, cfg) {
		return nil, false
	}
	return []byte(address), true
}
