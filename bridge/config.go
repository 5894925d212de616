package bridge

import (
	"errors"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

// Rounds an admitted mint stays eligible before it must be admitted again.
const DefaultLongevity = 64

var ErrInvalidConfig = errors.New("invalid bridge config")

// Config is fixed at deployment. The controller keeps its own copy, so
// changing a Config after New has no effect.
type Config struct {
	// Address of the custodian network's signing key
	TrustedAddress ethcommon.Address

	// Identifies the wrapped asset, signed as the token field of a mint
	AssetId [32]byte

	// Base priority given to admitted mint submissions
	UnsignedPriority uint64

	// Number of rounds an admission decision remains valid
	Longevity uint64
}

func (cfg *Config) Validate() error {
	if cfg.TrustedAddress == (ethcommon.Address{}) {
		return errors.Join(ErrInvalidConfig, errors.New("trusted address is zero"))
	}
	if cfg.Longevity == 0 {
		return errors.Join(ErrInvalidConfig, errors.New("longevity is zero"))
	}
	return nil
}
