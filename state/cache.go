package state

import (
	"github.com/TEENet-io/renbridge-go/agreement"
	"github.com/ethereum/go-ethereum/common/lru"
)

// signatureCache remembers signatures known to be consumed. Consumed
// signatures are never released, so a hit is always authoritative and a
// miss falls through to the database.
type signatureCache struct {
	cache *lru.Cache[agreement.Signature, struct{}]
}

func newSignatureCache(size int) *signatureCache {
	return &signatureCache{
		cache: lru.NewCache[agreement.Signature, struct{}](size),
	}
}

func (sc *signatureCache) add(sig agreement.Signature) {
	sc.cache.Add(sig, struct{}{})
}

func (sc *signatureCache) has(sig agreement.Signature) bool {
	return sc.cache.Contains(sig)
}
