package txpool

import (
	"errors"
	"sort"
	"sync"

	"github.com/TEENet-io/renbridge-go/agreement"
	"github.com/TEENet-io/renbridge-go/common"
	logger "github.com/sirupsen/logrus"
)

var (
	ErrAlreadyPooled = errors.New("a mint with the same signature is already pooled")
	ErrPoolFull      = errors.New("mint pool is full")
)

type pooled struct {
	claim      *agreement.MintClaim
	priority   uint64
	admittedAt uint64 // round
	longevity  uint64
	seq        uint64 // arrival order
}

// valid for rounds [admittedAt, admittedAt+longevity)
func (p *pooled) expired(round uint64) bool {
	return round >= p.admittedAt && round-p.admittedAt >= p.longevity
}

// Pool holds admitted mints until they are applied or expire. Mints are
// keyed by the tag they provide, so resubmissions of a pooled signature
// collapse into the pooled one.
type Pool struct {
	validator *Validator
	maxSize   int

	mu      sync.Mutex
	entries map[agreement.Signature]*pooled
	seq     uint64
}

func NewPool(validator *Validator, maxSize int) *Pool {
	return &Pool{
		validator: validator,
		maxSize:   maxSize,
		entries:   make(map[agreement.Signature]*pooled),
	}
}

// Submit runs admission on claim and pools it if accepted. A rejected
// claim is not an error: the result says why.
func (p *Pool) Submit(claim *agreement.MintClaim, round uint64) (*AdmissionResult, error) {
	res, err := p.validator.Admit(claim)
	if err != nil {
		return nil, err
	}
	if res.Result != Accepted {
		logger.WithFields(logger.Fields{
			"sig":    common.Shorten(claim.Signature.String(), 8),
			"result": res.Result,
		}).Debug("mint submission rejected")
		return res, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.entries[res.Provides]; ok {
		return res, ErrAlreadyPooled
	}
	if p.maxSize > 0 && len(p.entries) >= p.maxSize {
		return res, ErrPoolFull
	}

	p.seq++
	p.entries[res.Provides] = &pooled{
		claim:      claim,
		priority:   res.Priority,
		admittedAt: round,
		longevity:  res.Longevity,
		seq:        p.seq,
	}
	logger.WithField("tag", common.Shorten(res.Tag(), 8)).Debug("mint pooled")
	return res, nil
}

// Ready returns up to max unexpired claims by priority, then arrival.
// max <= 0 means no limit. The claims stay pooled.
func (p *Pool) Ready(round uint64, max int) []*agreement.MintClaim {
	p.mu.Lock()
	defer p.mu.Unlock()

	ready := make([]*pooled, 0, len(p.entries))
	for _, e := range p.entries {
		if !e.expired(round) {
			ready = append(ready, e)
		}
	}
	sort.Slice(ready, func(i, j int) bool {
		if ready[i].priority != ready[j].priority {
			return ready[i].priority > ready[j].priority
		}
		return ready[i].seq < ready[j].seq
	})
	if max > 0 && len(ready) > max {
		ready = ready[:max]
	}

	claims := make([]*agreement.MintClaim, len(ready))
	for i, e := range ready {
		claims[i] = e.claim
	}
	return claims
}

// Prune drops claims whose admission has expired at round and returns how
// many were dropped. They have to be submitted again.
func (p *Pool) Prune(round uint64) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for sig, e := range p.entries {
		if e.expired(round) {
			delete(p.entries, sig)
			n++
		}
	}
	if n > 0 {
		logger.WithField("round", round).Debugf("pruned %d expired mints", n)
	}
	return n
}

func (p *Pool) Remove(sig agreement.Signature) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.entries, sig.Canonical())
}

func (p *Pool) Has(sig agreement.Signature) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.entries[sig.Canonical()]
	return ok
}

func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.entries)
}
