package txpool

import (
	"errors"

	"github.com/TEENet-io/renbridge-go/agreement"
	"github.com/TEENet-io/renbridge-go/bridge"
	"github.com/TEENet-io/renbridge-go/common"
	"github.com/TEENet-io/renbridge-go/renvm"
	logger "github.com/sirupsen/logrus"
)

// Prefix of the tags admitted mints provide.
const TagPrefix = "renvm-bridge"

type Result int

const (
	Accepted Result = iota
	RejectedStale
	RejectedBadProof
)

func (r Result) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case RejectedStale:
		return "stale"
	case RejectedBadProof:
		return "bad_proof"
	default:
		return "unknown"
	}
}

// AdmissionResult is the decision on a submitted mint. Priority, Provides,
// Longevity and Propagate are only set if Accepted.
type AdmissionResult struct {
	Result    Result
	Priority  uint64
	Provides  agreement.Signature
	Longevity uint64
	Propagate bool

	// cause of a RejectedBadProof
	Err error
}

func (r *AdmissionResult) Tag() string {
	return TagPrefix + "/" + common.ByteSliceToPureHexStr(r.Provides[:])
}

// ReplayGuard answers whether a signature has been consumed.
type ReplayGuard interface {
	HasSignature(sig agreement.Signature) (bool, error)
}

// Validator decides whether a mint submission may enter the pool. It only
// reads state and can be called concurrently without coordination.
type Validator struct {
	guard     ReplayGuard
	verifier  *renvm.Verifier
	priority  uint64
	longevity uint64
	metrics   *bridge.Metrics
}

func NewValidator(ctrl *bridge.Controller) *Validator {
	cfg := ctrl.Config()
	return &Validator{
		guard:     ctrl.StateDB(),
		verifier:  ctrl.Verifier(),
		priority:  cfg.UnsignedPriority,
		longevity: cfg.Longevity,
		metrics:   ctrl.Metrics(),
	}
}

// Admit checks freshness first and the signature second. The error is only
// set if the replay guard could not be read, in which case there is no
// decision.
func (v *Validator) Admit(claim *agreement.MintClaim) (*AdmissionResult, error) {
	if claim == nil {
		return nil, errors.New("nil mint claim")
	}

	consumed, err := v.guard.HasSignature(claim.Signature)
	if err != nil {
		logger.Errorf("failed to read replay guard: err=%v", err)
		return nil, err
	}
	if consumed {
		return v.decide(&AdmissionResult{Result: RejectedStale}), nil
	}

	if err := v.verifier.VerifyClaim(claim); err != nil {
		return v.decide(&AdmissionResult{Result: RejectedBadProof, Err: err}), nil
	}

	return v.decide(&AdmissionResult{
		Result:    Accepted,
		Priority:  v.priority,
		Provides:  claim.Signature.Canonical(),
		Longevity: v.longevity,
		Propagate: true,
	}), nil
}

func (v *Validator) decide(res *AdmissionResult) *AdmissionResult {
	v.metrics.IncAdmission(res.Result.String())
	return res
}
