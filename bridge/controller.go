package bridge

import (
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/TEENet-io/renbridge-go/agreement"
	"github.com/TEENet-io/renbridge-go/auth"
	"github.com/TEENet-io/renbridge-go/common"
	"github.com/TEENet-io/renbridge-go/renvm"
	"github.com/TEENet-io/renbridge-go/state"
	logger "github.com/sirupsen/logrus"
)

// NonceKeeper is implemented by currencies that also track burn nonces.
type NonceKeeper interface {
	NonceTx(tx *sql.Tx, who agreement.AccountId) (uint64, error)
	IncNonceTx(tx *sql.Tx, who agreement.AccountId) error
}

// Controller applies mints and burns. Every call is one transition: it
// either commits all of its effects or none, and transitions never
// interleave.
type Controller struct {
	cfg       Config
	verifier  *renvm.Verifier
	statedb   *state.StateDB
	currency  agreement.Currency
	nonces    NonceKeeper // nil if the currency keeps no nonces
	publisher *PublisherService
	metrics   *Metrics

	mu sync.Mutex // one transition at a time
}

// New creates a controller. Signed burns are available if currency also
// implements NonceKeeper. publisher and metrics may be nil.
func New(
	cfg *Config,
	statedb *state.StateDB,
	currency agreement.Currency,
	publisher *PublisherService,
	metrics *Metrics,
) (*Controller, error) {
	if cfg == nil || statedb == nil || currency == nil {
		return nil, errors.New("bridge controller needs config, statedb and currency")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if publisher == nil {
		publisher = NewPublisherService()
	}

	c := &Controller{
		cfg:       *cfg,
		verifier:  renvm.NewVerifier(cfg.TrustedAddress, cfg.AssetId),
		statedb:   statedb,
		currency:  currency,
		publisher: publisher,
		metrics:   metrics,
	}
	if nk, ok := currency.(NonceKeeper); ok {
		c.nonces = nk
	}

	return c, nil
}

func (c *Controller) Config() Config {
	return c.cfg
}

// Verifier is the signature check used by Mint, exposed for admission.
func (c *Controller) Verifier() *renvm.Verifier {
	return c.verifier
}

func (c *Controller) StateDB() *state.StateDB {
	return c.statedb
}

func (c *Controller) Metrics() *Metrics {
	return c.metrics
}

// Mint credits amount to who if sig is a custodian signature over the mint
// message that has not been consumed before. On success the signature is
// consumed and a MintedEvent is published.
func (c *Controller) Mint(who agreement.AccountId, pHash [32]byte, amount *big.Int, nHash [32]byte, sig agreement.Signature) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mint(who, pHash, amount, nHash, sig); err != nil {
		c.metrics.incRejected("mint", err)
		logger.WithFields(logger.Fields{
			"who":    who.String(),
			"amount": amount,
			"sig":    common.Shorten(sig.String(), 8),
		}).Warnf("mint rejected: %v", err)
		return err
	}

	c.metrics.incMinted()
	logger.WithFields(logger.Fields{
		"who":    who.String(),
		"amount": amount,
		"pHash":  common.Shorten(fmt.Sprintf("%x", pHash), 8),
		"nHash":  common.Shorten(fmt.Sprintf("%x", nHash), 8),
	}).Info("minted")

	c.publisher.NotifyMinted(agreement.MintedEvent{
		Owner:     who,
		Amount:    common.BigIntClone(amount),
		Signature: sig,
	})
	return nil
}

func (c *Controller) MintClaim(claim *agreement.MintClaim) error {
	return c.Mint(claim.Beneficiary, claim.PHash, claim.Amount, claim.NHash, claim.Signature)
}

func (c *Controller) mint(who agreement.AccountId, pHash [32]byte, amount *big.Int, nHash [32]byte, sig agreement.Signature) error {
	tr, err := c.statedb.Begin()
	if err != nil {
		return err
	}
	defer tr.Rollback()

	// 1. Replay check
	consumed, err := tr.HasSignature(sig)
	if err != nil {
		return err
	}
	if consumed {
		return ErrSignatureReplayed
	}

	// 2. Signature check
	if err := c.verifier.Verify(pHash, amount, who.Bytes(), nHash, sig); err != nil {
		return err
	}

	// 3. Deposit and consume the signature, together
	if err := c.currency.Deposit(tr.Tx(), who, amount); err != nil {
		return fmt.Errorf("failed to deposit: %w", err)
	}
	if err := tr.RecordSignature(sig); err != nil {
		return err
	}

	return tr.Commit()
}

// Burn takes amount from sender and records a burn event for release of the
// locked asset to destination on the foreign chain. The caller is
// responsible for having authenticated sender.
func (c *Controller) Burn(sender agreement.AccountId, destination []byte, amount *big.Int) (agreement.BurnEventId, error) {
	if err := checkBurn(destination, amount); err != nil {
		c.metrics.incRejected("burn", err)
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.commitBurn(sender, destination, amount, nil)
}

// BurnSigned is Burn for a request signed by the sender's own key. The
// request nonce must equal the account's nonce, which is advanced in the
// same transition.
func (c *Controller) BurnSigned(req *auth.SignedBurn) (agreement.BurnEventId, error) {
	if c.nonces == nil {
		return 0, ErrSignedBurnOff
	}
	if err := checkBurn(req.Destination, req.Amount); err != nil {
		c.metrics.incRejected("burn", err)
		return 0, err
	}
	if err := req.Verify(); err != nil {
		c.metrics.incRejected("burn", err)
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.commitBurn(req.Account, req.Destination, req.Amount, func(tx *sql.Tx) error {
		nonce, err := c.nonces.NonceTx(tx, req.Account)
		if err != nil {
			return err
		}
		if nonce != req.Nonce {
			return fmt.Errorf("%w: expected %d, got %d", ErrBadNonce, nonce, req.Nonce)
		}
		return c.nonces.IncNonceTx(tx, req.Account)
	})
}

func (c *Controller) commitBurn(
	sender agreement.AccountId,
	destination []byte,
	amount *big.Int,
	precheck func(tx *sql.Tx) error,
) (agreement.BurnEventId, error) {
	id, ev, err := c.burn(sender, destination, amount, precheck)
	if err != nil {
		c.metrics.incRejected("burn", err)
		entry := logger.WithFields(logger.Fields{
			"sender": sender.String(),
			"amount": amount,
		})
		if errors.Is(err, ErrBurnIdOverflow) {
			entry.Error("burn event id space exhausted, no further burns possible")
		} else {
			entry.Warnf("burn rejected: %v", err)
		}
		return 0, err
	}

	c.metrics.incBurnt(uint32(id))
	logger.WithFields(logger.Fields{
		"id":     id,
		"sender": sender.String(),
		"dest":   common.Shorten(common.ByteSliceToPureHexStr(destination), 8),
		"amount": amount,
		"height": ev.Height,
	}).Info("burnt")

	c.publisher.NotifyBurnt(agreement.BurntEvent{
		Id:          id,
		Owner:       sender,
		Destination: ev.Destination,
		Amount:      common.BigIntClone(ev.Amount),
		Height:      ev.Height,
	})
	return id, nil
}

func (c *Controller) burn(
	sender agreement.AccountId,
	destination []byte,
	amount *big.Int,
	precheck func(tx *sql.Tx) error,
) (agreement.BurnEventId, *agreement.BurnEvent, error) {
	tr, err := c.statedb.Begin()
	if err != nil {
		return 0, nil, err
	}
	defer tr.Rollback()

	if precheck != nil {
		if err := precheck(tr.Tx()); err != nil {
			return 0, nil, err
		}
	}

	// 1. Withdraw
	if err := c.currency.Withdraw(tr.Tx(), sender, amount); err != nil {
		return 0, nil, fmt.Errorf("failed to withdraw: %w", err)
	}

	// 2. Allocate id
	id, err := tr.AllocateBurnId()
	if err != nil {
		return 0, nil, err
	}

	// 3. Record event
	height, err := tr.Height()
	if err != nil {
		return 0, nil, err
	}
	ev := &agreement.BurnEvent{
		Height:      height,
		Destination: append([]byte{}, destination...),
		Amount:      common.BigIntClone(amount),
	}
	if err := tr.RecordBurnEvent(id, ev); err != nil {
		return 0, nil, err
	}

	if err := tr.Commit(); err != nil {
		return 0, nil, err
	}
	return id, ev, nil
}

func checkBurn(destination []byte, amount *big.Int) error {
	if len(destination) == 0 {
		return fmt.Errorf("%w: empty destination", ErrInvalidBurn)
	}
	if !common.IsU128(amount) || amount.Sign() == 0 {
		return fmt.Errorf("%w: amount %v", ErrInvalidBurn, amount)
	}
	return nil
}
