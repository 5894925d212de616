package dispatcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/TEENet-io/renbridge-go/agreement"
	"github.com/TEENet-io/renbridge-go/bridge"
	"github.com/TEENet-io/renbridge-go/common"
	"github.com/TEENet-io/renbridge-go/state"
	"github.com/TEENet-io/renbridge-go/txpool"
	logger "github.com/sirupsen/logrus"
)

type DispatcherConfig struct {
	// Loop's main interval, one round per tick
	IntervalRound time.Duration

	// Max number of pooled mints applied in one round, 0 for no limit
	MaxMintsPerRound int
}

// Dispatcher drives rounds: it advances the ledger height and applies the
// pooled mints through the controller, which checks each of them again.
type Dispatcher struct {
	cfg     *DispatcherConfig
	statedb *state.StateDB
	ctrl    *bridge.Controller
	pool    *txpool.Pool

	roundLock sync.Mutex // Prevent race condition between rounds and submissions
}

func New(cfg *DispatcherConfig, ctrl *bridge.Controller, pool *txpool.Pool) (*Dispatcher, error) {
	if cfg == nil || cfg.IntervalRound <= 0 {
		return nil, errors.New("dispatcher needs a positive round interval")
	}
	return &Dispatcher{
		cfg:     cfg,
		statedb: ctrl.StateDB(),
		ctrl:    ctrl,
		pool:    pool,
	}, nil
}

// Round is the current ledger height.
func (d *Dispatcher) Round() (uint64, error) {
	return d.statedb.Height()
}

// Submit runs admission for claim in the current round.
func (d *Dispatcher) Submit(claim *agreement.MintClaim) (*txpool.AdmissionResult, error) {
	d.roundLock.Lock()
	defer d.roundLock.Unlock()

	round, err := d.Round()
	if err != nil {
		return nil, err
	}
	return d.pool.Submit(claim, round)
}

// The Big Loop!
func (d *Dispatcher) Loop(ctx context.Context) error {
	logger.Debug("starting dispatcher")
	defer logger.Debug("stopping dispatcher")

	tickerInterval := time.NewTicker(d.cfg.IntervalRound)
	defer tickerInterval.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tickerInterval.C:
			if err := d.procedureRound(ctx); err != nil {
				logger.Errorf("failed to process round: err=%v", err)
			}
		}
	}
}

func (d *Dispatcher) procedureRound(ctx context.Context) error {
	// 0. Aquire the round lock
	// 1. Advance the height
	// 2. Drop expired mints
	// 3. Apply ready mints, each one its own transition
	d.roundLock.Lock()
	defer d.roundLock.Unlock()

	// 1. Advance the height
	round, err := d.Round()
	if err != nil {
		return err
	}
	round++
	if err := d.statedb.SetHeight(round); err != nil {
		return err
	}

	// 2. Drop expired mints
	d.pool.Prune(round)

	// 3. Apply ready mints
	mints := d.pool.Ready(round, d.cfg.MaxMintsPerRound)
	if len(mints) == 0 {
		logger.Debug("no mints to apply")
		return nil
	}

	applied := 0
	for _, mint := range mints {
		if ctx.Err() != nil {
			break
		}
		if err := d.applyMint(mint); err == nil {
			applied++
		}
	}
	logger.WithFields(logger.Fields{
		"round":   round,
		"applied": applied,
		"ready":   len(mints),
	}).Info("round done")

	return nil
}

// A failed mint is dropped, it has to be submitted again.
func (d *Dispatcher) applyMint(mint *agreement.MintClaim) error {
	defer d.pool.Remove(mint.Signature)

	if err := d.ctrl.MintClaim(mint); err != nil {
		logger.WithField("sig", common.Shorten(mint.Signature.String(), 8)).
			Warnf("failed to apply pooled mint: err=%v", err)
		return err
	}
	return nil
}

// RunRound processes one round immediately.
func (d *Dispatcher) RunRound(ctx context.Context) error {
	return d.procedureRound(ctx)
}
