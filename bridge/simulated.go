package bridge

import (
	"database/sql"
	"math/big"

	"github.com/TEENet-io/renbridge-go/agreement"
	"github.com/TEENet-io/renbridge-go/common"
	"github.com/TEENet-io/renbridge-go/database"
	"github.com/TEENet-io/renbridge-go/ledger"
	"github.com/TEENet-io/renbridge-go/multisig"
	"github.com/TEENet-io/renbridge-go/state"
	"github.com/prometheus/client_golang/prometheus"
)

// SimBridge is a controller over an in-memory database whose trusted
// address belongs to a local custodian key. Used by tests.
type SimBridge struct {
	DB         *sql.DB
	StateDB    *state.StateDB
	Ledger     *ledger.Ledger
	Custodian  *multisig.LocalEcdsaSigner
	Publisher  *PublisherService
	Registry   *prometheus.Registry
	Controller *Controller
}

func NewSimBridge() (*SimBridge, error) {
	db, err := database.Open(database.MemoryDSN)
	if err != nil {
		return nil, err
	}

	sim := &SimBridge{DB: db}
	if err := sim.init(); err != nil {
		sim.Close()
		return nil, err
	}
	return sim, nil
}

func (sim *SimBridge) init() error {
	var err error
	if sim.StateDB, err = state.NewStateDB(sim.DB); err != nil {
		return err
	}
	if sim.Ledger, err = ledger.New(sim.DB); err != nil {
		return err
	}
	if sim.Custodian, err = multisig.NewRandomLocalEcdsaSigner(); err != nil {
		return err
	}

	cfg := &Config{
		TrustedAddress:   sim.Custodian.Address(),
		AssetId:          common.RandBytes32(),
		UnsignedPriority: 100,
		Longevity:        DefaultLongevity,
	}
	sim.Publisher = NewPublisherService()
	sim.Registry = prometheus.NewRegistry()
	sim.Controller, err = New(cfg, sim.StateDB, sim.Ledger, sim.Publisher, NewMetrics(sim.Registry))
	return err
}

func (sim *SimBridge) Close() {
	if sim.StateDB != nil {
		sim.StateDB.Close()
	}
	if sim.Ledger != nil {
		sim.Ledger.Close()
	}
	sim.DB.Close()
}

// NewClaim returns a custodian-signed claim with random hashes.
func (sim *SimBridge) NewClaim(who agreement.AccountId, amount *big.Int) (*agreement.MintClaim, error) {
	return sim.Custodian.NewMintClaim(who, common.RandBytes32(), amount, sim.Controller.Config().AssetId, common.RandBytes32())
}

// Fund mints amount to who with a fresh claim.
func (sim *SimBridge) Fund(who agreement.AccountId, amount *big.Int) error {
	claim, err := sim.NewClaim(who, amount)
	if err != nil {
		return err
	}
	return sim.Controller.MintClaim(claim)
}
