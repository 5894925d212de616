// Server = db/state + ledger + bridge controller + mint pool/dispatcher + http reporter.
// All components are configured via envionment variables (strings!).

package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/TEENet-io/renbridge-go/agreement"
	"github.com/TEENet-io/renbridge-go/bridge"
	"github.com/TEENet-io/renbridge-go/common"
	"github.com/TEENet-io/renbridge-go/database"
	"github.com/TEENet-io/renbridge-go/dispatcher"
	"github.com/TEENet-io/renbridge-go/ledger"
	"github.com/TEENet-io/renbridge-go/reporter"
	"github.com/TEENet-io/renbridge-go/state"
	"github.com/TEENet-io/renbridge-go/txpool"
)

// Default params for server.
// More often we don't recommend users to tweak those.
// So we list them here.
const (
	defaultRoundInterval    = 6 * time.Second
	defaultUnsignedPriority = 1 << 20
	defaultMaxPoolSize      = 8192

	// publisher-observer config
	CHANNEL_BUFFER_SIZE = 10
)

// Keep the configuration's fields as "text" as possible.
// Its easier to load it from env vars or a config file.
type BridgeServerConfig struct {
	// bridge side
	TrustedAddress   string // hex, address of the custodian network key
	AssetId          string // hex, 32 bytes
	UnsignedPriority uint64 // 0 = default
	Longevity        uint64 // rounds, 0 = default

	// state side
	DbFilePath string // db file path

	// dispatcher side
	RoundInterval    time.Duration // 0 = default
	MaxMintsPerRound int           // 0 = no limit
	MaxPoolSize      int           // 0 = default

	// Http side
	HttpIp    string  // eg. 0.0.0.0
	HttpPort  string  // eg. 8080
	RateLimit float64 // submissions per second, 0 = no limit
}

// BridgeServer holds the objects that consists of the bridge server.
type BridgeServer struct {
	SqlDB        *sql.DB
	MyStateDb    *state.StateDB
	MyLedger     *ledger.Ledger
	MyPublisher  *bridge.PublisherService
	MyController *bridge.Controller
	MyPool       *txpool.Pool
	MyDispatcher *dispatcher.Dispatcher
	MyReporter   *reporter.HttpReporter
	Registry     *prometheus.Registry

	mintedCh chan agreement.MintedEvent
	burntCh  chan agreement.BurntEvent
}

// Turns the text config into a bridge config.
func (bsc *BridgeServerConfig) bridgeConfig() (*bridge.Config, error) {
	trusted, err := common.HexStrToAddress(bsc.TrustedAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid trusted address %q: %w", bsc.TrustedAddress, err)
	}
	assetId, err := common.HexStrToBytes32(bsc.AssetId)
	if err != nil {
		return nil, fmt.Errorf("invalid asset id %q: %w", bsc.AssetId, err)
	}

	cfg := &bridge.Config{
		TrustedAddress:   trusted,
		AssetId:          assetId,
		UnsignedPriority: bsc.UnsignedPriority,
		Longevity:        bsc.Longevity,
	}
	if cfg.UnsignedPriority == 0 {
		cfg.UnsignedPriority = defaultUnsignedPriority
	}
	if cfg.Longevity == 0 {
		cfg.Longevity = bridge.DefaultLongevity
	}
	return cfg, nil
}

// NewBridgeServer creates a new bridge server. Nothing runs until Run.
func NewBridgeServer(bsc *BridgeServerConfig) (*BridgeServer, error) {
	bridgeCfg, err := bsc.bridgeConfig()
	if err != nil {
		logger.Errorf("invalid bridge config: %v", err)
		return nil, err
	}

	// Create sql db, and related state_db, ledger.
	sqldb, err := database.Open(bsc.DbFilePath)
	if err != nil {
		logger.Errorf("failed to open db file: %v", err)
		return nil, err
	}
	bs := &BridgeServer{SqlDB: sqldb}
	if err := bs.setup(bsc, bridgeCfg); err != nil {
		bs.Close()
		return nil, err
	}
	return bs, nil
}

func (bs *BridgeServer) setup(bsc *BridgeServerConfig, bridgeCfg *bridge.Config) error {
	var err error

	// state_db
	bs.MyStateDb, err = state.NewStateDB(bs.SqlDB)
	if err != nil {
		logger.Errorf("failed to create state db: %v", err)
		return err
	}

	// ledger
	bs.MyLedger, err = ledger.New(bs.SqlDB)
	if err != nil {
		logger.Errorf("failed to create ledger: %v", err)
		return err
	}

	// metrics
	bs.Registry = prometheus.NewRegistry()
	bs.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// controller, with observers logging the events for relayers
	bs.MyPublisher = bridge.NewPublisherService()
	bs.mintedCh = make(chan agreement.MintedEvent, CHANNEL_BUFFER_SIZE)
	bs.burntCh = make(chan agreement.BurntEvent, CHANNEL_BUFFER_SIZE)
	bs.MyPublisher.RegisterMintedObserver(bs.mintedCh)
	bs.MyPublisher.RegisterBurntObserver(bs.burntCh)

	bs.MyController, err = bridge.New(bridgeCfg, bs.MyStateDb, bs.MyLedger, bs.MyPublisher, bridge.NewMetrics(bs.Registry))
	if err != nil {
		logger.Errorf("failed to create bridge controller: %v", err)
		return err
	}
	verifier := bs.MyController.Verifier()
	token := verifier.Token()
	logger.WithFields(logger.Fields{
		"trusted": verifier.TrustedAddress().Hex(),
		"asset":   common.Shorten(common.ByteSliceToPureHexStr(token[:]), 8),
	}).Info("bridge controller ready")

	// mint pool + dispatcher
	maxPoolSize := bsc.MaxPoolSize
	if maxPoolSize == 0 {
		maxPoolSize = defaultMaxPoolSize
	}
	bs.MyPool = txpool.NewPool(txpool.NewValidator(bs.MyController), maxPoolSize)

	roundInterval := bsc.RoundInterval
	if roundInterval == 0 {
		roundInterval = defaultRoundInterval
	}
	bs.MyDispatcher, err = dispatcher.New(&dispatcher.DispatcherConfig{
		IntervalRound:    roundInterval,
		MaxMintsPerRound: bsc.MaxMintsPerRound,
	}, bs.MyController, bs.MyPool)
	if err != nil {
		logger.Errorf("failed to create dispatcher: %v", err)
		return err
	}

	// *** Setup a http server to report status ***
	bs.MyReporter = reporter.NewHttpReporter(
		bsc.HttpIp,
		bsc.HttpPort,
		bs.MyDispatcher,
		bs.MyController,
		bs.MyLedger,
		bs.Registry,
		bsc.RateLimit,
	)

	return nil
}

// Run turns on the dispatcher loop, the http server and the observers,
// and blocks until ctx is cancelled or one of them fails.
func (bs *BridgeServer) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return ignoreCanceled(bs.MyDispatcher.Loop(gctx))
	})
	g.Go(func() error {
		return ignoreCanceled(bs.MyReporter.Start(gctx))
	})
	g.Go(func() error {
		bs.observe(gctx)
		return nil
	})

	return g.Wait()
}

func (bs *BridgeServer) observe(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-bs.mintedCh:
			logger.WithFields(logger.Fields{
				"owner":  ev.Owner.String(),
				"amount": ev.Amount,
			}).Debug("observed minted event")
		case ev := <-bs.burntCh:
			logger.WithFields(logger.Fields{
				"id":     ev.Id,
				"owner":  ev.Owner.String(),
				"dest":   common.ByteSliceToPureHexStr(ev.Destination),
				"amount": ev.Amount,
				"height": ev.Height,
			}).Info("observed burnt event, ready for release")
		}
	}
}

func (bs *BridgeServer) Close() {
	if bs.MyStateDb != nil {
		bs.MyStateDb.Close()
	}
	if bs.MyLedger != nil {
		bs.MyLedger.Close()
	}
	if err := bs.SqlDB.Close(); err != nil {
		logger.Errorf("failed to close db: %v", err)
	}
}

// Create, then start the bridge server and wait.
// Press Ctrl-C to kill the server.
func StartBridgeServerAndWait(bsc *BridgeServerConfig) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up a signal channel to listen for Ctrl-C (SIGINT) or SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Launch a new goroutine to handle the signal
	go func() {
		sig := <-sigCh
		fmt.Printf("Received signal: %v, cancelling context...\n", sig)
		cancel()
	}()

	bs, err := NewBridgeServer(bsc)
	if err != nil {
		logger.Fatalf("failed to create bridge server: %v", err)
		return
	}
	defer bs.Close()

	if err := bs.Run(ctx); err != nil {
		logger.Errorf("bridge server stopped: %v", err)
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
