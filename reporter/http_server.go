// This is a http type of reporter.
// It takes mint submissions and signed burns, and publishes
// the bridge state on the http routes.

package reporter

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/TEENet-io/renbridge-go/agreement"
	"github.com/TEENet-io/renbridge-go/auth"
	"github.com/TEENet-io/renbridge-go/bridge"
	"github.com/TEENet-io/renbridge-go/common"
	"github.com/TEENet-io/renbridge-go/state"
	"github.com/TEENet-io/renbridge-go/txpool"
)

const (
	ROUTE_HELLO       = "/hello"
	ROUTE_MINT        = "/mint"
	ROUTE_BURN        = "/burn"
	ROUTE_BURN_EVENT  = "/burn/:id"
	ROUTE_BURN_EVENTS = "/burns"
	ROUTE_BALANCE     = "/balance/:account"
	ROUTE_SIGNATURE   = "/signature/:sig"
	ROUTE_METRICS     = "/metrics"
)

const (
	defaultBurnEventsLimit = 100
	maxBurnEventsLimit     = 1000
	shutdownTimeout        = 5 * time.Second
)

// MintSubmitter takes mint claims into the pool of the current round.
type MintSubmitter interface {
	Submit(claim *agreement.MintClaim) (*txpool.AdmissionResult, error)
}

// BalanceReader reads the currency.
type BalanceReader interface {
	FreeBalance(who agreement.AccountId) (*big.Int, error)
	Nonce(who agreement.AccountId) (uint64, error)
}

type HttpReporter struct {
	serverIP   string // listen ip
	serverPort string // listen port

	// upstream
	submitter MintSubmitter
	ctrl      *bridge.Controller
	statedb   *state.StateDB
	balances  BalanceReader
	gatherer  prometheus.Gatherer

	// throttles the submission routes
	limiter *rate.Limiter
}

// NewHttpReporter creates a reporter. rateLimit is the number of
// submissions per second accepted, <= 0 for no limit.
func NewHttpReporter(
	serverIP string,
	serverPort string,
	submitter MintSubmitter,
	ctrl *bridge.Controller,
	balances BalanceReader,
	gatherer prometheus.Gatherer,
	rateLimit float64,
) *HttpReporter {
	limit := rate.Inf
	burst := 0
	if rateLimit > 0 {
		limit = rate.Limit(rateLimit)
		burst = int(rateLimit) + 1
	}

	return &HttpReporter{
		serverIP:   serverIP,
		serverPort: serverPort,
		submitter:  submitter,
		ctrl:       ctrl,
		statedb:    ctrl.StateDB(),
		balances:   balances,
		gatherer:   gatherer,
		limiter:    rate.NewLimiter(limit, burst),
	}
}

// Hook up routes & handlers
func (h *HttpReporter) SetupRouter() *gin.Engine {
	router := gin.Default()

	// Define routes & handlers
	router.GET(ROUTE_HELLO, Hello)
	router.POST(ROUTE_MINT, h.throttle, h.Mint)
	router.POST(ROUTE_BURN, h.throttle, h.Burn)
	router.GET(ROUTE_BURN_EVENT, h.BurnEvent)
	router.GET(ROUTE_BURN_EVENTS, h.BurnEvents)
	router.GET(ROUTE_BALANCE, h.Balance)
	router.GET(ROUTE_SIGNATURE, h.Signature)
	if h.gatherer != nil {
		router.GET(ROUTE_METRICS, gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}

	return router
}

// Start serves until ctx is done, then shuts the server down.
func (h *HttpReporter) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    h.serverIP + ":" + h.serverPort,
		Handler: h.SetupRouter(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", srv.Addr).Info("http reporter listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

// Example route.
func Hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "world",
	})
}

func (h *HttpReporter) throttle(c *gin.Context) {
	if !h.limiter.Allow() {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
		return
	}
	c.Next()
}

// Submit a mint claim to the pool. Applying it happens in a later round.
func (h *HttpReporter) Mint(c *gin.Context) {
	var body JSONMintClaim
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	claim, err := body.Decode()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.submitter.Submit(claim)
	if err != nil && !errors.Is(err, txpool.ErrAlreadyPooled) {
		status := http.StatusInternalServerError
		if errors.Is(err, txpool.ErrPoolFull) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	out := JSONAdmission{Result: res.Result.String()}
	switch res.Result {
	case txpool.Accepted:
		out.Tag = res.Tag()
		out.Priority = res.Priority
		out.Longevity = res.Longevity
		out.Duplicate = errors.Is(err, txpool.ErrAlreadyPooled)
		c.JSON(http.StatusAccepted, out)
	case txpool.RejectedStale:
		c.JSON(http.StatusConflict, out)
	default:
		if res.Err != nil {
			out.Error = res.Err.Error()
		}
		c.JSON(http.StatusBadRequest, out)
	}
}

// Apply a signed burn right away.
func (h *HttpReporter) Burn(c *gin.Context) {
	var body auth.JSONSignedBurn
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req, err := body.Decode()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.ctrl.BurnSigned(req)
	if err != nil {
		c.JSON(burnErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, JSONBurnResult{Id: uint32(id)})
}

func burnErrorStatus(err error) int {
	switch {
	case errors.Is(err, bridge.ErrInvalidBurn):
		return http.StatusBadRequest
	case errors.Is(err, bridge.ErrInvalidBurnSignature):
		return http.StatusUnauthorized
	case errors.Is(err, bridge.ErrBadNonce):
		return http.StatusConflict
	case errors.Is(err, bridge.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, bridge.ErrBurnIdOverflow), errors.Is(err, bridge.ErrSignedBurnOff):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *HttpReporter) BurnEvent(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid burn event id"})
		return
	}

	ev, ok, err := h.statedb.GetBurnEvent(agreement.BurnEventId(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No burn event found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toJSONBurnEvent(agreement.BurnEventId(id), ev)})
}

// List burn events from ?from= on, at most ?limit= of them.
func (h *HttpReporter) BurnEvents(c *gin.Context) {
	from, err := strconv.ParseUint(c.DefaultQuery("from", "0"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultBurnEventsLimit)))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	if limit > maxBurnEventsLimit {
		limit = maxBurnEventsLimit
	}

	ids, events, err := h.statedb.GetBurnEvents(agreement.BurnEventId(from), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	data := make([]*agreement.JSONBurnEvent, len(ids))
	for i := range ids {
		data[i] = toJSONBurnEvent(ids[i], events[i])
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func (h *HttpReporter) Balance(c *gin.Context) {
	account, err := common.HexStrToBytes32(c.Param("account"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account"})
		return
	}

	free, err := h.balances.FreeBalance(account)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	nonce, err := h.balances.Nonce(account)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, JSONBalance{
		Account: agreement.AccountId(account).String(),
		Free:    free.String(),
		Nonce:   nonce,
	})
}

// Whether a mint signature has been consumed.
func (h *HttpReporter) Signature(c *gin.Context) {
	sig, err := common.HexStrToBytes65(c.Param("sig"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	consumed, err := h.statedb.HasSignature(sig)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, JSONSignatureStatus{
		Signature: agreement.Signature(sig).String(),
		Consumed:  consumed,
	})
}
