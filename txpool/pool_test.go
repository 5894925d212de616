package txpool

import (
	"math/big"
	"testing"

	"github.com/TEENet-io/renbridge-go/bridge"
	"github.com/TEENet-io/renbridge-go/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolSubmitAndReady(t *testing.T) {
	sim, close := newTestSimBridge(t)
	defer close()

	pool := NewPool(NewValidator(sim.Controller), 0)

	c1, err := sim.NewClaim(common.RandAccountId(), big.NewInt(1))
	require.NoError(t, err)
	c2, err := sim.NewClaim(common.RandAccountId(), big.NewInt(2))
	require.NoError(t, err)

	res, err := pool.Submit(c1, 0)
	assert.NoError(t, err)
	assert.Equal(t, Accepted, res.Result)
	_, err = pool.Submit(c2, 1)
	assert.NoError(t, err)

	// duplicates collapse
	_, err = pool.Submit(c1, 1)
	assert.ErrorIs(t, err, ErrAlreadyPooled)
	assert.Equal(t, 2, pool.Len())

	ready := pool.Ready(1, 0)
	require.Len(t, ready, 2)
	assert.Equal(t, c1, ready[0])
	assert.Equal(t, c2, ready[1])

	ready = pool.Ready(1, 1)
	require.Len(t, ready, 1)
	assert.Equal(t, c1, ready[0])

	pool.Remove(c1.Signature)
	assert.False(t, pool.Has(c1.Signature))
	assert.True(t, pool.Has(c2.Signature))
}

func TestPoolRecoveryIdTwinCollapses(t *testing.T) {
	sim, close := newTestSimBridge(t)
	defer close()

	pool := NewPool(NewValidator(sim.Controller), 0)
	claim, err := sim.NewClaim(common.RandAccountId(), big.NewInt(1))
	require.NoError(t, err)
	twin := *claim
	twin.Signature[64] += 27

	res, err := pool.Submit(&twin, 0)
	assert.NoError(t, err)
	assert.Equal(t, Accepted, res.Result)
	assert.Equal(t, claim.Signature, res.Provides)

	_, err = pool.Submit(claim, 0)
	assert.ErrorIs(t, err, ErrAlreadyPooled)
	assert.Equal(t, 1, pool.Len())
	assert.True(t, pool.Has(claim.Signature))

	pool.Remove(claim.Signature)
	assert.False(t, pool.Has(twin.Signature))
}

func TestPoolRejectsWithoutPooling(t *testing.T) {
	sim, close := newTestSimBridge(t)
	defer close()

	pool := NewPool(NewValidator(sim.Controller), 0)
	claim, err := sim.NewClaim(common.RandAccountId(), big.NewInt(1))
	require.NoError(t, err)
	claim.Amount = big.NewInt(5)

	res, err := pool.Submit(claim, 0)
	assert.NoError(t, err)
	assert.Equal(t, RejectedBadProof, res.Result)
	assert.Equal(t, 0, pool.Len())
}

func TestPoolFull(t *testing.T) {
	sim, close := newTestSimBridge(t)
	defer close()

	pool := NewPool(NewValidator(sim.Controller), 1)
	c1, err := sim.NewClaim(common.RandAccountId(), big.NewInt(1))
	require.NoError(t, err)
	c2, err := sim.NewClaim(common.RandAccountId(), big.NewInt(1))
	require.NoError(t, err)

	_, err = pool.Submit(c1, 0)
	assert.NoError(t, err)
	_, err = pool.Submit(c2, 0)
	assert.ErrorIs(t, err, ErrPoolFull)
}

func TestPoolExpiry(t *testing.T) {
	sim, close := newTestSimBridge(t)
	defer close()

	pool := NewPool(NewValidator(sim.Controller), 0)
	claim, err := sim.NewClaim(common.RandAccountId(), big.NewInt(1))
	require.NoError(t, err)

	_, err = pool.Submit(claim, 10)
	require.NoError(t, err)

	last := uint64(10 + bridge.DefaultLongevity - 1)
	assert.Len(t, pool.Ready(last, 0), 1)
	assert.Equal(t, 0, pool.Prune(last))
	assert.Len(t, pool.Ready(last+1, 0), 0)
	assert.Equal(t, 1, pool.Prune(last+1))
	assert.Equal(t, 0, pool.Len())

	// the signature got consumed meanwhile, so re-admission is stale
	require.NoError(t, sim.Controller.MintClaim(claim))
	res, err := pool.Submit(claim, last+1)
	assert.NoError(t, err)
	assert.Equal(t, RejectedStale, res.Result)
	assert.Equal(t, 0, pool.Len())
}
