package bridge

import (
	"math/big"
	"testing"
	"time"

	"github.com/TEENet-io/renbridge-go/agreement"
	"github.com/TEENet-io/renbridge-go/common"
	"github.com/stretchr/testify/assert"
)

func TestPublisherFullChannel(t *testing.T) {
	p := NewPublisherService()

	// unbuffered observer, nobody reading yet
	ch := make(chan agreement.BurntEvent)
	p.RegisterBurntObserver(ch)

	done := make(chan struct{})
	go func() {
		p.NotifyBurnt(agreement.BurntEvent{Id: 3, Owner: common.RandAccountId(), Amount: big.NewInt(1)})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("notify blocked on a full observer")
	}

	select {
	case ev := <-ch:
		assert.Equal(t, agreement.BurnEventId(3), ev.Id)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}
