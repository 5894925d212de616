package bridge

import (
	"sync"

	"github.com/TEENet-io/renbridge-go/agreement"
)

// PublisherService is a concurrent-safe service that
// could "Notify" channels of observers.
// Please "Register" observers via RegisterXXXObserver before Notify.
type PublisherService struct {
	MintedObservers []chan agreement.MintedEvent
	BurntObservers  []chan agreement.BurntEvent
	mu              sync.Mutex
}

func NewPublisherService() *PublisherService {
	return &PublisherService{
		MintedObservers: make([]chan agreement.MintedEvent, 0),
		BurntObservers:  make([]chan agreement.BurntEvent, 0),
	}
}

func (m *PublisherService) RegisterMintedObserver(observer chan agreement.MintedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.MintedObservers = append(m.MintedObservers, observer)
}

func (m *PublisherService) RegisterBurntObserver(observer chan agreement.BurntEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.BurntObservers = append(m.BurntObservers, observer)
}

// Notify "minted" to observers.
func (m *PublisherService) NotifyMinted(ev agreement.MintedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, observer := range m.MintedObservers {
		select {
		case observer <- ev:
		default:
			// Handle the case where the observer's channel is full
			go func(obs chan agreement.MintedEvent) {
				obs <- ev
			}(observer)
		}
	}
}

// Notify "burnt" to observers.
func (m *PublisherService) NotifyBurnt(ev agreement.BurntEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, observer := range m.BurntObservers {
		select {
		case observer <- ev:
		default:
			go func(obs chan agreement.BurntEvent) {
				obs <- ev
			}(observer)
		}
	}
}
