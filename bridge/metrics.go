package bridge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "renbridge"

// Metrics counts bridge activity. A nil *Metrics records nothing.
type Metrics struct {
	minted     prometheus.Counter
	burnt      prometheus.Counter
	rejected   *prometheus.CounterVec
	admissions *prometheus.CounterVec
	nextBurnId prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		minted: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "minted_total",
			Help:      "Number of applied mints.",
		}),
		burnt: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "burnt_total",
			Help:      "Number of recorded burns.",
		}),
		rejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rejected_total",
			Help:      "Number of failed mint and burn transitions by reason.",
		}, []string{"op", "reason"}),
		admissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "admissions_total",
			Help:      "Admission decisions on submitted mints.",
		}, []string{"result"}),
		nextBurnId: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "next_burn_event_id",
			Help:      "Id the next burn event will get.",
		}),
	}
}

func (m *Metrics) incMinted() {
	if m != nil {
		m.minted.Inc()
	}
}

func (m *Metrics) incBurnt(id uint32) {
	if m != nil {
		m.burnt.Inc()
		m.nextBurnId.Set(float64(id) + 1)
	}
}

func (m *Metrics) incRejected(op string, err error) {
	if m != nil {
		m.rejected.WithLabelValues(op, rejectionReason(err)).Inc()
	}
}

// IncAdmission counts one admission decision.
func (m *Metrics) IncAdmission(result string) {
	if m != nil {
		m.admissions.WithLabelValues(result).Inc()
	}
}
