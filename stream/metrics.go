package stream

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the prometheus collectors updated by a Stream.
type Metrics struct {
	Ticks        prometheus.Counter
	Subscribers  prometheus.Gauge
	TickDuration prometheus.Histogram
	NetValue     prometheus.Gauge
	PnL          prometheus.Gauge
}

// NewMetrics creates unregistered collectors under namespace.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Number of snapshots computed.",
		}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "subscribers",
			Help:      "Number of attached subscribers.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Time spent computing and delivering a snapshot.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		NetValue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "net_value",
			Help:      "Net value of the last snapshot.",
		}),
		PnL: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pnl",
			Help:      "Profit and loss of the last snapshot.",
		}),
	}
}

// MustRegister registers all collectors with r.
func (m *Metrics) MustRegister(r prometheus.Registerer) {
	r.MustRegister(m.Ticks, m.Subscribers, m.TickDuration, m.NetValue, m.PnL)
}

// the methods below accept a nil receiver, for streams without metrics.

func (m *Metrics) observeTick(seconds, netValue, pnl float64) {
	if m == nil {
		return
	}
	m.Ticks.Inc()
	m.TickDuration.Observe(seconds)
	m.NetValue.Set(netValue)
	m.PnL.Set(pnl)
}

func (m *Metrics) setSubscribers(n int) {
	if m == nil {
		return
	}
	m.Subscribers.Set(float64(n))
}
