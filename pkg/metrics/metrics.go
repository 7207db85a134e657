// Package metrics exports the client's connection statistics and
// operation outcomes as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the metrics set.
type Config struct {
	// Namespace is the metrics namespace (default: "mirage").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for operation duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// Option configures the metrics set.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// Set holds the client's Prometheus metrics.
type Set struct {
	opsTotal    *prometheus.CounterVec
	opDuration  *prometheus.HistogramVec
	packetsSent prometheus.Counter
	packetsRecv prometheus.Counter
	packetsLost prometheus.Counter
	msgsSent    prometheus.Counter
	msgsRecv    prometheus.Counter
	reconnects  prometheus.Counter
	online      prometheus.Gauge
}

// New creates the metric set and registers it.
func New(opts ...Option) *Set {
	config := Config{
		Namespace: "mirage",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Set{
		opsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "operations_total",
			Help:        "Total operations submitted, by command and outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"command", "outcome"}),

		opDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "operation_duration_seconds",
			Help:        "Operation round-trip duration in seconds",
			Buckets:     config.Buckets,
			ConstLabels: config.ConstLabels,
		}, []string{"command"}),

		packetsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "packets_sent_total",
			Help:        "Total packets written to the gateway",
			ConstLabels: config.ConstLabels,
		}),

		packetsRecv: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "packets_received_total",
			Help:        "Total packets received from the gateway",
			ConstLabels: config.ConstLabels,
		}),

		packetsLost: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "packets_lost_total",
			Help:        "Total packets that timed out unanswered",
			ConstLabels: config.ConstLabels,
		}),

		msgsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "messages_sent_total",
			Help:        "Total chat messages sent",
			ConstLabels: config.ConstLabels,
		}),

		msgsRecv: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "messages_received_total",
			Help:        "Total chat messages received",
			ConstLabels: config.ConstLabels,
		}),

		reconnects: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "reconnects_total",
			Help:        "Total connection losses",
			ConstLabels: config.ConstLabels,
		}),

		online: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "online",
			Help:        "1 while the session is online",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// ObserveOp records one completed operation.
func (s *Set) ObserveOp(command, outcome string, elapsed time.Duration) {
	if s == nil {
		return
	}
	s.opsTotal.WithLabelValues(command, outcome).Inc()
	s.opDuration.WithLabelValues(command).Observe(elapsed.Seconds())
}

// PacketSent records one written packet.
func (s *Set) PacketSent() {
	if s != nil {
		s.packetsSent.Inc()
	}
}

// PacketRecv records one received packet.
func (s *Set) PacketRecv() {
	if s != nil {
		s.packetsRecv.Inc()
	}
}

// PacketLost records one unanswered packet.
func (s *Set) PacketLost() {
	if s != nil {
		s.packetsLost.Inc()
	}
}

// MsgSent records one sent chat message.
func (s *Set) MsgSent() {
	if s != nil {
		s.msgsSent.Inc()
	}
}

// MsgRecv records one received chat message.
func (s *Set) MsgRecv() {
	if s != nil {
		s.msgsRecv.Inc()
	}
}

// Reconnect records one connection loss.
func (s *Set) Reconnect() {
	if s != nil {
		s.reconnects.Inc()
	}
}

// SetOnline sets the online gauge.
func (s *Set) SetOnline(online bool) {
	if s == nil {
		return
	}
	if online {
		s.online.Set(1)
	} else {
		s.online.Set(0)
	}
}
