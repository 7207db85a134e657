package mirage

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mirageim/mirage-go/pkg/transport"
)

// Platform selects the login negotiation profile.
type Platform int

const (
	PlatformPhone Platform = iota + 1
	PlatformPad
	PlatformWatch
	PlatformMac
	PlatformPC
)

// Config holds the effective client configuration. Construct it
// through CreateClient's options; the zero value is filled with
// defaults there.
type Config struct {
	// Logger receives structured client logging. Defaults to
	// slog.Default, or to a stderr text handler when LogLevel is set.
	Logger *slog.Logger

	// LogLevel filters the default logger; ignored when Logger is
	// set explicitly.
	LogLevel slog.Leveler

	// Platform is the login negotiation profile (default
	// PlatformPhone).
	Platform Platform

	// DataDir is the storage directory for per-account device and
	// session artifacts (default "data").
	DataDir string

	// RemoteAddr overrides the gateway address; empty uses the
	// built-in default endpoint.
	RemoteAddr string

	// ReconnInterval is the automatic re-login interval in seconds
	// after a network loss (default 5). Zero disables automatic
	// reconnection: the client stays in the reconnecting state until
	// Login is called again.
	ReconnInterval int

	// KickoffCounter attempts an automatic counter-login when the
	// account is displaced by a login elsewhere.
	KickoffCounter bool

	// IgnoreSelf drops the account's own group messages instead of
	// dispatching them (default true).
	IgnoreSelf bool

	// Resend enables the degraded sharded fallback when the server
	// throttles or rejects a full-size outbound message (default
	// true).
	Resend bool

	// OpTimeout bounds each round-trip operation. Zero uses the
	// correlator default.
	OpTimeout time.Duration

	// HeartbeatInterval overrides the heartbeat period. Zero uses the
	// session default.
	HeartbeatInterval time.Duration

	// MetricsRegistry, when non-nil, enables Prometheus metrics
	// registered against it.
	MetricsRegistry prometheus.Registerer

	// EnableTracing wraps each round-trip operation in an
	// OpenTelemetry span.
	EnableTracing bool

	// Dialer overrides the transport dialer; nil uses the WebSocket
	// gateway dialer. Tests inject an in-memory pipe here.
	Dialer transport.Dialer
}

// ConfigSnapshot is the read-only configuration view reported by
// GetStatus.
type ConfigSnapshot struct {
	Platform       Platform `json:"platform"`
	DataDir        string   `json:"data_dir"`
	RemoteAddr     string   `json:"remote_addr,omitempty"`
	ReconnInterval int      `json:"reconn_interval"`
	KickoffCounter bool     `json:"kickoff_counter"`
	IgnoreSelf     bool     `json:"ignore_self"`
	Resend         bool     `json:"resend"`
}

// Option configures a client.
type Option func(*Config)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// WithLogLevel installs a default stderr text logger filtered at
// level. Ignored when WithLogger is also given.
func WithLogLevel(level slog.Leveler) Option {
	return func(c *Config) { c.LogLevel = level }
}

// WithPlatform sets the login negotiation profile.
func WithPlatform(p Platform) Option {
	return func(c *Config) { c.Platform = p }
}

// WithDataDir sets the storage directory for per-account artifacts.
func WithDataDir(dir string) Option {
	return func(c *Config) { c.DataDir = dir }
}

// WithRemoteAddr overrides the gateway address.
func WithRemoteAddr(addr string) Option {
	return func(c *Config) { c.RemoteAddr = addr }
}

// WithReconnInterval sets the automatic re-login interval in seconds;
// zero disables automatic reconnection.
func WithReconnInterval(seconds int) Option {
	return func(c *Config) { c.ReconnInterval = seconds }
}

// WithKickoffCounter enables the automatic counter-login after a
// kickoff race.
func WithKickoffCounter(enable bool) Option {
	return func(c *Config) { c.KickoffCounter = enable }
}

// WithIgnoreSelf controls whether the account's own group messages
// are dispatched.
func WithIgnoreSelf(enable bool) Option {
	return func(c *Config) { c.IgnoreSelf = enable }
}

// WithResend controls the degraded sharded send fallback.
func WithResend(enable bool) Option {
	return func(c *Config) { c.Resend = enable }
}

// WithOpTimeout bounds each round-trip operation.
func WithOpTimeout(d time.Duration) Option {
	return func(c *Config) { c.OpTimeout = d }
}

// WithHeartbeatInterval overrides the heartbeat period.
func WithHeartbeatInterval(d time.Duration) Option {
	return func(c *Config) { c.HeartbeatInterval = d }
}

// WithMetrics enables Prometheus metrics on the given registry.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Config) { c.MetricsRegistry = reg }
}

// WithTracing wraps each operation in an OpenTelemetry span.
func WithTracing(enable bool) Option {
	return func(c *Config) { c.EnableTracing = enable }
}

// WithDialer overrides the transport dialer.
func WithDialer(d transport.Dialer) Option {
	return func(c *Config) { c.Dialer = d }
}

func defaultConfig() Config {
	return Config{
		Platform:       PlatformPhone,
		DataDir:        "data",
		ReconnInterval: 5,
		IgnoreSelf:     true,
		Resend:         true,
	}
}

func (c Config) snapshot() ConfigSnapshot {
	return ConfigSnapshot{
		Platform:       c.Platform,
		DataDir:        c.DataDir,
		RemoteAddr:     c.RemoteAddr,
		ReconnInterval: c.ReconnInterval,
		KickoffCounter: c.KickoffCounter,
		IgnoreSelf:     c.IgnoreSelf,
		Resend:         c.Resend,
	}
}
