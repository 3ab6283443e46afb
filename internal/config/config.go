// Package config loads and defaults the runtime's layered configuration:
// a base fae.yaml, an optional fae.local.yaml override, $include directives,
// and FAE_-prefixed environment variable overrides.
package config

import "time"

// Config is the top-level runtime configuration.
type Config struct {
	DataDir   string                    `yaml:"data_dir"`
	Logging   LoggingConfig             `yaml:"logging"`
	Server    ServerConfig              `yaml:"server"`
	Breaker   BreakerConfig             `yaml:"breaker"`
	Turn      TurnConfig                `yaml:"turn"`
	Providers map[string]ProviderConfig `yaml:"providers"`
	Memory    MemoryConfig              `yaml:"memory"`
	Metrics   MetricsConfig             `yaml:"metrics"`
}

// LoggingConfig controls the ambient slog setup.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug|info|warn|error
}

// ServerConfig configures the host command/event channel's transports.
// The stdio transport always runs; GRPCAddr/WSAddr are bind addresses for
// the optional gRPC/websocket transports and are unread until one exists.
type ServerConfig struct {
	GRPCAddr string `yaml:"grpc_addr"`
	WSAddr   string `yaml:"ws_addr"`
}

// BreakerConfig mirrors internal/breaker.Config's fields for config-driven
// construction.
type BreakerConfig struct {
	FailureThreshold int           `yaml:"failure_threshold"`
	CooldownPeriod   time.Duration `yaml:"cooldown_period"`
}

// TurnConfig mirrors internal/agentloop.Config's fields.
type TurnConfig struct {
	MaxTurns       int           `yaml:"max_turns"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	ToolTimeout    time.Duration `yaml:"tool_timeout"`
}

// ProviderConfig names one configured LLM provider endpoint and credential.
type ProviderConfig struct {
	BaseURL string     `yaml:"base_url"`
	APIKey  *SecretRef `yaml:"api_key"`
}

// MemoryConfig configures the C11 memory store.
type MemoryConfig struct {
	DBPath string `yaml:"db_path"`
}

// MetricsConfig configures the optional /metrics HTTP endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// SecretRef is a pointer to a secret value, resolved at use time rather than
// at load time.
type SecretRef struct {
	Type  string `yaml:"type"` // env|literal|command|keychain
	Value string `yaml:"value"`
}

func sanitize(cfg *Config) {
	if cfg.DataDir == "" {
		cfg.DataDir = "~/.fae"
	}
	sanitizeLogging(&cfg.Logging)
	sanitizeServer(&cfg.Server)
	sanitizeBreaker(&cfg.Breaker)
	sanitizeTurn(&cfg.Turn)
	sanitizeMemory(&cfg.Memory)
	sanitizeMetrics(&cfg.Metrics)
}

func sanitizeLogging(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
}

func sanitizeServer(cfg *ServerConfig) {
	// No defaulting needed: faecore serve always runs the stdio transport.
	// GRPCAddr/WSAddr are config surface for the optional gRPC/websocket
	// transports named in the domain stack and have no default address
	// until one of those transports exists to bind it.
}

func sanitizeBreaker(cfg *BreakerConfig) {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.CooldownPeriod == 0 {
		cfg.CooldownPeriod = 30 * time.Second
	}
}

func sanitizeTurn(cfg *TurnConfig) {
	if cfg.MaxTurns == 0 {
		cfg.MaxTurns = 25
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if cfg.ToolTimeout == 0 {
		cfg.ToolTimeout = 30 * time.Second
	}
}

func sanitizeMemory(cfg *MemoryConfig) {
	if cfg.DBPath == "" {
		cfg.DBPath = "~/.fae/memory.db"
	}
}

func sanitizeMetrics(cfg *MetricsConfig) {
	if cfg.Addr == "" {
		cfg.Addr = ":9090"
	}
}
