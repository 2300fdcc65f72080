package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Admission  AdmissionConfig  `yaml:"admission" mapstructure:"admission"`
	Counter    CounterConfig    `yaml:"counter" mapstructure:"counter"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Evidence   EvidenceConfig   `yaml:"evidence" mapstructure:"evidence"`
	Search     SearchConfig     `yaml:"search" mapstructure:"search"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// AdmissionConfig configures per-tenant quotas.
type AdmissionConfig struct {
	DailyLimit      int64 `yaml:"daily_limit" mapstructure:"daily_limit"`
	ConcurrentLimit int64 `yaml:"concurrent_limit" mapstructure:"concurrent_limit"`
}

// CounterConfig selects the counter-store backend. An empty backend
// selects the in-process store; "redis" selects the distributed store.
type CounterConfig struct {
	Backend       string `yaml:"backend" mapstructure:"backend"`
	RedisAddr     string `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisPassword string `yaml:"redis_password" mapstructure:"redis_password"`
	RedisDB       int    `yaml:"redis_db" mapstructure:"redis_db"`
}

// CacheConfig selects and tunes the cache backend.
type CacheConfig struct {
	Enabled          bool   `yaml:"enabled" mapstructure:"enabled"`
	Backend          string `yaml:"backend" mapstructure:"backend"`
	RedisAddr        string `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisPassword    string `yaml:"redis_password" mapstructure:"redis_password"`
	RedisDB          int    `yaml:"redis_db" mapstructure:"redis_db"`
	EvidenceTTLMins  int    `yaml:"evidence_ttl_mins" mapstructure:"evidence_ttl_mins"`
	SearchTTLHours   int    `yaml:"search_ttl_hours" mapstructure:"search_ttl_hours"`
	ResearchTTLHours int    `yaml:"research_ttl_hours" mapstructure:"research_ttl_hours"`
}

// EvidenceTTL returns the raw-evidence cache TTL.
func (c CacheConfig) EvidenceTTL() time.Duration {
	return time.Duration(c.EvidenceTTLMins) * time.Minute
}

// SearchTTL returns the keyword-search cache TTL.
func (c CacheConfig) SearchTTL() time.Duration {
	return time.Duration(c.SearchTTLHours) * time.Hour
}

// ResearchTTL returns the deep-research cache TTL.
func (c CacheConfig) ResearchTTL() time.Duration {
	return time.Duration(c.ResearchTTLHours) * time.Hour
}

// AnthropicConfig holds Anthropic API settings for the capability-backed
// pipeline stages. An empty key disables the capability entirely.
type AnthropicConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	Model       string `yaml:"model" mapstructure:"model"`
	MaxTokens   int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Timeout bounds a single capability call.
func (c AnthropicConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// EvidenceConfig configures the evidence collector and its facet clients.
type EvidenceConfig struct {
	JobwireBaseURL    string `yaml:"jobwire_base_url" mapstructure:"jobwire_base_url"`
	JobwireKey        string `yaml:"jobwire_key" mapstructure:"jobwire_key"`
	StackprintBaseURL string `yaml:"stackprint_base_url" mapstructure:"stackprint_base_url"`
	StackprintKey     string `yaml:"stackprint_key" mapstructure:"stackprint_key"`
	WaybackBaseURL    string `yaml:"wayback_base_url" mapstructure:"wayback_base_url"`
	TimeoutSecs       int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxJobs           int    `yaml:"max_jobs" mapstructure:"max_jobs"`
}

// SearchConfig configures the keyword opportunity search.
type SearchConfig struct {
	TopCompanies           int `yaml:"top_companies" mapstructure:"top_companies"`
	MaxConcurrentCompanies int `yaml:"max_concurrent_companies" mapstructure:"max_concurrent_companies"`
	RequestTimeoutSecs     int `yaml:"request_timeout_secs" mapstructure:"request_timeout_secs"`
}

// RequestTimeout bounds evidence collection plus pipeline execution for
// one request.
func (c SearchConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

// StoreConfig configures the run-history database backend.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// MonitoringConfig configures the background health checker and its
// alert thresholds.
type MonitoringConfig struct {
	Enabled              bool    `yaml:"enabled" mapstructure:"enabled"`
	WebhookURL           string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	CheckIntervalSecs    int     `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
	LookbackWindowHours  int     `yaml:"lookback_window_hours" mapstructure:"lookback_window_hours"`
	FailureRateThreshold float64 `yaml:"failure_rate_threshold" mapstructure:"failure_rate_threshold"`
	CostThresholdUSD     float64 `yaml:"cost_threshold_usd" mapstructure:"cost_threshold_usd"`
}

// CheckInterval is the period between background alert checks.
func (c MonitoringConfig) CheckInterval() time.Duration {
	if c.CheckIntervalSecs <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.CheckIntervalSecs) * time.Second
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("AUTOSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("admission.daily_limit", 50)
	v.SetDefault("admission.concurrent_limit", 3)
	v.SetDefault("counter.backend", "")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", "")
	v.SetDefault("cache.evidence_ttl_mins", 60)
	v.SetDefault("cache.search_ttl_hours", 6)
	v.SetDefault("cache.research_ttl_hours", 24)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("anthropic.timeout_secs", 45)
	v.SetDefault("evidence.jobwire_base_url", "https://api.jobwire.dev/v1")
	v.SetDefault("evidence.stackprint_base_url", "https://api.stackprint.io/v1")
	v.SetDefault("evidence.wayback_base_url", "https://archive.org")
	v.SetDefault("evidence.timeout_secs", 30)
	v.SetDefault("evidence.max_jobs", 100)
	v.SetDefault("search.top_companies", 5)
	v.SetDefault("search.max_concurrent_companies", 3)
	v.SetDefault("search.request_timeout_secs", 300)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "autoscout.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("monitoring.enabled", false)
	v.SetDefault("monitoring.check_interval_secs", 300)
	v.SetDefault("monitoring.lookback_window_hours", 24)
	v.SetDefault("monitoring.failure_rate_threshold", 0.25)
	v.SetDefault("monitoring.cost_threshold_usd", 25)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
