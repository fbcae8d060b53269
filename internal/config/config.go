// Package config loads application configuration from file and
// environment, and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Jina      JinaConfig      `yaml:"jina" mapstructure:"jina"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Provider  ProviderConfig  `yaml:"provider" mapstructure:"provider"`
	Scheduler SchedulerConfig `yaml:"scheduler" mapstructure:"scheduler"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the batch history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// JinaConfig holds Jina AI Reader settings.
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// ProviderConfig tunes the live provider's pacing and resilience.
type ProviderConfig struct {
	RateLimitPerSecond float64 `yaml:"rate_limit_per_second" mapstructure:"rate_limit_per_second"`
	RateLimitBurst     int     `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
	RetryMaxAttempts   int     `yaml:"retry_max_attempts" mapstructure:"retry_max_attempts"`
}

// SchedulerConfig configures the staged pipeline.
type SchedulerConfig struct {
	PlanPath        string `yaml:"plan_path" mapstructure:"plan_path"`
	CallTimeoutSecs int    `yaml:"call_timeout_secs" mapstructure:"call_timeout_secs"`
	MaxDepth        string `yaml:"max_depth" mapstructure:"max_depth"`
}

// BatchConfig configures batch orchestration defaults.
type BatchConfig struct {
	MaxConcurrent        int      `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	DelayBetweenMs       int      `yaml:"delay_between_ms" mapstructure:"delay_between_ms"`
	PrioritizeHighValue  bool     `yaml:"prioritize_high_value" mapstructure:"prioritize_high_value"`
	HighValueSpecialties []string `yaml:"high_value_specialties" mapstructure:"high_value_specialties"`
	SkipLowConfidence    bool     `yaml:"skip_low_confidence" mapstructure:"skip_low_confidence"`
	ConfidenceThreshold  float64  `yaml:"confidence_threshold" mapstructure:"confidence_threshold"`
}

// ServerConfig configures the HTTP serve mode.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("PROSPECT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "prospect.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("jina.key", "")
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("provider.rate_limit_per_second", 2.0)
	v.SetDefault("provider.rate_limit_burst", 4)
	v.SetDefault("provider.retry_max_attempts", 3)
	v.SetDefault("scheduler.call_timeout_secs", 20)
	v.SetDefault("scheduler.max_depth", "complete")
	v.SetDefault("batch.max_concurrent", 3)
	v.SetDefault("batch.delay_between_ms", 500)
	v.SetDefault("batch.confidence_threshold", 50)
	v.SetDefault("batch.high_value_specialties", []string{
		"cardiology", "orthopedics", "dermatology", "plastic surgery",
	})

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
