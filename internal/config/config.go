package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults applied when neither the config file nor the environment
// provides a value.
const (
	DefaultBadgerDBPath = "./tweetstash_data"
	DefaultGeminiModel  = "gemini-2.0-flash"
	DefaultBatchSize    = 20
	DefaultCooldownSecs = 1
	DefaultTimeoutSecs  = 60
	DefaultLogLevel     = "info"
)

// Config holds all configuration for the application.
// Values are read by viper from a config file or environment variables.
type Config struct {
	BadgerDBPath string `mapstructure:"BADGERDB_PATH"`

	// Classification service settings. The API key is only required by
	// commands that actually talk to the service; it is validated where
	// the client is constructed, not here.
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel  string `mapstructure:"GEMINI_MODEL"`

	// Pipeline tuning.
	BatchSize             int `mapstructure:"BATCH_SIZE"`
	BatchCooldownSeconds  int `mapstructure:"BATCH_COOLDOWN_SECONDS"`
	RequestTimeoutSeconds int `mapstructure:"REQUEST_TIMEOUT_SECONDS"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
}

// Cooldown returns the inter-batch pacing delay as a duration.
func (c Config) Cooldown() time.Duration {
	return time.Duration(c.BatchCooldownSeconds) * time.Second
}

// RequestTimeout returns the per-batch classification call timeout.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Register keys so AutomaticEnv picks them up even without a file.
	v.SetDefault("BADGERDB_PATH", DefaultBadgerDBPath)
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", DefaultGeminiModel)
	v.SetDefault("BATCH_SIZE", DefaultBatchSize)
	v.SetDefault("BATCH_COOLDOWN_SECONDS", DefaultCooldownSecs)
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", DefaultTimeoutSecs)
	v.SetDefault("LOG_LEVEL", DefaultLogLevel)

	err = v.ReadInConfig()
	if err != nil {
		// A missing config file is fine, the environment may carry
		// everything we need. Any other read error is fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	err = v.Unmarshal(&config)
	if err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if config.BatchSize <= 0 {
		return Config{}, fmt.Errorf("BATCH_SIZE must be positive, got %d", config.BatchSize)
	}
	if config.BatchCooldownSeconds < 0 {
		return Config{}, fmt.Errorf("BATCH_COOLDOWN_SECONDS must not be negative, got %d", config.BatchCooldownSeconds)
	}
	if config.RequestTimeoutSeconds <= 0 {
		return Config{}, fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive, got %d", config.RequestTimeoutSeconds)
	}

	return config, nil
}
