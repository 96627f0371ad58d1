// Package config loads and validates consumer configuration via Viper.
//
// All settings are environment-sourced with the ENRICHD_ prefix (dots in
// config keys become underscores, e.g. redis.host -> ENRICHD_REDIS_HOST).
// A config file may supply the same keys for local development, and a .env
// file in the working directory is honored when present. Configuration is
// loaded once at startup and treated as immutable for the process lifetime;
// nothing re-reads the environment mid-run.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config captures all daemon configuration knobs loaded via Viper.
type Config struct {
	Redis   RedisConfig   `mapstructure:"redis"`
	Queue   QueueConfig   `mapstructure:"queue"`
	API     APIConfig     `mapstructure:"api"`
	Storage StorageConfig `mapstructure:"storage"`
	Worker  WorkerConfig  `mapstructure:"worker"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// RedisConfig holds broker connection parameters.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	DB       int    `mapstructure:"db"`
	Password string `mapstructure:"password"`
}

// QueueConfig names the work queue and bounds the blocking pop.
type QueueConfig struct {
	Name              string `mapstructure:"name"`
	PopTimeoutSeconds int    `mapstructure:"pop_timeout_seconds"`
}

// APIConfig points at the external detail-lookup service.
type APIConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// StorageConfig selects and configures the blob storage backend.
type StorageConfig struct {
	Provider string    `mapstructure:"provider"`
	S3       S3Config  `mapstructure:"s3"`
	GCS      GCSConfig `mapstructure:"gcs"`
}

// S3Config holds credentials and addressing for an S3-compatible store.
type S3Config struct {
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Endpoint  string `mapstructure:"endpoint"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
}

// GCSConfig holds settings for the Google Cloud Storage backend.
type GCSConfig struct {
	Bucket string `mapstructure:"bucket"`
}

// WorkerConfig tunes the consumer loop's recovery behavior.
type WorkerConfig struct {
	ReconnectBackoffSeconds int `mapstructure:"reconnect_backoff_seconds"`
	ErrorDelaySeconds       int `mapstructure:"error_delay_seconds"`
}

// ServerConfig controls the operational HTTP surface (metrics, health).
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment. Pass an empty path to rely on
// environment variables and defaults alone.
func Load(path string) (Config, error) {
	// The original deployment shipped settings in a .env file; keep honoring
	// it when present.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ENRICHD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("queue.name", "processing_queue")
	v.SetDefault("queue.pop_timeout_seconds", 30)
	v.SetDefault("api.endpoint", "http://localhost:8000/api/detail")
	// Slightly above the detail service's ~40s worst-case processing time.
	v.SetDefault("api.timeout_seconds", 45)
	v.SetDefault("storage.provider", "s3")
	v.SetDefault("storage.s3.access_key", "")
	v.SetDefault("storage.s3.secret_key", "")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.gcs.bucket", "")
	v.SetDefault("worker.reconnect_backoff_seconds", 5)
	v.SetDefault("worker.error_delay_seconds", 1)
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", false)
}

// Validate enforces required values. A failure here is fatal at startup;
// the consumer loop never starts on an incomplete configuration.
func (c Config) Validate() error {
	if c.Redis.Host == "" {
		return fmt.Errorf("redis.host must be set")
	}
	if c.Redis.Port <= 0 {
		return fmt.Errorf("redis.port must be > 0")
	}
	if c.Queue.Name == "" {
		return fmt.Errorf("queue.name must be set")
	}
	if c.Queue.PopTimeoutSeconds <= 0 {
		return fmt.Errorf("queue.pop_timeout_seconds must be > 0")
	}
	if c.API.Endpoint == "" {
		return fmt.Errorf("api.endpoint must be set")
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("api.timeout_seconds must be > 0")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}

	switch c.Storage.Provider {
	case "s3":
		missing := make([]string, 0, 4)
		if c.Storage.S3.AccessKey == "" {
			missing = append(missing, "storage.s3.access_key")
		}
		if c.Storage.S3.SecretKey == "" {
			missing = append(missing, "storage.s3.secret_key")
		}
		if c.Storage.S3.Endpoint == "" {
			missing = append(missing, "storage.s3.endpoint")
		}
		if c.Storage.S3.Bucket == "" {
			missing = append(missing, "storage.s3.bucket")
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
		}
	case "gcs":
		if c.Storage.GCS.Bucket == "" {
			return fmt.Errorf("storage.gcs.bucket must be set when provider is 'gcs'")
		}
	case "memory", "noop":
		// No settings required.
	default:
		return fmt.Errorf("unknown storage provider: %s", c.Storage.Provider)
	}

	return nil
}

// PopTimeout returns the blocking-pop bound as a duration.
func (c Config) PopTimeout() time.Duration {
	return time.Duration(c.Queue.PopTimeoutSeconds) * time.Second
}

// APITimeout returns the detail API request budget as a duration.
func (c Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// ReconnectBackoff returns the fixed wait between broker reconnect attempts.
func (c Config) ReconnectBackoff() time.Duration {
	return time.Duration(c.Worker.ReconnectBackoffSeconds) * time.Second
}

// ErrorDelay returns the fixed pause after an unexpected loop failure.
func (c Config) ErrorDelay() time.Duration {
	return time.Duration(c.Worker.ErrorDelaySeconds) * time.Second
}
