package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	AI       AIConfig       `mapstructure:"ai"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Quota    QuotaConfig    `mapstructure:"quota"`
	Plan     PlanConfig     `mapstructure:"plan"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"` // Must exceed ai.timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string        `mapstructure:"endpoint"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	BucketName      string        `mapstructure:"bucket_name"`
	PresignExpiry   time.Duration `mapstructure:"presign_expiry"`
	MaxMediaBytes   int64         `mapstructure:"max_media_bytes"`
}

// JWTConfig holds the secret used to verify bearer tokens issued by the
// identity service.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

// AIConfig configures the generative model client.
type AIConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	BaseURL  string        `mapstructure:"base_url"` // Empty uses the public Gemini endpoint
	Timeout  time.Duration `mapstructure:"timeout"`
	LogCalls bool          `mapstructure:"log_calls"`
}

// RedisConfig points at the quota store. An empty URL disables the quota.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// QuotaConfig caps AI generations per user per window.
type QuotaConfig struct {
	MaxGenerations int           `mapstructure:"max_generations"`
	Window         time.Duration `mapstructure:"window"`
}

// PlanConfig tunes plan adaptation.
type PlanConfig struct {
	MoodWindow         int    `mapstructure:"mood_window"`
	PreserveCompletion bool   `mapstructure:"preserve_completion"`
	AdaptationReason   string `mapstructure:"adaptation_reason"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Nested keys map to env vars, e.g. ai.api_key -> AI_API_KEY
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		// No file; defaults and env vars only
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	return config, nil
}

// Every key gets a default so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.shutdown_timeout", "5s")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "therapy_app")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.presign_expiry", "15m")
	v.SetDefault("s3.max_media_bytes", 10<<20)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "gemini-1.5-flash-latest")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.timeout", "60s")
	v.SetDefault("ai.log_calls", true)
	v.SetDefault("redis.url", "")
	v.SetDefault("quota.max_generations", 10)
	v.SetDefault("quota.window", "24h")
	v.SetDefault("plan.mood_window", 30)
	v.SetDefault("plan.preserve_completion", true)
	v.SetDefault("plan.adaptation_reason", "Periodic adaptation based on progress and general state")
}
