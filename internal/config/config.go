package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	Database      DatabaseConfig
	Redis         RedisConfig
	Artifact      ArtifactConfig
	Training      TrainingConfig
	Server        ServerConfig
	Observability ObservabilityConfig
}

type DatabaseConfig struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	LogLevel     string
}

type RedisConfig struct {
	Enabled    bool
	Addr       string
	Password   string
	DB         int
	FeatureTTL time.Duration
}

type ArtifactConfig struct {
	// Dir is the root directory holding one subdirectory per training run.
	Dir string
}

type TrainingConfig struct {
	TestRatio float64
	Seed      uint64
	NumTrees  int
	MaxDepth  int
}

type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type ObservabilityConfig struct {
	LogLevel       string
	TracingEnabled bool
	OTLPEndpoint   string
	ServiceName    string
}

func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, EnvDevelopment)
}

// Load reads configuration from the process environment, after merging an
// optional .env file from the working directory.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := Config{
		AppName:     v.GetString("APP_NAME"),
		AppVersion:  v.GetString("APP_VERSION"),
		Environment: strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV"))),
		Database: DatabaseConfig{
			Driver:       strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
			DSN:          v.GetString("DB_DSN"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
			LogLevel:     v.GetString("DB_LOG_LEVEL"),
		},
		Redis: RedisConfig{
			Enabled:    v.GetBool("REDIS_ENABLED"),
			Addr:       v.GetString("REDIS_ADDR"),
			Password:   v.GetString("REDIS_PASSWORD"),
			DB:         v.GetInt("REDIS_DB"),
			FeatureTTL: v.GetDuration("REDIS_FEATURE_TTL"),
		},
		Artifact: ArtifactConfig{
			Dir: v.GetString("ARTIFACT_DIR"),
		},
		Training: TrainingConfig{
			TestRatio: v.GetFloat64("TRAIN_TEST_RATIO"),
			Seed:      v.GetUint64("TRAIN_SEED"),
			NumTrees:  v.GetInt("TRAIN_NUM_TREES"),
			MaxDepth:  v.GetInt("TRAIN_MAX_DEPTH"),
		},
		Server: ServerConfig{
			Addr:         v.GetString("HTTP_ADDR"),
			ReadTimeout:  v.GetDuration("HTTP_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("HTTP_WRITE_TIMEOUT"),
		},
		Observability: ObservabilityConfig{
			LogLevel:       v.GetString("LOG_LEVEL"),
			TracingEnabled: v.GetBool("OTEL_TRACING_ENABLED"),
			OTLPEndpoint:   v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			ServiceName:    v.GetString("OTEL_SERVICE_NAME"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "riskscore")
	v.SetDefault("APP_VERSION", "dev")
	v.SetDefault("APP_ENV", EnvDevelopment)

	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "riskscore.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_LOG_LEVEL", "warn")

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_FEATURE_TTL", 10*time.Minute)

	v.SetDefault("ARTIFACT_DIR", "artifacts")

	v.SetDefault("TRAIN_TEST_RATIO", 0.2)
	v.SetDefault("TRAIN_SEED", 42)
	v.SetDefault("TRAIN_NUM_TREES", 100)
	v.SetDefault("TRAIN_MAX_DEPTH", 0)

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("HTTP_READ_TIMEOUT", 15*time.Second)
	v.SetDefault("HTTP_WRITE_TIMEOUT", 30*time.Second)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("OTEL_TRACING_ENABLED", false)
	v.SetDefault("OTEL_SERVICE_NAME", "riskscore")
}

func (c Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("config: DB_DSN is required")
	}
	if c.Training.TestRatio <= 0 || c.Training.TestRatio >= 1 {
		return fmt.Errorf("config: TRAIN_TEST_RATIO must be in (0, 1), got %v", c.Training.TestRatio)
	}
	if c.Training.NumTrees <= 0 {
		return fmt.Errorf("config: TRAIN_NUM_TREES must be positive, got %d", c.Training.NumTrees)
	}
	if strings.TrimSpace(c.Artifact.Dir) == "" {
		return fmt.Errorf("config: ARTIFACT_DIR is required")
	}
	return nil
}
