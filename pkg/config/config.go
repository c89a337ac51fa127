package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Bandit   BanditConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
}

type RedisConfig struct {
	Enabled       bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

// BanditConfig tunes the decision engine. Parsed from the environment with
// struct tags, see Load.
type BanditConfig struct {
	PriorAlpha    float64 `env:"BANDIT_PRIOR_ALPHA" envDefault:"1"`
	PriorBeta     float64 `env:"BANDIT_PRIOR_BETA" envDefault:"1"`
	SuccessWeight float64 `env:"BANDIT_SUCCESS_WEIGHT" envDefault:"1"`
	FailureWeight float64 `env:"BANDIT_FAILURE_WEIGHT" envDefault:"1"`

	// percentage of users (0-100) permanently held out of optimized decisions
	HoldoutPercent int `env:"BANDIT_HOLDOUT_PERCENT" envDefault:"10"`

	// 0 means seed from the clock
	Seed uint64 `env:"BANDIT_SEED" envDefault:"0"`

	// per user per channel per day, 0 disables the cap
	FrequencyCapPerDay int `env:"BANDIT_FREQUENCY_CAP_PER_DAY" envDefault:"3"`

	PersistRetries int `env:"BANDIT_PERSIST_RETRIES" envDefault:"3"`

	// offer:channel:partner entries seeded into an empty catalog
	CatalogSeed []string `env:"BANDIT_CATALOG_SEED" envSeparator:","`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB := 0
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.New("invalid redis database")
		}
		redisDB = v
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Campaign Decision Engine"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Enabled:  getEnv("DB_ENABLED", "true") == "true",
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "campaign_engine"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Redis: RedisConfig{
			Enabled:       getEnv("REDIS_ENABLED", "true") == "true",
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
	}

	if err := env.Parse(&cfg.Bandit); err != nil {
		return nil, fmt.Errorf("parse bandit env: %w", err)
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Database.Enabled && cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	if err := cfg.Bandit.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings that would break the Beta posterior invariants.
func (b BanditConfig) Validate() error {
	if b.PriorAlpha < 1 || b.PriorBeta < 1 {
		return errors.New("bandit prior alpha and beta must be >= 1")
	}
	if b.SuccessWeight <= 0 || b.FailureWeight <= 0 {
		return errors.New("bandit success and failure weights must be > 0")
	}
	if b.HoldoutPercent < 0 || b.HoldoutPercent > 100 {
		return errors.New("bandit holdout percent must be within [0, 100]")
	}
	if b.FrequencyCapPerDay < 0 {
		return errors.New("bandit frequency cap must be >= 0")
	}
	if b.PersistRetries < 0 {
		return errors.New("bandit persist retries must be >= 0")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}
