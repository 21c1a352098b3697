package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	CacheMemory = "memory"
	CacheBadger = "badger"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

type Config struct {
	Env        string           `mapstructure:"env"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Solver     SolverConfig     `mapstructure:"solver"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Policy     PolicyConfig     `mapstructure:"policy"`
	Simulation SimulationConfig `mapstructure:"simulation"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SolverConfig selects the external solver. An empty path looks the binary up in PATH
type SolverConfig struct {
	Name     string `mapstructure:"name"`
	Path     string `mapstructure:"path"`
	Precheck bool   `mapstructure:"precheck"`
}

// CacheConfig selects where solved runs are memoized
type CacheConfig struct {
	Backend       string        `mapstructure:"backend"`
	BadgerPath    string        `mapstructure:"badger_path"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
}

// PolicyConfig holds the limits applied when the model input leaves them unset
type PolicyConfig struct {
	MaxPerDay  int `mapstructure:"max_per_day"`
	MaxPerWeek int `mapstructure:"max_per_week"`
	Shifts     int `mapstructure:"shifts"`
}

// SimulationConfig holds the parameters a simulation request may omit
type SimulationConfig struct {
	Baseline  float64 `mapstructure:"baseline"`
	ClassSize float64 `mapstructure:"class_size"`
}

// Load reads .env, then the optional config file at path, then TALA_* environment variables, each overriding the previous
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("TALA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("cannot read config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("cannot decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", EnvDevelopment)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("solver.name", "cbc")
	v.SetDefault("solver.path", "")
	v.SetDefault("solver.precheck", true)
	v.SetDefault("cache.backend", CacheMemory)
	v.SetDefault("cache.badger_path", "./data/cache")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("policy.max_per_day", 6)
	v.SetDefault("policy.max_per_week", 30)
	v.SetDefault("policy.shifts", 1)
	v.SetDefault("simulation.baseline", 60.0)
	v.SetDefault("simulation.class_size", 45.0)
}

func (cfg *Config) validate() error {
	switch cfg.Cache.Backend {
	case CacheMemory, CacheBadger, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
	if cfg.Policy.Shifts < 1 || cfg.Policy.Shifts > 3 {
		return fmt.Errorf("policy shifts must be 1, 2 or 3, got %d", cfg.Policy.Shifts)
	}
	if cfg.Policy.MaxPerDay < 1 || cfg.Policy.MaxPerWeek < 1 {
		return fmt.Errorf("policy limits must be positive, got %d per day and %d per week", cfg.Policy.MaxPerDay, cfg.Policy.MaxPerWeek)
	}
	return nil
}
