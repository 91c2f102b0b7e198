package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from configs/config.yaml with environment variable
// overrides (DINEHALAL_SERVER_ADDR and friends). A missing config file is not
// an error; defaults plus environment are enough to boot.
func Load() (*Config, error) {
	// Best effort; the file is optional outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.SetEnvPrefix("DINEHALAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.max_idle", 5)

	v.SetDefault("kafka.status_topic", "dinehalal.verification.status")

	v.SetDefault("registry.document_path", "data/establishments.csv")
	v.SetDefault("registry.load_timeout", 15*time.Second)
	v.SetDefault("registry.snapshot", true)

	v.SetDefault("votes.min_votes", 5)
	v.SetDefault("votes.min_approval_ratio", 0.75)
}

func validate(cfg *Config) error {
	if cfg.Votes.MinVotes < 1 {
		return fmt.Errorf("votes.min_votes must be at least 1, got %d", cfg.Votes.MinVotes)
	}
	if cfg.Votes.MinApprovalRatio <= 0 || cfg.Votes.MinApprovalRatio > 1 {
		return fmt.Errorf("votes.min_approval_ratio must be in (0,1], got %v", cfg.Votes.MinApprovalRatio)
	}
	if cfg.Registry.LoadTimeout <= 0 {
		return fmt.Errorf("registry.load_timeout must be positive")
	}
	return nil
}
