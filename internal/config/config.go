package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type AppConfig struct {
	API        *APIConfig        `mapstructure:"api"`
	Gin        *GinConfig        `mapstructure:"gin"`
	Postgres   *PostgresConfig   `mapstructure:"postgres"`
	Allocation *AllocationConfig `mapstructure:"allocation"`
	Realtime   *RealtimeConfig   `mapstructure:"realtime"`

	mu sync.RWMutex
}

type APIConfig struct {
	Environment        string   `mapstructure:"environment"`
	BaseURL            string   `mapstructure:"base_url"`
	Port               string   `mapstructure:"port"`
	JWTSigningKey      string   `mapstructure:"jwt_signing_key"`
	AllowedCORSDomains []string `mapstructure:"allowed_cors_domains"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"db_name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// AllocationConfig holds the allocation tunables. They are hot-reloaded when
// the config file changes, so callers must go through AllocationSettings
// instead of keeping a copy around.
type AllocationConfig struct {
	MaxAgeGap     int `mapstructure:"max_age_gap"`
	AgeRangeYears int `mapstructure:"age_range_years"`
}

type RealtimeConfig struct {
	HeartbeatSeconds    int `mapstructure:"heartbeat_seconds"`
	WriteTimeoutSeconds int `mapstructure:"write_timeout_seconds"`
}

func Load(configPath string) (*AppConfig, error) {
	viper.SetConfigFile(configPath)

	// Environment variables take precedence over the config file,
	// e.g. API_PORT overrides api.port.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("viper.ReadInConfig -> %w", err)
	}

	config := &AppConfig{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("viper.Unmarshal -> %w", err)
	}

	applyDefaults(config)

	viper.OnConfigChange(func(e fsnotify.Event) {
		updated := &AppConfig{}
		if err := viper.Unmarshal(updated); err != nil {
			zap.L().Warn("ignoring config change", zap.String("file", e.Name), zap.Error(err))
			return
		}

		applyDefaults(updated)

		config.mu.Lock()
		config.Allocation = updated.Allocation
		config.Realtime = updated.Realtime
		config.mu.Unlock()

		zap.L().Info("reloaded allocation settings",
			zap.Int("max_age_gap", updated.Allocation.MaxAgeGap),
			zap.Int("age_range_years", updated.Allocation.AgeRangeYears))
	})
	viper.WatchConfig()

	return config, nil
}

// AllocationSettings returns the current allocation tunables. The engine
// calls this on every allocation request so that config edits take effect
// without a restart.
func (c *AppConfig) AllocationSettings() AllocationConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return *c.Allocation
}

func (c *AppConfig) RealtimeSettings() RealtimeConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return *c.Realtime
}

func applyDefaults(c *AppConfig) {
	if c.Allocation == nil {
		c.Allocation = &AllocationConfig{}
	}
	if c.Allocation.MaxAgeGap <= 0 {
		c.Allocation.MaxAgeGap = 5
	}
	if c.Allocation.AgeRangeYears <= 0 {
		c.Allocation.AgeRangeYears = 5
	}

	if c.Realtime == nil {
		c.Realtime = &RealtimeConfig{}
	}
	if c.Realtime.HeartbeatSeconds <= 0 {
		c.Realtime.HeartbeatSeconds = 30
	}
	if c.Realtime.WriteTimeoutSeconds <= 0 {
		c.Realtime.WriteTimeoutSeconds = 5
	}
}
