// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Config is the dlpictl configuration. Every key can be set in the
// config file or as DLPICTL_<KEY> in the environment, with dots replaced
// by underscores (DLPICTL_METRICS_ADDRESS).
type Config struct {
	Provider string        `mapstructure:"provider"`
	Link     string        `mapstructure:"link"`
	Peer     string        `mapstructure:"peer"`
	SAP      uint32        `mapstructure:"sap"`
	Group    string        `mapstructure:"group"`
	Message  string        `mapstructure:"message"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Logging  LoggingConfig `mapstructure:"logging"`
	Metrics  MetricsConfig `mapstructure:"metrics"`
}

// LoggingConfig selects the zap level by name, such as "debug" or "info".
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// MetricsConfig configures the Prometheus endpoint. An empty Address
// disables it.
type MetricsConfig struct {
	Address string `mapstructure:"address"`
	Path    string `mapstructure:"path"`
}

const (
	providerSystem = "system"
	providerSimnet = "simnet"
)

// Load reads path, when non-empty, and the environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DLPICTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", providerSystem)
	v.SetDefault("link", "sim0")
	v.SetDefault("peer", "sim1")
	v.SetDefault("sap", 0x4000)
	v.SetDefault("group", "ff:ff:00:00:00:47")
	v.SetDefault("message", "do you know the muffin man?")
	v.SetDefault("timeout", 5*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("metrics.address", "")
	v.SetDefault("metrics.path", "/metrics")
}

func validate(cfg *Config) error {
	switch cfg.Provider {
	case providerSystem, providerSimnet:
	default:
		return fmt.Errorf("provider must be %q or %q, got %q", providerSystem, providerSimnet, cfg.Provider)
	}
	if cfg.Link == "" {
		return fmt.Errorf("link is required")
	}
	if cfg.Peer == cfg.Link {
		return fmt.Errorf("peer must differ from link %q", cfg.Link)
	}
	if _, err := cfg.groupAddr(); err != nil {
		return err
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}
	if _, err := zapcore.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if cfg.Metrics.Address != "" && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /, got %q", cfg.Metrics.Path)
	}
	return nil
}

func (c *Config) groupAddr() (net.HardwareAddr, error) {
	addr, err := net.ParseMAC(c.Group)
	if err != nil {
		return nil, fmt.Errorf("group: %w", err)
	}
	if addr[0]&1 == 0 {
		return nil, fmt.Errorf("group %s is not a group address", addr)
	}
	return addr, nil
}
