// Package config loads application configuration from config.yaml and the
// WIDGETRY_* environment via viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Widgets WidgetConfig  `mapstructure:"widgets" yaml:"widgets"`
}

// LoggerConfig controls the zap logger setup.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	// LogFile enables a rotating JSON file sink when non-empty.
	LogFile    string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// BrowserConfig controls the launched browser session.
type BrowserConfig struct {
	Headless       bool              `mapstructure:"headless" yaml:"headless"`
	NoSandbox      bool              `mapstructure:"no_sandbox" yaml:"no_sandbox"`
	UserAgent      string            `mapstructure:"user_agent" yaml:"user_agent"`
	ChromePath     string            `mapstructure:"chrome_path" yaml:"chrome_path"`
	Flags          map[string]string `mapstructure:"flags" yaml:"flags"`
	StartupTimeout time.Duration     `mapstructure:"startup_timeout" yaml:"startup_timeout"`
	// NavigationTimeout bounds initial page loads.
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
}

// WidgetConfig carries the default interaction budgets.
type WidgetConfig struct {
	// Timeout is the default element wait budget.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// PollInterval is the wait engine's condition re-evaluation step.
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	// RetryAttempts bounds action re-attempts on transient failures.
	RetryAttempts int `mapstructure:"retry_attempts" yaml:"retry_attempts"`
	// RetryDelay is the pause between action re-attempts.
	RetryDelay time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
}

// SetDefaults seeds a viper instance with the default configuration.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "widgetry")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.no_sandbox", false)
	v.SetDefault("browser.user_agent", "")
	v.SetDefault("browser.chrome_path", "")
	v.SetDefault("browser.startup_timeout", "30s")
	v.SetDefault("browser.navigation_timeout", "90s")

	v.SetDefault("widgets.timeout", "10s")
	v.SetDefault("widgets.poll_interval", "250ms")
	v.SetDefault("widgets.retry_attempts", 3)
	v.SetDefault("widgets.retry_delay", "2s")
}

// NewDefaultConfig returns the configuration with every default applied.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper builds and validates a configuration from a viper
// instance that has already read its sources.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Load reads config.yaml (optional) and WIDGETRY_* environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("WIDGETRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %q: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			// A missing default config file is fine; defaults apply.
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}
	return NewConfigFromViper(v)
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if c.Widgets.Timeout <= 0 {
		return fmt.Errorf("widgets.timeout must be a positive duration")
	}
	if c.Widgets.PollInterval <= 0 {
		return fmt.Errorf("widgets.poll_interval must be a positive duration")
	}
	if c.Widgets.RetryAttempts < 1 {
		return fmt.Errorf("widgets.retry_attempts must be at least 1")
	}
	if c.Widgets.RetryDelay < 0 {
		return fmt.Errorf("widgets.retry_delay must not be negative")
	}
	if c.Browser.StartupTimeout <= 0 {
		return fmt.Errorf("browser.startup_timeout must be a positive duration")
	}
	if c.Browser.NavigationTimeout <= 0 {
		return fmt.Errorf("browser.navigation_timeout must be a positive duration")
	}
	return nil
}
