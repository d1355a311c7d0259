package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Version is the application version, set at build time.
var Version = "0.1.0-dev"

// HostNames is the fixed set of video hosting providers, in scan order.
var HostNames = []string{"streamwish", "filemoon", "vidhide", "streamruby"}

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig          `mapstructure:"server"`
	Logging  LoggingConfig         `mapstructure:"logging"`
	Metadata MetadataConfig        `mapstructure:"metadata"`
	Hosts    map[string]HostConfig `mapstructure:"hosts"`
	Index    IndexConfig           `mapstructure:"index"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// MetadataConfig holds TMDB catalog provider configuration.
type MetadataConfig struct {
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	ImageBaseURL string `mapstructure:"image_base_url"`
	Timeout      int    `mapstructure:"timeout"` // seconds
	CacheTTLMin  int    `mapstructure:"cache_ttl_min"`
}

// HostConfig holds per-provider endpoints and credentials.
// Read-only at runtime; each host exposes a primary and a fallback
// listing endpoint, both paginated via a "page" query parameter.
type HostConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	APIKey          string `mapstructure:"api_key"`
	PrimaryURL      string `mapstructure:"primary_url"`
	FallbackURL     string `mapstructure:"fallback_url"`
	PrimaryTimeout  int    `mapstructure:"primary_timeout"`  // seconds
	FallbackTimeout int    `mapstructure:"fallback_timeout"` // seconds
}

// IndexConfig holds video index and resolver configuration.
type IndexConfig struct {
	RefreshCron    string `mapstructure:"refresh_cron"`
	ResolveTTLMin  int    `mapstructure:"resolve_ttl_min"`
	CacheMaxItems  int    `mapstructure:"cache_max_items"`
	RebuildOnStart bool   `mapstructure:"rebuild_on_start"`
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.skyflixer")
	}

	v.SetEnvPrefix("SKYFLIXER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults + env vars
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.path", "")

	v.SetDefault("metadata.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("metadata.image_base_url", "https://image.tmdb.org/t/p")
	v.SetDefault("metadata.timeout", 10)
	v.SetDefault("metadata.cache_ttl_min", 30)
	v.SetDefault("metadata.api_key", "")

	for _, name := range HostNames {
		v.SetDefault("hosts."+name+".enabled", true)
		v.SetDefault("hosts."+name+".api_key", "")
		v.SetDefault("hosts."+name+".primary_url", "")
		v.SetDefault("hosts."+name+".fallback_url", "")
		v.SetDefault("hosts."+name+".primary_timeout", 15)
		v.SetDefault("hosts."+name+".fallback_timeout", 8)
	}

	// Every 6 hours on the hour.
	v.SetDefault("index.refresh_cron", "0 */6 * * *")
	v.SetDefault("index.resolve_ttl_min", 30)
	v.SetDefault("index.cache_max_items", 1000)
	v.SetDefault("index.rebuild_on_start", true)
}

// Host returns the configuration for a named host.
// A host missing from configuration is returned disabled.
func (c *Config) Host(name string) HostConfig {
	if hc, ok := c.Hosts[name]; ok {
		return hc
	}
	return HostConfig{}
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
