package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. MEDIA_WEB_PORT
const EnvPrefix = "MEDIA_WEB"

// Config represents the entire application configuration
type Config struct {
	Debug       bool              `mapstructure:"debug"`
	Host        string            `mapstructure:"host"`
	Port        int               `mapstructure:"port"`
	Downloads   DownloadsConfig   `mapstructure:"downloads"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	History     HistoryConfig     `mapstructure:"history"`
	Events      EventsConfig      `mapstructure:"events"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// DownloadsConfig contains job and download directory settings
type DownloadsConfig struct {
	Dir              string `mapstructure:"dir"`
	MaxJobs          int    `mapstructure:"max_jobs"`
	ProgressInterval string `mapstructure:"progress_interval"`
	NoPlaylist       bool   `mapstructure:"no_playlist"`
	InstallYtdlp     bool   `mapstructure:"install_ytdlp"`

	// MaxDiskUsagePercent refuses new jobs above this volume usage; 0 disables
	MaxDiskUsagePercent float64 `mapstructure:"max_disk_usage_percent"`
}

// HTTPConfig contains HTTP server configuration
type HTTPConfig struct {
	ReadTimeout  string  `mapstructure:"read_timeout"`
	WriteTimeout string  `mapstructure:"write_timeout"`
	IdleTimeout  string  `mapstructure:"idle_timeout"`
	RateLimit    float64 `mapstructure:"rate_limit"`
	RateBurst    int     `mapstructure:"rate_burst"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// HistoryConfig contains the job history database settings
type HistoryConfig struct {
	Path string `mapstructure:"path"`
}

// EventsConfig contains job event publication settings
type EventsConfig struct {
	NatsURL       string `mapstructure:"nats_url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

// MaintenanceConfig contains download directory sweep settings
type MaintenanceConfig struct {
	Interval       string `mapstructure:"interval"`
	TempFileMaxAge string `mapstructure:"temp_file_max_age"`
	OrphanMaxAge   string `mapstructure:"orphan_max_age"`
}

// Load loads configuration from defaults, an optional YAML file and the environment.
// An empty configPath skips the file.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDebugDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", true)
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 5000)
	v.SetDefault("downloads.dir", "./downloads")
	v.SetDefault("downloads.max_jobs", 100)
	v.SetDefault("downloads.progress_interval", "500ms")
	v.SetDefault("downloads.no_playlist", true)
	v.SetDefault("downloads.install_ytdlp", false)
	v.SetDefault("downloads.max_disk_usage_percent", 0)
	v.SetDefault("http.read_timeout", "30s")
	v.SetDefault("http.write_timeout", "0s")
	v.SetDefault("http.idle_timeout", "60s")
	v.SetDefault("http.rate_limit", 0)
	v.SetDefault("http.rate_burst", 5)
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("history.path", "")
	v.SetDefault("events.nats_url", "")
	v.SetDefault("events.subject_prefix", "media.jobs")
	v.SetDefault("maintenance.interval", "10m")
	v.SetDefault("maintenance.temp_file_max_age", "24h")
	v.SetDefault("maintenance.orphan_max_age", "24h")
}

// applyDebugDefaults fills logging settings left empty from the debug flag
func (c *Config) applyDebugDefaults() {
	if c.Logging.Level == "" {
		if c.Debug {
			c.Logging.Level = "debug"
		} else {
			c.Logging.Level = "info"
		}
	}
	if c.Logging.Format == "" {
		if c.Debug {
			c.Logging.Format = "text"
		} else {
			c.Logging.Format = "json"
		}
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}

	if c.Downloads.Dir == "" {
		return fmt.Errorf("downloads.dir is required")
	}
	if c.Downloads.MaxJobs <= 0 {
		return fmt.Errorf("downloads.max_jobs must be positive")
	}

	if c.Downloads.MaxDiskUsagePercent < 0 || c.Downloads.MaxDiskUsagePercent > 100 {
		return fmt.Errorf("downloads.max_disk_usage_percent must be between 0 and 100")
	}

	if c.HTTP.RateLimit < 0 {
		return fmt.Errorf("http.rate_limit must not be negative")
	}

	durations := map[string]string{
		"downloads.progress_interval":   c.Downloads.ProgressInterval,
		"http.read_timeout":             c.HTTP.ReadTimeout,
		"http.write_timeout":            c.HTTP.WriteTimeout,
		"http.idle_timeout":             c.HTTP.IdleTimeout,
		"maintenance.interval":          c.Maintenance.Interval,
		"maintenance.temp_file_max_age": c.Maintenance.TempFileMaxAge,
		"maintenance.orphan_max_age":    c.Maintenance.OrphanMaxAge,
	}
	for key, value := range durations {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid levels
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
		// Valid formats
	default:
		return fmt.Errorf("invalid logging.format: %s", c.Logging.Format)
	}

	return nil
}

// BindAddr returns host:port for the HTTP listener
func (c *Config) BindAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// GetProgressInterval returns how often the fetcher reports progress
func (c *DownloadsConfig) GetProgressInterval() time.Duration {
	return parseOr(c.ProgressInterval, 500*time.Millisecond)
}

// GetReadTimeout returns the read timeout as time.Duration
func (c *HTTPConfig) GetReadTimeout() time.Duration {
	return parseOr(c.ReadTimeout, 30*time.Second)
}

// GetWriteTimeout returns the write timeout. Zero disables it so large
// artifacts can stream.
func (c *HTTPConfig) GetWriteTimeout() time.Duration {
	d, _ := time.ParseDuration(c.WriteTimeout)
	return d
}

// GetIdleTimeout returns the idle timeout as time.Duration
func (c *HTTPConfig) GetIdleTimeout() time.Duration {
	return parseOr(c.IdleTimeout, 60*time.Second)
}

// GetInterval returns the sweep interval
func (c *MaintenanceConfig) GetInterval() time.Duration {
	return parseOr(c.Interval, 10*time.Minute)
}

// GetTempFileMaxAge returns the age after which partial files are removed
func (c *MaintenanceConfig) GetTempFileMaxAge() time.Duration {
	return parseOr(c.TempFileMaxAge, 24*time.Hour)
}

// GetOrphanMaxAge returns the age after which unowned artifacts are removed
func (c *MaintenanceConfig) GetOrphanMaxAge() time.Duration {
	return parseOr(c.OrphanMaxAge, 24*time.Hour)
}

func parseOr(value string, fallback time.Duration) time.Duration {
	d, _ := time.ParseDuration(value)
	if d == 0 {
		return fallback
	}
	return d
}
