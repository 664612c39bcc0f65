// Package config loads espr settings from a YAML file with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds client settings. Zero values are replaced by defaults in
// Load.
type Config struct {
	// APIURL is the backend base URL, e.g. "http://localhost:8080".
	APIURL string `yaml:"api_url"`

	// DBPath is the SQLite file holding the cart and local orders.
	// ":memory:" keeps state for the life of the process only.
	DBPath string `yaml:"db_path"`

	// CookieFile persists the admin session between invocations.
	CookieFile string `yaml:"cookie_file"`

	// TrackingPrefix and TrackingLength shape client-side tracking codes.
	TrackingPrefix string `yaml:"tracking_prefix"`
	TrackingLength int    `yaml:"tracking_length"`

	// RequestTimeout bounds every API call. Zero disables the timeout.
	RequestTimeout Duration `yaml:"request_timeout"`

	// SimulatedLatency delays every API call, for exercising loading states.
	SimulatedLatency Duration `yaml:"simulated_latency"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Duration is a time.Duration read from YAML strings such as "15s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q: %w", node.Line, s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default settings.
const (
	DefaultAPIURL         = "http://localhost:8080"
	DefaultTrackingPrefix = "ESPR-"
	DefaultTrackingLength = 6
	DefaultRequestTimeout = 15 * time.Second
)

// Default returns the configuration used when no file is present.
func Default() Config {
	dir := defaultDir()
	return Config{
		APIURL:         DefaultAPIURL,
		DBPath:         filepath.Join(dir, "espr.db"),
		CookieFile:     filepath.Join(dir, "cookies.json"),
		TrackingPrefix: DefaultTrackingPrefix,
		TrackingLength: DefaultTrackingLength,
		RequestTimeout: Duration(DefaultRequestTimeout),
	}
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	return filepath.Join(defaultDir(), "config.yaml")
}

func defaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "espr")
	}
	return ".espr"
}

// Load reads path (DefaultPath when empty), fills unset fields with
// defaults and applies ESPR_* environment overrides. A missing file is not
// an error.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.fillDefaults()
	return cfg, cfg.Validate()
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	if c.TrackingLength < 1 {
		return fmt.Errorf("tracking_length must be positive, got %d", c.TrackingLength)
	}
	if c.RequestTimeout < 0 || c.SimulatedLatency < 0 {
		return errors.New("durations must not be negative")
	}
	return nil
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.APIURL == "" {
		c.APIURL = def.APIURL
	}
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	}
	if c.CookieFile == "" {
		c.CookieFile = def.CookieFile
	}
	if c.TrackingPrefix == "" {
		c.TrackingPrefix = def.TrackingPrefix
	}
	if c.TrackingLength == 0 {
		c.TrackingLength = def.TrackingLength
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = def.RequestTimeout
	}
}

func applyEnv(c *Config) error {
	if v := os.Getenv("ESPR_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv("ESPR_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("ESPR_COOKIE_FILE"); v != "" {
		c.CookieFile = v
	}
	if v := os.Getenv("ESPR_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("ESPR_TRACKING_PREFIX"); v != "" {
		c.TrackingPrefix = v
	}
	if v := os.Getenv("ESPR_TRACKING_LENGTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ESPR_TRACKING_LENGTH: %w", err)
		}
		c.TrackingLength = n
	}
	if v := os.Getenv("ESPR_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ESPR_REQUEST_TIMEOUT: %w", err)
		}
		c.RequestTimeout = Duration(d)
	}
	if v := os.Getenv("ESPR_SIMULATED_LATENCY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ESPR_SIMULATED_LATENCY: %w", err)
		}
		c.SimulatedLatency = Duration(d)
	}
	return nil
}
