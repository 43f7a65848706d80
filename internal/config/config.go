// Package config loads client configuration from defaults, an optional YAML
// file, AMPLY_* environment variables and command-line flags.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	amplyerrors "github.com/amply-impact/amply/internal/errors"
)

const (
	// EnvPrefix is prepended to every environment override (api.url -> AMPLY_API_URL).
	EnvPrefix = "AMPLY"

	// DefaultAPIURL is the production API base URL.
	DefaultAPIURL = "https://api.amply-impact.org/v1"

	// DefaultBasePath is the path every dashboard route is mounted under.
	DefaultBasePath = "/dashboard"
)

// Config holds application configuration.
type Config struct {
	API   APIConfig   `mapstructure:"api" yaml:"api"`
	Query QueryConfig `mapstructure:"query" yaml:"query"`
	App   AppConfig   `mapstructure:"app" yaml:"app"`
	State StateConfig `mapstructure:"state" yaml:"state"`
	Log   LogConfig   `mapstructure:"log" yaml:"log"`
}

// APIConfig holds remote API settings.
type APIConfig struct {
	URL          string        `mapstructure:"url" yaml:"url"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
	QueryRetries int           `mapstructure:"query_retries" yaml:"query_retries"`
}

// QueryConfig holds query cache settings.
type QueryConfig struct {
	StaleTime time.Duration `mapstructure:"stale_time" yaml:"stale_time"`
}

// AppConfig holds routing settings.
type AppConfig struct {
	BasePath string `mapstructure:"base_path" yaml:"base_path"`
}

// StateConfig locates client-side durable storage.
type StateConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// LogConfig holds logging settings. An empty File means stderr.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	File   string `mapstructure:"file" yaml:"file"`
}

// DefaultPath returns the config file location, honoring AMPLY_CONFIG.
func DefaultPath() string {
	if p := os.Getenv("AMPLY_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(homeDir(), ".config", "amply", "config.yaml")
}

// DefaultStateDir returns where tokens and preferences are stored.
func DefaultStateDir() string {
	if d := os.Getenv("XDG_STATE_HOME"); d != "" {
		return filepath.Join(d, "amply")
	}
	return filepath.Join(homeDir(), ".local", "state", "amply")
}

func homeDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return os.Getenv("HOME")
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.url", DefaultAPIURL)
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.query_retries", 1)
	v.SetDefault("query.stale_time", time.Minute)
	v.SetDefault("app.base_path", DefaultBasePath)
	v.SetDefault("state.dir", DefaultStateDir())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
}

// New returns a viper instance with defaults and environment binding set up.
// Callers bind flags onto it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file at path (if present) into v and decodes it.
// A missing file is not an error; a malformed one is.
func Load(v *viper.Viper, path string) (Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return Config{}, amplyerrors.Wrap(amplyerrors.ErrCodeConfigLoad, fmt.Sprintf("failed to read %s", path), err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, amplyerrors.Wrap(amplyerrors.ErrCodeConfigLoad, "failed to decode configuration", err)
	}
	c.App.BasePath = NormalizeBasePath(c.App.BasePath)

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Default returns the configuration with no file, env or flag overrides.
func Default() Config {
	return Config{
		API:   APIConfig{URL: DefaultAPIURL, Timeout: 30 * time.Second, QueryRetries: 1},
		Query: QueryConfig{StaleTime: time.Minute},
		App:   AppConfig{BasePath: DefaultBasePath},
		State: StateConfig{Dir: DefaultStateDir()},
		Log:   LogConfig{Level: "info", Format: "json"},
	}
}

// Validate checks value ranges.
func (c Config) Validate() error {
	u, err := url.Parse(c.API.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return amplyerrors.NewConfigInvalidError(fmt.Sprintf("api.url %q must be an absolute http(s) URL", c.API.URL))
	}
	if c.API.Timeout <= 0 {
		return amplyerrors.NewConfigInvalidError("api.timeout must be positive")
	}
	if c.API.QueryRetries < 0 || c.API.QueryRetries > 1 {
		return amplyerrors.NewConfigInvalidError("api.query_retries must be 0 or 1")
	}
	if c.Query.StaleTime < 0 {
		return amplyerrors.NewConfigInvalidError("query.stale_time must not be negative")
	}
	if c.State.Dir == "" {
		return amplyerrors.NewConfigInvalidError("state.dir must be set")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return amplyerrors.NewConfigInvalidError(fmt.Sprintf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text", "console":
	default:
		return amplyerrors.NewConfigInvalidError(fmt.Sprintf("log.format %q is not json or text", c.Log.Format))
	}
	return nil
}

// NormalizeBasePath forces a leading slash and strips trailing ones.
// "/" and "" both normalize to "".
func NormalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
