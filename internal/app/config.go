package app

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"olmkit/internal/logging"
)

// Environment variables that override file settings.
const (
	EnvHome        = "OLMKIT_HOME"
	EnvRelayURL    = "OLMKIT_RELAY_URL"
	EnvStore       = "OLMKIT_STORE"
	EnvHTTPTimeout = "OLMKIT_HTTP_TIMEOUT"
	EnvLogEnv      = "OLMKIT_LOG_ENV"
)

const (
	defaultRelayURL = "http://127.0.0.1:8080"
	defaultTimeout  = 10 * time.Second
)

// StoreConfig selects the pickle store backend.
type StoreConfig struct {
	Backend string `toml:"backend" yaml:"backend"` // "file" or "leveldb"
}

// Config holds runtime wiring options for building the app.
type Config struct {
	Home        string         `toml:"home" yaml:"home"`           // e.g. $HOME/.olmkit
	RelayURL    string         `toml:"relay_url" yaml:"relay_url"` // e.g. http://127.0.0.1:8080
	Store       StoreConfig    `toml:"store" yaml:"store"`
	HTTPTimeout time.Duration  `toml:"http_timeout" yaml:"http_timeout"`
	Log         logging.Config `toml:"log" yaml:"log"`

	HTTP *http.Client `toml:"-" yaml:"-"` // optional; built from HTTPTimeout when nil
}

// DefaultConfig returns the settings used when nothing else is given.
func DefaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		Home:        filepath.Join(home, ".olmkit"),
		RelayURL:    defaultRelayURL,
		Store:       StoreConfig{Backend: "file"},
		HTTPTimeout: defaultTimeout,
		Log:         logging.Config{Environment: "production"},
	}
}

// LoadConfig starts from DefaultConfig, decodes path when it is non-empty
// (TOML, or YAML for .yaml/.yml), then applies a .env file from the working
// directory and OLMKIT_* environment overrides.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	// A missing .env is normal.
	_ = godotenv.Load()

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Home = expandHome(cfg.Home)
	return cfg, cfg.validate()
}

func decodeFile(path string, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		b, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return fmt.Errorf("decode config %s: %w", path, err)
		}
	default:
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return fmt.Errorf("decode config %s: %w", path, err)
		}
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}
	if v := os.Getenv(EnvRelayURL); v != "" {
		cfg.RelayURL = v
	}
	if v := os.Getenv(EnvStore); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv(EnvHTTPTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvHTTPTimeout, err)
		}
		cfg.HTTPTimeout = d
	}
	if v := os.Getenv(EnvLogEnv); v != "" {
		cfg.Log.Environment = v
	}
	return nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

func (c Config) validate() error {
	switch c.Store.Backend {
	case "file", "leveldb":
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("config: negative http timeout %s", c.HTTPTimeout)
	}
	if c.Home == "" {
		return fmt.Errorf("config: empty home")
	}
	return nil
}
