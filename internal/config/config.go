// Package config loads and exposes application configuration (TOML).
package config

import (
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Default configuration values used when a field is missing in TOML.
const (
	DefaultConfigPath  = "config.toml"
	DefaultHTTPAddr    = ":8000"
	DefaultDataDir     = "chatbots"
	DefaultCatalogPath = "chatbots.json"
	DefaultOrigin      = "http://localhost:5173"
	DefaultAPITimeout  = "30s"
	DefaultDevAPIPort  = "8000"
	DefaultDevPagePort = "5173"
)

// Environment overrides.
const (
	EnvAPIBaseURL     = "WEBCHATBOT_API_BASE_URL"
	EnvAllowedOrigins = "WEBCHATBOT_ALLOWED_ORIGINS"
	EnvConfigPath     = "CONFIG_PATH"
)

// Config is the root application configuration loaded from TOML.
type Config struct {
	Log    LogConfig    `toml:"log"`
	API    APIConfig    `toml:"api"`
	Server ServerConfig `toml:"server"`
	Theme  ThemeConfig  `toml:"theme"`
}

// LogConfig holds logging level and format (e.g. level=info, format=text).
// When File is set logs go to a rotating file instead of stdout.
type LogConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// APIConfig tells clients where the chatbot API lives.
type APIConfig struct {
	BaseURL string `toml:"base_url"`
	Origin  string `toml:"origin"`
	Timeout string `toml:"timeout"`
}

// ServerConfig holds the settings API listen address and storage paths.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	DataDir        string   `toml:"data_dir"`
	CatalogPath    string   `toml:"catalog_path"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// ThemeConfig holds the theme store location.
type ThemeConfig struct {
	Path string `toml:"path"`
}

// RequestTimeout parses the API timeout, falling back to the default.
func (c APIConfig) RequestTimeout() time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(c.Timeout)); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(DefaultAPITimeout)
	return d
}

// Load reads and parses the TOML config file at path and applies default values for missing fields.
// A .env file in the working directory is loaded first without overriding the environment.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		API: APIConfig{
			Origin:  DefaultOrigin,
			Timeout: DefaultAPITimeout,
		},
		Server: ServerConfig{
			Addr:        DefaultHTTPAddr,
			DataDir:     DefaultDataDir,
			CatalogPath: DefaultCatalogPath,
			AllowedOrigins: []string{
				"http://localhost:5173",
				"http://127.0.0.1:5173",
				"http://0.0.0.0:5173",
			},
		},
		Theme: ThemeConfig{
			Path: defaultThemePath(),
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return cfg, err
		}
	} else if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	if origins := AllowedOriginsFromEnv(os.Getenv(EnvAllowedOrigins)); origins != nil {
		cfg.Server.AllowedOrigins = origins
	}
	return cfg, nil
}

// AllowedOriginsFromEnv parses a comma separated origin list; "*" allows all.
// Empty input returns nil.
func AllowedOriginsFromEnv(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if raw == "*" {
		return []string{"*"}
	}
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// ResolveAPIBaseURL picks the API base URL: explicit override (flag), then
// WEBCHATBOT_API_BASE_URL, then api.base_url, then a value derived from
// api.origin.
func ResolveAPIBaseURL(override string, cfg Config) string {
	for _, candidate := range []string{override, os.Getenv(EnvAPIBaseURL), cfg.API.BaseURL} {
		if v := strings.TrimSpace(candidate); v != "" {
			return strings.TrimRight(v, "/")
		}
	}
	return DeriveBaseURL(cfg.API.Origin)
}

// DeriveBaseURL maps a page origin to the API base URL. Pages served by the
// dev server (port 5173 or host 0.0.0.0) talk to the API on port 8000;
// local hosts are rewritten to 127.0.0.1. Otherwise the API shares the origin.
func DeriveBaseURL(origin string) string {
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return origin
	}
	host := u.Hostname()
	if u.Port() == DefaultDevPagePort || host == "0.0.0.0" {
		switch host {
		case "localhost", "127.0.0.1", "0.0.0.0":
			host = "127.0.0.1"
		}
		return u.Scheme + "://" + net.JoinHostPort(host, DefaultDevAPIPort)
	}
	return u.Scheme + "://" + u.Host
}

func defaultThemePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "themes.toml"
	}
	return filepath.Join(dir, "webchatbot", "themes.toml")
}
