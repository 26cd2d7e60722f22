package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		origin string
		want   string
	}{
		{"http://localhost:5173", "http://127.0.0.1:8000"},
		{"http://127.0.0.1:5173/", "http://127.0.0.1:8000"},
		{"http://0.0.0.0:3000", "http://127.0.0.1:8000"},
		{"https://panel.example.org:5173", "https://panel.example.org:8000"},
		{"https://bots.example.org", "https://bots.example.org"},
		{"https://bots.example.org:8443/portal", "https://bots.example.org:8443"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DeriveBaseURL(tt.origin), "origin %q", tt.origin)
	}
}

func TestResolveAPIBaseURL(t *testing.T) {
	cfg := Config{API: APIConfig{Origin: DefaultOrigin}}

	t.Setenv(EnvAPIBaseURL, "")
	assert.Equal(t, "http://127.0.0.1:8000", ResolveAPIBaseURL("", cfg))

	cfg.API.BaseURL = "https://cfg.example.org/"
	assert.Equal(t, "https://cfg.example.org", ResolveAPIBaseURL("", cfg))

	t.Setenv(EnvAPIBaseURL, "https://env.example.org/")
	assert.Equal(t, "https://env.example.org", ResolveAPIBaseURL("", cfg))

	assert.Equal(t, "https://flag.example.org", ResolveAPIBaseURL(" https://flag.example.org/ ", cfg))
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	t.Setenv(EnvAllowedOrigins, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultHTTPAddr, cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Len(t, cfg.Server.AllowedOrigins, 3)
	assert.Equal(t, 30*time.Second, cfg.API.RequestTimeout())
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv(EnvAllowedOrigins, "https://a.org, https://b.org")

	path := filepath.Join(t.TempDir(), "config.toml")
	raw := `
[log]
level = "debug"
format = "json"

[api]
base_url = "https://api.example.org"
timeout = "5s"

[server]
addr = ":9000"
data_dir = "/srv/chatbots"
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "https://api.example.org", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.RequestTimeout())
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "/srv/chatbots", cfg.Server.DataDir)
	assert.Equal(t, DefaultCatalogPath, cfg.Server.CatalogPath)
	assert.Equal(t, []string{"https://a.org", "https://b.org"}, cfg.Server.AllowedOrigins)
}

func TestLoadInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log\nlevel="), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestAllowedOriginsFromEnv(t *testing.T) {
	t.Parallel()

	assert.Nil(t, AllowedOriginsFromEnv(" "))
	assert.Equal(t, []string{"*"}, AllowedOriginsFromEnv("*"))
	assert.Equal(t, []string{"a", "b"}, AllowedOriginsFromEnv("a,, b "))
}

func TestRequestTimeoutFallback(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 30*time.Second, APIConfig{Timeout: "soon"}.RequestTimeout())
	assert.Equal(t, 30*time.Second, APIConfig{Timeout: "-1s"}.RequestTimeout())
}
