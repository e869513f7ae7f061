package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
session_key: test-session-key
auth:
  secret: test-secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:3000", cfg.Listen)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenValidity)
	assert.Equal(t, "session-token", cfg.Auth.CookieName)
	assert.Equal(t, 86400, cfg.Auth.CookieMaxAge)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Database.URI)
	assert.Equal(t, "whispr", cfg.Database.Name)
	assert.False(t, cfg.Email.Enabled)
	assert.False(t, cfg.Suggest.Enabled)
	assert.True(t, cfg.Cleanup.Enabled)
	assert.Equal(t, 6*time.Hour, cfg.Cleanup.Interval)
	assert.True(t, cfg.Gravatar.Enabled)
	assert.Equal(t, "mp", cfg.Gravatar.DefaultImage)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
listen: 127.0.0.1:8080
session_key: test-session-key
auth:
  secret: test-secret
  token_validity: 24h
  cookie_name: my-token
database:
  uri: mongodb://db:27017
  name: testdb
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenValidity)
	assert.Equal(t, "my-token", cfg.Auth.CookieName)
	assert.Equal(t, "mongodb://db:27017", cfg.Database.URI)
	assert.Equal(t, "testdb", cfg.Database.Name)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("WHISPR_LISTEN", "127.0.0.1:9999")

	path := writeConfig(t, `
session_key: test-session-key
auth:
  secret: test-secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.Listen)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing session key",
			content: "auth:\n  secret: test-secret\n",
			wantErr: "session_key is required",
		},
		{
			name:    "missing auth secret",
			content: "session_key: test-session-key\n",
			wantErr: "auth secret is required",
		},
		{
			name:    "email enabled without host",
			content: "session_key: k\nauth:\n  secret: s\nemail:\n  enabled: true\n",
			wantErr: "SMTP host is required",
		},
		{
			name:    "suggest enabled without api key",
			content: "session_key: k\nauth:\n  secret: s\nsuggest:\n  enabled: true\n",
			wantErr: "suggest API key is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
