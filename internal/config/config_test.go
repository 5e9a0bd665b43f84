package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, 10*time.Minute, cfg.ResetTTL)
	assert.Equal(t, "0 0 * * *", cfg.DueDateSweepSpec)
}

func TestLoad_YAMLFileThenEnv(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  port: "9090"
  base_url: https://tracker.example.com
database:
  driver: postgres
  name: tracker
auth:
  jwt_secret: from-file
  jwt_ttl: 2h
scheduler:
  due_date_sweep: "30 6 * * *"
log:
  format: json
`)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("RESET_TOKEN_TTL", "300")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "https://tracker.example.com", cfg.BaseURL)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "tracker", cfg.DBName)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 5*time.Minute, cfg.ResetTTL)
	assert.Equal(t, "30 6 * * *", cfg.DueDateSweepSpec)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_TOMLFile(t *testing.T) {
	path := writeFile(t, "config.toml", `
[database]
driver = "sqlite"
dsn = "file:tracker.db"

[smtp]
host = "smtp.example.com"
from = "tracker@example.com"
`)
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "file:tracker.db", cfg.DBDSN)
	assert.Equal(t, "smtp.example.com", cfg.SMTPHost)
	assert.Equal(t, "587", cfg.SMTPPort)
	assert.Equal(t, "tracker@example.com", cfg.SMTPFrom)
}

func TestLoad_FileErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(t.TempDir(), "absent.yaml")},
		{"unsupported extension", writeFile(t, "config.json", `{}`)},
		{"bad duration", writeFile(t, "config.yml", "auth:\n  jwt_ttl: soon\n")},
		{"malformed toml", writeFile(t, "config.toml", "[database\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CONFIG_FILE", tt.path)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetEnvDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("JWT_TTL", "forever")
	assert.Equal(t, time.Hour, getEnvDuration("JWT_TTL", time.Hour))
}
