package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  port: 8080
database:
  driver: mysql
  host: db.internal
  port: 3306
  user: app
  password: pw
  name: mediscribe
storage:
  type: local
  local:
    dir: /tmp/uploads
openai:
  apiKey: file-key
  model: gpt-4o-mini
  timeoutSeconds: 60
auth:
  jwtSecret: file-secret
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "/tmp/uploads", cfg.Storage.Local.Dir)
	assert.Equal(t, 60, cfg.OpenAI.TimeoutSeconds)
	assert.Equal(t, "app:pw@tcp(db.internal:3306)/mediscribe?parseTime=true&charset=utf8mb4&loc=UTC", cfg.MySQLDSN())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.OpenAI.APIKey)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
}

func TestPostgresDSNDefaultsSSLMode(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "host=db.internal port=3306 user=app password=pw dbname=mediscribe sslmode=disable", cfg.PostgresDSN())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
