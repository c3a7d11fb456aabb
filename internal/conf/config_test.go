package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  host: 127.0.0.1
  port: 9090

database:
  host: db.internal
  port: 5432
  user: app
  password: secret
  dbname: sitedesk
  sslmode: disable

redis:
  host: cache.internal
  port: 6380
  db: 2

minio:
  endpoint: storage.internal:9000
  access_key: ak
  secret_key: sk
  use_ssl: true

log:
  level: debug
  format: console
  output: console
`

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfigFile(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "sitedesk", cfg.Database.DBName)
	assert.Equal(t, "cache.internal:6380", cfg.Redis.Addr())
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "storage.internal:9000", cfg.MinIO.Endpoint)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
