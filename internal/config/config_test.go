package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, "sqlite3", c.Database.Driver)
	assert.Equal(t, 7*24*time.Hour, c.Auth.TokenTTL)
	assert.Equal(t, "gpt-4o-mini", c.Insights.Model)
	assert.InDelta(t, 0.4, c.Insights.Temperature, 1e-9)
	assert.Equal(t, 10, c.RateLimit.Burst)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "custom.yaml")
	yaml := `
server:
  addr: ":9090"
database:
  driver: postgres
  dsn: "host=db user=chat"
insights:
  model: file-model
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("JWT_SECRET", "legacy-secret")
	t.Setenv("CHATSIGHT_INSIGHTS_MODEL", "env-model")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", c.Server.Addr)
	assert.Equal(t, "postgres", c.Database.Driver)
	assert.Equal(t, "legacy-secret", c.Auth.JWTSecret)
	assert.Equal(t, "env-model", c.Insights.Model)
	assert.Equal(t, "debug", c.Logging.Level)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	c, err := Load("")
	require.NoError(t, err)

	err = c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
	assert.Contains(t, err.Error(), "api_key")

	c.Auth.JWTSecret = "s"
	c.Insights.APIKey = "k"
	assert.NoError(t, c.Validate())

	c.Insights.APIKey = ""
	c.Insights.Enabled = false
	assert.NoError(t, c.Validate())

	c.Database.Driver = "mysql"
	assert.Error(t, c.Validate())
}
