package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
app:
  tz: UTC
  server:
    http:
      read_timeout_seconds: 15
authz:
  admins:
    - "u1"
    - " u2 "
  empty: ""
instrument:
  log_mask_fields: "password, authorization,,token"
jwt:
  ttl_minutes: 30
`

func TestNewViperFromBytes(t *testing.T) {
	_, err := NewViperFromBytes(" ", []byte(sampleYAML))
	require.ErrorIs(t, err, ErrConfigTypeRequired)

	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, cfg.Close()) })

	assert.Equal(t, "UTC", cfg.GetString("app.tz"))
	assert.Equal(t, 15*time.Second, cfg.GetSecond("app.server.http.read_timeout_seconds"))
	assert.Equal(t, 30*time.Minute, cfg.GetMinute("jwt.ttl_minutes"))
}

func TestViper_GetArray(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"u1", "u2"}, cfg.GetArray("authz.admins"))
	assert.Equal(t, []string{"password", "authorization", "token"}, cfg.GetArray("instrument.log_mask_fields"))
	assert.Empty(t, cfg.GetArray("authz.empty"))
	assert.Empty(t, cfg.GetArray("missing.key"))
}

func TestViper_EnvOverride(t *testing.T) {
	t.Setenv("MAILPRESS_APP_TZ", "Asia/Jakarta")

	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "Asia/Jakarta", cfg.GetString("app.tz"))
}
