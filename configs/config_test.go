package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 30*time.Second, cfg.Jobs.SyncSafetyTimeout)
	assert.Equal(t, 3, cfg.Jobs.ReminderDays)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/botdash")
	t.Setenv("SIGNAL_RETENTION", "24h")
	t.Setenv("DATABASE_MAX_CONNS", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "postgres://localhost/botdash", cfg.Database.URL)
	assert.Equal(t, 24*time.Hour, cfg.Jobs.SignalRetention)
	assert.Equal(t, int32(4), cfg.Database.MaxConns)
}

func TestLoadRejectsMalformedDuration(t *testing.T) {
	t.Setenv("SYNC_MIN_DURATION", "soon")

	_, err := Load()
	assert.Error(t, err)
}
