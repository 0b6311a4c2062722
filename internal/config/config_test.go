package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chronoforge/internal/engine"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, engine.DefaultRules(), cfg.Rules())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.DBPath = "/var/lib/chronoforge/ledger.db"
	cfg.JournalDir = "/var/lib/chronoforge/journal"
	cfg.DefaultCaller = "0x1111111111111111111111111111111111111111"
	cfg.Tuning.DailyEnergyGain = 75
	cfg.Tuning.Cooldown = "12h"
	cfg.Tuning.StreakWindow = "36h"
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	rules := got.Rules()
	assert.Equal(t, int64(75), rules.DailyEnergyGain)
	assert.Equal(t, 12*time.Hour, rules.Cooldown)
	assert.Equal(t, 36*time.Hour, rules.StreakWindow)
}

func TestLoadNormalizesInvalidValues(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
listen_addr: ""
default_caller: "not-an-address"
logging:
  level: loud
  encoding: xml
tuning:
  daily_energy_gain: -5
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, def.ListenAddr, cfg.ListenAddr)
	assert.Empty(t, cfg.DefaultCaller)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Encoding)
	assert.Equal(t, def.Tuning, cfg.Tuning)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tuning: [unterminated"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvDBPath, "/tmp/override.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override.db", cfg.DBPath)

	t.Setenv(EnvConfigPath, "/etc/chronoforge.yaml")
	p, err := ResolvePath()
	require.NoError(t, err)
	assert.Equal(t, "/etc/chronoforge.yaml", p)
}

func TestDefaultPathUsesXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/xdg", "chronoforge", "config.yaml"), p)
}

func TestNormalizeLowercasesCaller(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultCaller = "0xABCDEFabcdef0000000000000000000000000000"
	cfg.Normalize()
	assert.Equal(t, "0xabcdefabcdef0000000000000000000000000000", cfg.DefaultCaller)
}
