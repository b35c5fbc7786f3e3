package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadArgs_Defaults(t *testing.T) {
	cfg := LoadArgs(filepath.Join(t.TempDir(), "absent.json"), nil)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "reference/catalogs", cfg.CatalogsDir)
	assert.Empty(t, cfg.DBURL)
	assert.False(t, cfg.AutoMigrate)
}

func TestLoadArgs_Layering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"port":"9000","debug":true}`), 0o644))

	cfg := LoadArgs(path, nil)
	assert.Equal(t, "9000", cfg.Port, "file overrides defaults")
	assert.True(t, cfg.Debug)
	assert.Equal(t, "reference/catalogs", cfg.CatalogsDir, "unset keys keep defaults")

	t.Setenv("MOP_PORT", "9100")
	cfg = LoadArgs(path, nil)
	assert.Equal(t, "9100", cfg.Port, "environment overrides file")

	cfg = LoadArgs(path, []string{"-port", "9200", "-db", "postgres://x", "-auto-migrate"})
	assert.Equal(t, "9200", cfg.Port, "flags override environment")
	assert.Equal(t, "postgres://x", cfg.DBURL)
	assert.True(t, cfg.AutoMigrate)
}

func TestLoadArgs_ConfigFlagSwitchesFile(t *testing.T) {
	dir := t.TempDir()
	alt := filepath.Join(dir, "alt.json")
	require.NoError(t, os.WriteFile(alt, []byte(`{"port":"7000"}`), 0o644))

	cfg := LoadArgs(filepath.Join(dir, "config.json"), []string{"-config", alt})
	assert.Equal(t, "7000", cfg.Port)
}

func TestLoadArgs_EnvBoolSpellings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.json")
	for v, want := range map[string]bool{"1": true, "yes": true, "false": false, "garbage": false} {
		t.Setenv("MOP_AUTO_MIGRATE", v)
		assert.Equal(t, want, LoadArgs(path, nil).AutoMigrate, v)
	}
}
