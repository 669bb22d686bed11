package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultUsesDefaultFuel(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultFuel, cfg.Fuel)
	assert.False(t, cfg.Capabilities.IO)
}

func TestFindFallsBackToDefaultWhenManifestMissing(t *testing.T) {
	cfg, err := Find(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultFuel, cfg.Fuel)
}

func TestLoadParsesManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "uscript.yaml")
	contents := `
module_paths:
  - ./vendor
fuel: 5000
capabilities:
  io: true
  net: false
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"./vendor"}, cfg.ModulePaths)
	assert.Equal(t, int64(5000), cfg.Fuel)
	assert.True(t, cfg.Capabilities.IO)
	assert.False(t, cfg.Capabilities.Net)
}

func TestLoadZeroFuelFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "uscript.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fuel: 0\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultFuel, cfg.Fuel)
}

func TestFindLoadsManifestWhenPresent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "uscript.yaml"), []byte("fuel: 42\n"), 0o644))

	cfg, err := Find(dir)
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.Fuel)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
