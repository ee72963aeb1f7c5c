package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.HighCouplingThreshold)
	assert.Equal(t, 10, cfg.GodNodeThreshold)
	assert.Equal(t, 0.5, cfg.FlowAcceptRatio)
	assert.Equal(t, "TD", cfg.Direction)
}

func TestLoad_ReadsYmlAndFillsGaps(t *testing.T) {
	dir := t.TempDir()
	content := []byte("highCouplingThreshold: 12\nexcludeDirs:\n  - vendor\n  - node_modules\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "codelens.yml"), content, 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.HighCouplingThreshold)
	assert.Equal(t, []string{"vendor", "node_modules"}, cfg.ExcludeDirs)
	// Unset fields fall back to defaults.
	assert.Equal(t, 10, cfg.GodNodeThreshold)
	assert.Equal(t, 0.5, cfg.FlowAcceptRatio)
}

func TestLoad_InvalidYAMLIsAnError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "codelens.yaml"), []byte("{broken"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoad_OutOfRangeRatioFallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "codelens.yml"), []byte("flowAcceptRatio: 1.5\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.FlowAcceptRatio)
}
