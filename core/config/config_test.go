package config_test

import (
	"testing"

	"var-manager/core/config"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := config.LoadConfig(t.TempDir())
	assert.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "", cfg.Server.ApiKey)
	assert.Equal(t, "AddonPackages", cfg.Scan.LoadedDir)
	assert.Equal(t, 0, cfg.Scan.Workers)
	assert.Equal(t, "cache/metadata.db", cfg.Database.Path)
	assert.Equal(t, "packages", cfg.Storage.Bucket)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("SCAN_LOADED_DIR", "/data/AddonPackages")
	t.Setenv("SCAN_AVAILABLE_DIRS", "/data/library,/data/ArchivedPackages")
	t.Setenv("SCAN_WORKERS", "4")
	t.Setenv("DATABASE_PATH", ":memory:")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.LoadConfig(t.TempDir())
	assert.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, "/data/AddonPackages", cfg.Scan.LoadedDir)
	assert.Equal(t, []string{"/data/library", "/data/ArchivedPackages"}, cfg.Scan.AvailableDirList())
	assert.Equal(t, 4, cfg.Scan.Workers)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
}
