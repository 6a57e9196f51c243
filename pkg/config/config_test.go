package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, StorageDriverLocal, cfg.Storage.Driver)
	assert.Equal(t, 2*time.Hour, cfg.Wizard.SessionTTL)
	assert.Equal(t, int64(10*1024*1024), cfg.Wizard.MaxFileSizeBytes)
	assert.Equal(t, "detailed_enquiries", cfg.Wizard.ProfileCollection)
	assert.Equal(t, 10*time.Minute, cfg.Cache.CatalogTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "S3")
	t.Setenv("S3_BUCKET", "profiles")
	t.Setenv("WIZARD_SESSION_TTL", "15m")
	t.Setenv("WIZARD_MAX_FILE_SIZE", "-1")
	t.Setenv("CATALOG_CACHE_TTL", "not-a-duration")
	t.Setenv("ALLOWED_ORIGINS", "https://crm.example.com, ,https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverS3, cfg.Storage.Driver)
	assert.Equal(t, "profiles", cfg.Storage.S3Bucket)
	assert.Equal(t, 15*time.Minute, cfg.Wizard.SessionTTL)
	assert.Equal(t, int64(10*1024*1024), cfg.Wizard.MaxFileSizeBytes)
	assert.Equal(t, 10*time.Minute, cfg.Cache.CatalogTTL)
	assert.Equal(t, []string{"https://crm.example.com", "https://admin.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestUnknownStorageDriverFallsBackToLocal(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "ftp")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageDriverLocal, cfg.Storage.Driver)
}
