package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/radif/blobprovider/internal/storage"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("AZURE_MAX_CONCURRENT", "")
	t.Setenv("MAX_UPLOAD_SIZE_MB", "")

	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, storage.BackendAzure, cfg.Storage.Backend)
	assert.Equal(t, int64(256)<<20, cfg.MaxUploadBytes())
	assert.Equal(t, storage.DefaultConcurrency, cfg.StorageOptions().MaxConcurrent)
	assert.False(t, cfg.IsProduction())
}

func TestFromEnvStorage(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "Azure")
	t.Setenv("AZURE_ACCOUNT", " acct ")
	t.Setenv("AZURE_ACCOUNT_KEY", "key")
	t.Setenv("AZURE_CONTAINER_NAME_PUBLIC", "pub")
	t.Setenv("AZURE_CONTAINER_NAME_PRIVATE", "priv")
	t.Setenv("AZURE_CDN_ROOT", "https://cdn.example.com")
	t.Setenv("AZURE_MAX_CONCURRENT", "8")

	opts := FromEnv().StorageOptions()
	assert.Equal(t, "azure", opts.Backend)
	assert.Equal(t, "acct", opts.Account)
	assert.True(t, opts.Dual())
	assert.Equal(t, "https://cdn.example.com", opts.CDNRoot)
	assert.Equal(t, 8, opts.MaxConcurrent)
}

func TestFromEnvNonNumericConcurrency(t *testing.T) {
	t.Setenv("AZURE_MAX_CONCURRENT", "many")
	t.Setenv("MAX_UPLOAD_SIZE_MB", "-1")

	cfg := FromEnv()
	assert.Equal(t, storage.DefaultConcurrency, cfg.StorageOptions().MaxConcurrent)
	assert.Equal(t, int64(256), cfg.MaxUploadSizeMB)
}
