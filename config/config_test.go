package config

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	defer func() { GlobalConfig = nil }()

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "expensetracker", cfg.Database.DBName)
	assert.Equal(t, 24, cfg.JWT.ExpireHours)
	assert.Equal(t, int64(5*1024*1024), cfg.Storage.MaxUploadBytes())
	assert.Same(t, cfg, GlobalConfig)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	defer func() { GlobalConfig = nil }()

	os.Setenv("EXPENSE_JWT_SECRET", "env-secret")
	os.Setenv("EXPENSE_SERVER_MODE", "release")
	defer os.Unsetenv("EXPENSE_JWT_SECRET")
	defer os.Unsetenv("EXPENSE_SERVER_MODE")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, "release", cfg.Server.Mode)
}

func TestStorageMaxUploadBytes(t *testing.T) {
	assert.Equal(t, int64(5*1024*1024), StorageConfig{}.MaxUploadBytes())
	assert.Equal(t, int64(2*1024*1024), StorageConfig{MaxUploadMiB: 2}.MaxUploadBytes())
}

func TestSafeErrorMessage(t *testing.T) {
	fallback := "operation failed"
	testErr := errors.New("internal database error")

	// nil err returns fallback
	assert.Equal(t, fallback, SafeErrorMessage(nil, fallback))

	// release mode hides the detail
	GlobalConfig = &Config{Server: ServerConfig{Mode: "release"}}
	defer func() { GlobalConfig = nil }()
	assert.Equal(t, fallback, SafeErrorMessage(testErr, fallback))

	// debug mode returns err.Error()
	GlobalConfig = &Config{Server: ServerConfig{Mode: "debug"}}
	assert.Equal(t, "internal database error", SafeErrorMessage(testErr, fallback))

	// nil GlobalConfig is treated as a development environment
	GlobalConfig = nil
	assert.Equal(t, "internal database error", SafeErrorMessage(testErr, fallback))
}
