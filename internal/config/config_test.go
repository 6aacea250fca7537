package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_MockDBDefaults(t *testing.T) {
	t.Setenv("USE_MOCK_DB", "true")
	t.Setenv("HTTP_PORT", "")

	cfg, err := LoadFromEnv(ServiceBookStore)
	require.NoError(t, err)
	assert.Equal(t, ServiceBookStore, cfg.Service)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.True(t, cfg.UseMockDB)
}

func TestLoadFromEnv_PostgresHostRequired(t *testing.T) {
	t.Setenv("USE_MOCK_DB", "")
	t.Setenv("POSTGRES_HOST", "")

	_, err := LoadFromEnv(ServiceBookStore)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_HOST")
}

func TestLoadFromEnv_PostgresDefaults(t *testing.T) {
	t.Setenv("USE_MOCK_DB", "")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_PORT", "")
	t.Setenv("POSTGRES_DATABASE", "")
	t.Setenv("POSTGRES_USER", "")

	cfg, err := LoadFromEnv(ServiceUserStore)
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.PostgresHost)
	assert.Equal(t, 5432, cfg.PostgresPort)
	assert.Equal(t, "userstore", cfg.PostgresDatabase)
	assert.Equal(t, "postgres", cfg.PostgresUser)
}

func TestLoadFromEnv_InvalidPostgresPort(t *testing.T) {
	t.Setenv("USE_MOCK_DB", "")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_PORT", "not-a-port")

	_, err := LoadFromEnv(ServiceUserStore)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_PORT")
}

func TestLoadFromEnv_TransactionsRequiresRemotes(t *testing.T) {
	t.Setenv("USE_MOCK_DB", "true")
	t.Setenv("USER_SERVICE_URL", "")
	t.Setenv("BOOK_SERVICE_URL", "")

	_, err := LoadFromEnv(ServiceTransactions)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "USER_SERVICE_URL")

	t.Setenv("USER_SERVICE_URL", "http://localhost:8082")
	_, err = LoadFromEnv(ServiceTransactions)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOOK_SERVICE_URL")
}

func TestLoadFromEnv_RemoteTimeout(t *testing.T) {
	t.Setenv("USE_MOCK_DB", "true")
	t.Setenv("USER_SERVICE_URL", "http://localhost:8082")
	t.Setenv("BOOK_SERVICE_URL", "http://localhost:8081")
	t.Setenv("REMOTE_TIMEOUT_SECONDS", "")

	cfg, err := LoadFromEnv(ServiceTransactions)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.RemoteTimeout)

	t.Setenv("REMOTE_TIMEOUT_SECONDS", "5")
	cfg, err = LoadFromEnv(ServiceTransactions)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.RemoteTimeout)

	t.Setenv("REMOTE_TIMEOUT_SECONDS", "zero")
	_, err = LoadFromEnv(ServiceTransactions)
	assert.Error(t, err)
}
