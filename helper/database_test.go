package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabaseConfiguration(t *testing.T) {
	t.Run("Configuration from environment", func(t *testing.T) {
		SetTestDatabaseConfigEnvs(t, "5433")

		config, err := NewDatabaseConfiguration()
		require.NoError(t, err)
		assert.Equal(t, "localhost", config.Host)
		assert.Equal(t, "5433", config.Port)
		assert.Equal(t, "database", config.Database)
		assert.Equal(t, "user", config.Username)
		assert.Equal(t, "public", config.Schema)
		assert.Equal(t, "disable", config.SSLMode)
	})

	t.Run("Schema and sslmode fall back to defaults", func(t *testing.T) {
		SetTestDatabaseConfigEnvs(t, "5433")
		t.Setenv("DB_SCHEMA", "")
		t.Setenv("DB_SSLMODE", "")

		config, err := NewDatabaseConfiguration()
		require.NoError(t, err)
		assert.Equal(t, "public", config.Schema)
		assert.Equal(t, "disable", config.SSLMode)
	})

	t.Run("Missing host is an error", func(t *testing.T) {
		SetTestDatabaseConfigEnvs(t, "5433")
		t.Setenv("DB_HOST", "")

		_, err := NewDatabaseConfiguration()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "DB_HOST")
	})
}

func TestDatabaseConfigurationDSN(t *testing.T) {
	config := &DatabaseConfiguration{
		Host:     "db",
		Port:     "5432",
		Database: "vault",
		Username: "admin",
		Password: "secret",
		Schema:   "public",
		SSLMode:  "require",
	}

	assert.Equal(t, "host=db port=5432 dbname=vault user=admin password=secret sslmode=require search_path=public", config.DSN())
}

func TestEnvOrDefault(t *testing.T) {
	t.Run("Set variable wins", func(t *testing.T) {
		t.Setenv("VAULTGRAPH_TEST_VALUE", "set")
		assert.Equal(t, "set", EnvOrDefault("VAULTGRAPH_TEST_VALUE", "fallback"))
	})

	t.Run("Empty variable falls back", func(t *testing.T) {
		t.Setenv("VAULTGRAPH_TEST_VALUE", "")
		assert.Equal(t, "fallback", EnvOrDefault("VAULTGRAPH_TEST_VALUE", "fallback"))
	})
}

func TestNewDatabaseWithoutConfiguration(t *testing.T) {
	_, err := NewDatabase("test", nil, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "configuration is nil")
}

func TestDatabaseCloseNil(t *testing.T) {
	var db *Database
	assert.NoError(t, db.Close())
}
