package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDBOpensSQLite(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DATABASE", filepath.Join(t.TempDir(), "config.db"))
	prev := DB
	t.Cleanup(func() { DB = prev })

	require.NoError(t, InitDB(&Settings{Environment: "production"}))
	require.NotNil(t, DB)
	assert.Equal(t, "sqlite", DB.Dialector.Name())

	sqlDB, err := DB.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())
	_ = sqlDB.Close()
}

func TestInitDBRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	err := InitDB(&Settings{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported DB_DRIVER")
}
