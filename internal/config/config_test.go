package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REGISTRY_DRIVER", "")
	t.Setenv("IMPORT_PROFILE", "")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, s.RegistryDriver)
	assert.True(t, s.MongoEnabled)
	assert.True(t, s.S3Enabled)
	assert.Equal(t, LockAuto, s.LockDriver)
	assert.Equal(t, 2*time.Hour, s.LockTTL)
	assert.Equal(t, 500, s.Import.BatchSize)
	assert.Equal(t, "utf-8", s.Import.Encoding)
	assert.Zero(t, s.Import.WriteRetries)
}

func TestLoadSQLiteDisablesServerStores(t *testing.T) {
	t.Setenv("REGISTRY_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("S3_ENABLED", "true")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, s.RegistryDriver)
	assert.Equal(t, "/tmp/x.db", s.SQLitePath)
	assert.False(t, s.MongoEnabled)
	assert.True(t, s.S3Enabled)
}

func TestLoadImportProfileWithOverrides(t *testing.T) {
	t.Setenv("IMPORT_PROFILE", "small")
	t.Setenv("IMPORT_BATCH_SIZE", "250")
	t.Setenv("IMPORT_BATCH_DELAY", "1s")
	t.Setenv("IMPORT_SOURCE_ENCODING", "latin1")
	t.Setenv("IMPORT_WRITE_RETRIES", "not-a-number")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10000, s.Import.SessionRowLimit)
	assert.Equal(t, 250, s.Import.BatchSize)
	assert.Equal(t, time.Second, s.Import.InterBatchDelay)
	assert.Equal(t, "latin1", s.Import.Encoding)
	assert.Zero(t, s.Import.WriteRetries)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"driver":   {"REGISTRY_DRIVER", "mysql"},
		"lock":     {"IMPORT_LOCK", "zookeeper"},
		"profile":  {"IMPORT_PROFILE", "huge"},
		"batch":    {"IMPORT_BATCH_SIZE", "-3"},
		"encoding": {"IMPORT_SOURCE_ENCODING", "ebcdic"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetenvHelpers(t *testing.T) {
	t.Setenv("X_INT", " 42 ")
	t.Setenv("X_DUR", "bogus")
	t.Setenv("X_BOOL", "1")
	assert.Equal(t, 42, getenvInt("X_INT", 0))
	assert.Equal(t, 7, getenvInt("X_MISSING", 7))
	assert.Equal(t, time.Minute, getenvDuration("X_DUR", time.Minute))
	assert.True(t, getenvBool("X_BOOL", false))
	assert.Equal(t, "def", getenv("X_MISSING", "def"))
}
