package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"port": 8080,
		"jwt_secret": "secret",
		"database": {"host": "127.0.0.1", "dbname": "minionbase"}
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "mysql", cfg.Database.Driver)
	require.Equal(t, 3306, cfg.Database.Port)
	require.Equal(t, 72, cfg.JWTTTLHours)
	require.Equal(t, "cache_entries", cfg.Cache.TableName)
	require.Equal(t, 24, cfg.Returner.KeepHours)
	require.Equal(t, 24, cfg.Returner.EventKeepHours)
	require.Equal(t, "0 * * * *", cfg.Returner.PruneCron)
	require.Equal(t, "info", cfg.LogConfig.Level)
}

func TestLoadPostgresDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"port": 8080,
		"jwt_secret": "secret",
		"database": {"driver": "postgres", "host": "127.0.0.1", "dbname": "minionbase"}
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, 5432, cfg.Database.Port)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	path := writeConfig(t, `{
		"port": 8080,
		"jwt_secret": "secret",
		"database": {"driver": "sqlite", "host": "127.0.0.1", "dbname": "minionbase"}
	}`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRequiresSecret(t *testing.T) {
	path := writeConfig(t, `{
		"port": 8080,
		"database": {"host": "127.0.0.1", "dbname": "minionbase"}
	}`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRequiresHostWithoutDSN(t *testing.T) {
	path := writeConfig(t, `{
		"port": 8080,
		"jwt_secret": "secret",
		"database": {}
	}`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadAcceptsRawDSN(t *testing.T) {
	path := writeConfig(t, `{
		"port": 8080,
		"jwt_secret": "secret",
		"database": {"dsn": "user:pass@tcp(127.0.0.1:3306)/minionbase?parseTime=true"}
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Database.DSN)
}

func TestLoadArchiveNeedsType(t *testing.T) {
	path := writeConfig(t, `{
		"port": 8080,
		"jwt_secret": "secret",
		"database": {"host": "127.0.0.1", "dbname": "minionbase"},
		"returner": {"archive": {"data": {"dir": "/tmp"}}}
	}`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadPillarQueries(t *testing.T) {
	path := writeConfig(t, `{
		"port": 8080,
		"jwt_secret": "secret",
		"database": {"host": "127.0.0.1", "dbname": "minionbase"},
		"pillar": {"queries": [
			{"query": "SELECT section, k, v FROM pillar WHERE minion_id = ?", "depth": 2, "ignore_null": true}
		]}
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Pillar.Queries, 1)
	require.Equal(t, 2, cfg.Pillar.Queries[0].Depth)
	require.True(t, cfg.Pillar.Queries[0].IgnoreNull)
}
