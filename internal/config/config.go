package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"

	"github.com/minionops/minionbase/internal/pkg/dbutil"
)

type Config struct {
	Port        int              `json:"port"`
	JWTSecret   string           `json:"jwt_secret"`
	JWTTTLHours int              `json:"jwt_ttl_hours"`
	LogConfig   logger.LogConfig `json:"log_config"`
	Database    DatabaseConfig   `json:"database"`
	Cache       CacheConfig      `json:"cache"`
	Pillar      PillarConfig     `json:"pillar"`
	Returner    ReturnerConfig   `json:"returner"`
}

type DatabaseConfig struct {
	Driver       string `json:"driver"`
	Host         string `json:"host"`
	Port         int    `json:"port"`
	User         string `json:"user"`
	Password     string `json:"password"`
	DBName       string `json:"dbname"`
	SSLMode      string `json:"sslmode"`
	DSN          string `json:"dsn"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
}

type CacheConfig struct {
	TableName     string `json:"table_name"`
	LRUSize       int    `json:"lru_size"`
	LRUTTLSeconds int    `json:"lru_ttl_seconds"`
}

type PillarConfig struct {
	Queries []PillarQueryConfig `json:"queries"`
}

type PillarQueryConfig struct {
	Query      string `json:"query"`
	Depth      int    `json:"depth"`
	AsList     bool   `json:"as_list"`
	IgnoreNull bool   `json:"ignore_null"`
	WithLists  []int  `json:"with_lists"`
}

type ReturnerConfig struct {
	KeepHours      int            `json:"keep_hours"`
	EventKeepHours int            `json:"event_keep_hours"`
	PruneCron      string         `json:"prune_cron"`
	Archive        *ArchiveConfig `json:"archive"`
}

type ArchiveConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	if cfg.JWTTTLHours == 0 {
		cfg.JWTTTLHours = 72
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = dbutil.DriverMySQL
	}
	if cfg.Database.Driver != dbutil.DriverMySQL && cfg.Database.Driver != dbutil.DriverPostgres {
		return nil, fmt.Errorf("database.driver must be mysql or postgres")
	}
	if cfg.Database.DSN == "" {
		if cfg.Database.Host == "" || cfg.Database.DBName == "" {
			return nil, fmt.Errorf("database.host and database.dbname are required when dsn is not set")
		}
		if cfg.Database.Port == 0 {
			if cfg.Database.Driver == dbutil.DriverPostgres {
				cfg.Database.Port = 5432
			} else {
				cfg.Database.Port = 3306
			}
		}
	}
	if cfg.Cache.TableName == "" {
		cfg.Cache.TableName = "cache_entries"
	}
	if cfg.Returner.KeepHours == 0 {
		cfg.Returner.KeepHours = 24
	}
	if cfg.Returner.EventKeepHours == 0 {
		cfg.Returner.EventKeepHours = cfg.Returner.KeepHours
	}
	if cfg.Returner.PruneCron == "" {
		cfg.Returner.PruneCron = "0 * * * *"
	}
	if cfg.Returner.Archive != nil && cfg.Returner.Archive.Type == "" {
		return nil, fmt.Errorf("returner.archive.type is required when archive is set")
	}
	return &cfg, nil
}
