package database

import (
	"fmt"
	"log/slog"
)

const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
	TypeHive     = "hive"
	TypeRedis    = "redis"
)

func NewDatabase(databaseType, connectionString string, hive HiveConfig) (database DatabaseService, err error) {
	switch databaseType {
	case TypeSQLite:
		database, err = NewSQLiteDatabase(connectionString)
	case TypePostgres:
		database, err = NewPostgresDatabase(connectionString)
	case TypeHive:
		database, err = NewHiveDatabase(hive)
	case TypeRedis:
		database, err = NewRedisDatabase(connectionString)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", databaseType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", databaseType, err)
	}

	// The pictures table is created per upload, so nothing is initialized here.
	slog.Info("database handle created", "type", databaseType)
	return database, nil
}
