package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var postgresDialect = dialect{
	driverName: "pgx",
	textType:   "TEXT",
	binaryType: "BYTEA",
	insertSQL:  "INSERT INTO " + tableName + " (name, data) VALUES ($1, $2)",
}

// NewPostgresDatabase opens a PostgreSQL connection pool and validates connectivity.
func NewPostgresDatabase(connectionString string) (DatabaseService, error) {
	if connectionString == "" {
		return nil, errors.New("postgres connection string is empty")
	}

	db, err := sql.Open(postgresDialect.driverName, connectionString)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return newSQLDatabase(db, postgresDialect), nil
}
