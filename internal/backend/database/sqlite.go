package database

import (
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"
)

var sqliteDialect = dialect{
	driverName: "sqlite",
	textType:   "TEXT",
	binaryType: "BLOB",
	insertSQL:  "INSERT INTO " + tableName + " (name, data) VALUES (?, ?)",
}

const sqliteBusyTimeoutPragma = "_pragma=busy_timeout(5000)"

func NewSQLiteDatabase(connectionString string) (DatabaseService, error) {
	db, err := sql.Open(sqliteDialect.driverName, withBusyTimeout(connectionString))
	if err != nil {
		return nil, err
	}
	// An in-memory database only lives as long as its connection.
	if connectionString == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	return newSQLDatabase(db, sqliteDialect), nil
}

// withBusyTimeout makes concurrent sessions on a file-backed database wait for the write
// lock instead of failing with SQLITE_BUSY. An explicit busy_timeout in the DSN wins.
func withBusyTimeout(connectionString string) string {
	if connectionString == ":memory:" || strings.Contains(connectionString, "busy_timeout") {
		return connectionString
	}
	if strings.Contains(connectionString, "?") {
		return connectionString + "&" + sqliteBusyTimeoutPragma
	}
	return connectionString + "?" + sqliteBusyTimeoutPragma
}
