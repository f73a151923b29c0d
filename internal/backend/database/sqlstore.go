package database

import (
	"context"
	"database/sql"
	"fmt"
)

// dialect holds the statement differences between the database/sql backends.
type dialect struct {
	driverName string
	textType   string
	binaryType string
	insertSQL  string
}

// SQLDatabase is a picture store reachable through database/sql.
type SQLDatabase struct {
	db      *sql.DB
	dialect dialect
}

func newSQLDatabase(db *sql.DB, d dialect) *SQLDatabase {
	return &SQLDatabase{
		db:      db,
		dialect: d,
	}
}

func (s *SQLDatabase) Connect(ctx context.Context) (Session, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire %s connection: %w", s.dialect.driverName, err)
	}
	return &sqlSession{conn: conn, dialect: s.dialect}, nil
}

func (s *SQLDatabase) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type sqlSession struct {
	conn    *sql.Conn
	dialect dialect
}

func (s *sqlSession) CreateTable(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		name %s,
		data %s
	)`, tableName, s.dialect.textType, s.dialect.binaryType))
	return err
}

func (s *sqlSession) InsertPicture(ctx context.Context, picture *Picture) error {
	_, err := s.conn.ExecContext(ctx, s.dialect.insertSQL, picture.Name, picture.Data)
	return err
}

func (s *sqlSession) ListPictures(ctx context.Context) ([]*Picture, error) {
	rows, err := s.conn.QueryContext(ctx, "SELECT name, data FROM "+tableName)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close() // Explicitly ignore error as we're already returning an error from the function
	}()

	var pictures []*Picture
	for rows.Next() {
		var p Picture
		if err := rows.Scan(&p.Name, &p.Data); err != nil {
			return nil, err
		}
		pictures = append(pictures, &p)
	}
	return pictures, rows.Err()
}

func (s *sqlSession) Close() error {
	return s.conn.Close()
}
