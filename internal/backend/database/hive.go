package database

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/beltran/gohive"
)

const hiveConnectTimeout = 10 * time.Second

type HiveConfig struct {
	Host     string
	Port     int
	Auth     string
	Database string
	Username string
	Password string
}

// HiveDatabase keeps only the HiveServer2 connection parameters. Each Connect dials a new
// connection which is torn down again when the session is closed.
type HiveDatabase struct {
	config HiveConfig
}

func NewHiveDatabase(config HiveConfig) (DatabaseService, error) {
	if config.Host == "" {
		return nil, errors.New("hive host is empty")
	}
	if config.Port == 0 {
		config.Port = 10000
	}
	if config.Auth == "" {
		config.Auth = "NONE"
	}
	return &HiveDatabase{config: config}, nil
}

func (h *HiveDatabase) connectConfiguration() *gohive.ConnectConfiguration {
	configuration := gohive.NewConnectConfiguration()
	configuration.Username = h.config.Username
	configuration.Password = h.config.Password
	configuration.Database = h.config.Database
	return configuration
}

func (h *HiveDatabase) Connect(ctx context.Context) (Session, error) {
	type result struct {
		conn *gohive.Connection
		err  error
	}
	// gohive.Connect does not take a context, so the dial runs aside and is bounded here.
	done := make(chan result, 1)
	go func() {
		conn, err := gohive.Connect(h.config.Host, h.config.Port, h.config.Auth, h.connectConfiguration())
		done <- result{conn: conn, err: err}
	}()

	ctx, cancel := context.WithTimeout(ctx, hiveConnectTimeout)
	defer cancel()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("failed to connect to hive at %s:%d: %w", h.config.Host, h.config.Port, r.err)
		}
		return &hiveSession{conn: r.conn}, nil
	case <-ctx.Done():
		go func() {
			// close the late connection, if any, once the dial finishes
			if r := <-done; r.conn != nil {
				_ = r.conn.Close()
			}
		}()
		return nil, fmt.Errorf("failed to connect to hive at %s:%d: %w", h.config.Host, h.config.Port, ctx.Err())
	}
}

func (h *HiveDatabase) Ping(ctx context.Context) error {
	session, err := h.Connect(ctx)
	if err != nil {
		return err
	}
	return session.Close()
}

func (h *HiveDatabase) Close() error {
	return nil
}

type hiveSession struct {
	conn *gohive.Connection
}

func (s *hiveSession) exec(ctx context.Context, statement string) error {
	cursor := s.conn.Cursor()
	defer cursor.Close()

	cursor.Exec(ctx, statement)
	return cursor.Err
}

func (s *hiveSession) CreateTable(ctx context.Context) error {
	return s.exec(ctx, hiveCreateTableStatement())
}

func (s *hiveSession) InsertPicture(ctx context.Context, picture *Picture) error {
	return s.exec(ctx, hiveInsertStatement(picture))
}

func (s *hiveSession) ListPictures(ctx context.Context) ([]*Picture, error) {
	cursor := s.conn.Cursor()
	defer cursor.Close()

	cursor.Exec(ctx, "SELECT name, hex(data) FROM "+tableName)
	if cursor.Err != nil {
		return nil, cursor.Err
	}

	var pictures []*Picture
	for cursor.HasMore(ctx) {
		var name, encoded string
		cursor.FetchOne(ctx, &name, &encoded)
		if cursor.Err != nil {
			return nil, cursor.Err
		}
		data, err := hex.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("failed to decode data of picture %q: %w", name, err)
		}
		pictures = append(pictures, &Picture{Name: name, Data: data})
	}
	return pictures, cursor.Err
}

func (s *hiveSession) Close() error {
	return s.conn.Close()
}

func hiveCreateTableStatement() string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (name STRING, data BINARY)", tableName)
}

// hiveInsertStatement renders the insert for HiveServer2, which has no server-side parameter
// binding: the name becomes an escaped string literal and the payload a hex literal.
func hiveInsertStatement(picture *Picture) string {
	return fmt.Sprintf("INSERT INTO TABLE %s SELECT %s, unhex('%s')",
		tableName, hiveQuote(picture.Name), hex.EncodeToString(picture.Data))
}

var hiveEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\n", `\n`,
	"\r", `\r`,
	"\x00", `\0`,
)

func hiveQuote(s string) string {
	return "'" + hiveEscaper.Replace(s) + "'"
}
