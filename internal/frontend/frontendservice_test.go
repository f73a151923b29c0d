package frontend

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/jo-hoe/picturedrop/internal/backend/database"
	"github.com/jo-hoe/picturedrop/internal/core"
	"github.com/labstack/echo/v4"
)

type testServer struct {
	echo     *echo.Echo
	database database.DatabaseService
}

func newTestServer(t *testing.T, upload core.UploadConfig) *testServer {
	t.Helper()

	db, err := database.NewSQLiteDatabase(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteDatabase error: %v", err)
	}
	config := &core.ServiceConfig{
		Database: core.Database{Type: database.TypeSQLite, ConnectionString: ":memory:"},
		Upload:   upload,
	}
	coreService := core.NewCoreServiceWithDatabase(config, db)
	t.Cleanup(func() { _ = coreService.Close() })

	e := echo.New()
	NewFrontendService(config, coreService).SetRoutes(e)
	return &testServer{echo: e, database: db}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) pictures(t *testing.T) []*database.Picture {
	t.Helper()
	ctx := context.Background()
	session, err := s.database.Connect(ctx)
	if err != nil {
		t.Fatalf("Connect error: %v", err)
	}
	defer func() { _ = session.Close() }()
	if err := session.CreateTable(ctx); err != nil {
		t.Fatalf("CreateTable error: %v", err)
	}
	pictures, err := session.ListPictures(ctx)
	if err != nil {
		t.Fatalf("ListPictures error: %v", err)
	}
	return pictures
}

// newUploadRequest builds a multipart request; a nil filename omits the file part entirely.
func newUploadRequest(t *testing.T, filename *string, data []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("comment", "hello"); err != nil {
		t.Fatalf("WriteField error: %v", err)
	}
	if filename != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="file"; filename="`+*filename+`"`)
		header.Set("Content-Type", "application/octet-stream")
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("CreatePart error: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("part.Write error: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("writer.Close error: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func strPtr(s string) *string { return &s }

func TestIndexHandler(t *testing.T) {
	server := newTestServer(t, core.UploadConfig{})

	for i := 0; i < 2; i++ {
		rec := server.do(httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `name="file"`) {
			t.Errorf("expected landing page with upload form, got %q", rec.Body.String())
		}
	}
}

func TestUploadHandler_NoFileField(t *testing.T) {
	server := newTestServer(t, core.UploadConfig{})

	rec := server.do(newUploadRequest(t, nil, nil))
	if rec.Body.String() != "No file uploaded." {
		t.Errorf("expected %q, got %q", "No file uploaded.", rec.Body.String())
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestUploadHandler_PlainFieldNamedFile(t *testing.T) {
	server := newTestServer(t, core.UploadConfig{})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("file", "not a file"); err != nil {
		t.Fatalf("WriteField error: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("writer.Close error: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rec := server.do(req)
	if rec.Body.String() != "No file uploaded." {
		t.Errorf("expected %q, got %q", "No file uploaded.", rec.Body.String())
	}
	if got := len(server.pictures(t)); got != 0 {
		t.Errorf("expected no rows, got %d", got)
	}
}

func TestUploadHandler_NotMultipart(t *testing.T) {
	server := newTestServer(t, core.UploadConfig{})

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("file=cat.png"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := server.do(req)
	if rec.Body.String() != "No file uploaded." {
		t.Errorf("expected %q, got %q", "No file uploaded.", rec.Body.String())
	}
}

func TestUploadHandler_EmptyFilename(t *testing.T) {
	server := newTestServer(t, core.UploadConfig{})

	rec := server.do(newUploadRequest(t, strPtr(""), nil))
	if rec.Body.String() != "No file selected." {
		t.Errorf("expected %q, got %q", "No file selected.", rec.Body.String())
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if got := len(server.pictures(t)); got != 0 {
		t.Errorf("expected no rows, got %d", got)
	}
}

func TestUploadHandler_StoresPicture(t *testing.T) {
	server := newTestServer(t, core.UploadConfig{})
	data := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x42}

	rec := server.do(newUploadRequest(t, strPtr("cat.png"), data))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "Picture uploaded." {
		t.Errorf("expected %q, got %q", "Picture uploaded.", rec.Body.String())
	}

	pictures := server.pictures(t)
	if len(pictures) != 1 {
		t.Fatalf("expected exactly 1 row, got %d", len(pictures))
	}
	if pictures[0].Name != "cat.png" || !bytes.Equal(pictures[0].Data, data) {
		t.Errorf("unexpected stored row: name=%q data=%v", pictures[0].Name, pictures[0].Data)
	}
}

func TestUploadHandler_SecondUploadSucceeds(t *testing.T) {
	server := newTestServer(t, core.UploadConfig{})

	for _, name := range []string{"cat.png", "cat.png"} {
		rec := server.do(newUploadRequest(t, strPtr(name), []byte("meow")))
		if rec.Code != http.StatusOK || rec.Body.String() != "Picture uploaded." {
			t.Fatalf("expected upload to succeed, got %d %q", rec.Code, rec.Body.String())
		}
	}

	if got := len(server.pictures(t)); got != 2 {
		t.Fatalf("expected 2 rows, got %d", got)
	}
}

func TestUploadHandler_TooLarge(t *testing.T) {
	server := newTestServer(t, core.UploadConfig{MaxBytes: 3})

	rec := server.do(newUploadRequest(t, strPtr("big.bin"), []byte("1234")))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}
	if rec.Body.String() != "File too large." {
		t.Errorf("expected %q, got %q", "File too large.", rec.Body.String())
	}
}

func TestUploadHandler_FormatNotAllowed(t *testing.T) {
	server := newTestServer(t, core.UploadConfig{AllowedFormats: []string{"png"}})

	rec := server.do(newUploadRequest(t, strPtr("notes.txt"), []byte("plain text")))
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415, got %d", rec.Code)
	}
	if rec.Body.String() != "File format not allowed." {
		t.Errorf("expected %q, got %q", "File format not allowed.", rec.Body.String())
	}
}

type unreachableDatabase struct{}

func (unreachableDatabase) Connect(context.Context) (database.Session, error) {
	return nil, context.DeadlineExceeded
}
func (unreachableDatabase) Ping(context.Context) error { return context.DeadlineExceeded }
func (unreachableDatabase) Close() error               { return nil }

func TestUploadHandler_StoreUnavailable(t *testing.T) {
	config := &core.ServiceConfig{}
	e := echo.New()
	NewFrontendService(config, core.NewCoreServiceWithDatabase(config, unreachableDatabase{})).SetRoutes(e)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, newUploadRequest(t, strPtr("cat.png"), []byte("x")))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	if rec.Body.String() != "An error occurred." {
		t.Errorf("expected %q, got %q", "An error occurred.", rec.Body.String())
	}
}

func TestIconHandler(t *testing.T) {
	server := newTestServer(t, core.UploadConfig{})

	rec := server.do(httptest.NewRequest(http.MethodGet, "/icon.svg", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("expected image/svg+xml, got %q", ct)
	}
}

type failingInsertSession struct{}

func (failingInsertSession) CreateTable(context.Context) error { return nil }
func (failingInsertSession) InsertPicture(context.Context, *database.Picture) error {
	return errors.New("insert rejected")
}
func (failingInsertSession) ListPictures(context.Context) ([]*database.Picture, error) {
	return nil, nil
}
func (failingInsertSession) Close() error { return nil }

type failingInsertDatabase struct{}

func (failingInsertDatabase) Connect(context.Context) (database.Session, error) {
	return failingInsertSession{}, nil
}
func (failingInsertDatabase) Ping(context.Context) error { return nil }
func (failingInsertDatabase) Close() error               { return nil }

func TestUploadHandler_InsertFails(t *testing.T) {
	config := &core.ServiceConfig{}
	e := echo.New()
	NewFrontendService(config, core.NewCoreServiceWithDatabase(config, failingInsertDatabase{})).SetRoutes(e)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, newUploadRequest(t, strPtr("cat.png"), []byte("x")))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if rec.Body.String() != "An error occurred." {
		t.Errorf("expected %q, got %q", "An error occurred.", rec.Body.String())
	}
}

func TestHasFilenameParam(t *testing.T) {
	tests := []struct {
		disposition string
		want        bool
	}{
		{`form-data; name="file"; filename="cat.png"`, true},
		{`form-data; name="file"; filename=""`, true},
		{`form-data; name="file"`, false},
		{``, false},
	}
	for _, tt := range tests {
		if got := hasFilenameParam(tt.disposition); got != tt.want {
			t.Errorf("hasFilenameParam(%q) = %v, want %v", tt.disposition, got, tt.want)
		}
	}
}
