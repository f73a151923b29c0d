package core

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/jo-hoe/picturedrop/internal/backend/database"
	"github.com/jo-hoe/picturedrop/internal/backend/imageformat"
)

type CoreService struct {
	config          *ServiceConfig
	databaseService database.DatabaseService
}

func NewCoreService(config *ServiceConfig) (*CoreService, error) {
	databaseService, err := getDatabaseService(config)
	if err != nil {
		return nil, err
	}
	return NewCoreServiceWithDatabase(config, databaseService), nil
}

func NewCoreServiceWithDatabase(config *ServiceConfig, databaseService database.DatabaseService) *CoreService {
	return &CoreService{
		config:          config,
		databaseService: databaseService,
	}
}

// UploadPicture stores one picture. Every call acquires its own store session and
// releases it before returning, whether or not the statements succeeded.
func (service *CoreService) UploadPicture(ctx context.Context, name string, data []byte) error {
	if err := service.validateUpload(name, data); err != nil {
		return err
	}

	session, err := service.databaseService.Connect(ctx)
	if err != nil {
		slog.Error("UploadPicture: failed to connect to store", "error", err, "filename", name)
		return &Error{Kind: KindStoreConnection, Op: "connect", Err: err}
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			slog.Error("UploadPicture: failed to release store session", "error", cerr, "filename", name)
		}
	}()

	if err := session.CreateTable(ctx); err != nil {
		slog.Error("UploadPicture: failed to create pictures table", "error", err)
		return &Error{Kind: KindStoreQuery, Op: "create table", Err: err}
	}

	if err := session.InsertPicture(ctx, &database.Picture{Name: name, Data: data}); err != nil {
		slog.Error("UploadPicture: failed to insert picture", "error", err, "filename", name, "size_bytes", len(data))
		return &Error{Kind: KindStoreQuery, Op: "insert", Err: err}
	}

	slog.Info("picture stored", "filename", name, "size_bytes", len(data))
	return nil
}

func (service *CoreService) validateUpload(name string, data []byte) error {
	if name == "" {
		return ValidationError("validate", ErrNoFilename)
	}

	upload := service.config.Upload
	if upload.MaxBytes > 0 && int64(len(data)) > upload.MaxBytes {
		return ValidationError("validate", ErrTooLarge)
	}

	if len(upload.AllowedFormats) > 0 {
		format, err := imageformat.Detect(data)
		if err != nil || !slices.Contains(upload.AllowedFormats, format) {
			slog.Warn("UploadPicture: rejected upload format", "filename", name, "format", format, "error", err)
			return ValidationError("validate", ErrFormatNotAllowed)
		}
	}

	return nil
}

func (service *CoreService) Ping(ctx context.Context) error {
	return service.databaseService.Ping(ctx)
}

func (service *CoreService) Close() error {
	if service.databaseService == nil {
		return nil
	}
	return service.databaseService.Close()
}

func getDatabaseService(config *ServiceConfig) (database.DatabaseService, error) {
	databaseService, err := database.NewDatabase(config.Database.Type, config.Database.ConnectionString, config.hiveConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("database initialized successfully", "type", config.Database.Type)
	return databaseService, nil
}
