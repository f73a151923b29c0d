package frontend

import (
	"errors"
	"html/template"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/jo-hoe/picturedrop/internal/core"
	"github.com/labstack/echo/v4"
)

const (
	MainPageName  = "index.html"
	fileFieldName = "file"

	msgUploaded         = "Picture uploaded."
	msgNoFile           = "No file uploaded."
	msgNoFilename       = "No file selected."
	msgTooLarge         = "File too large."
	msgFormatNotAllowed = "File format not allowed."
	msgError            = "An error occurred."
)

type FrontendService struct {
	coreService *core.CoreService
	config      *core.ServiceConfig
}

func NewFrontendService(config *core.ServiceConfig, coreService *core.CoreService) *FrontendService {
	return &FrontendService{
		coreService: coreService,
		config:      config,
	}
}

func (service *FrontendService) SetRoutes(e *echo.Echo) {
	e.Renderer = &Template{
		templates: template.Must(template.New("").ParseFS(templateFS, viewsPattern)),
	}

	e.GET("/", service.indexHandler)
	e.POST("/upload", service.uploadHandler)
	e.GET("/icon.svg", service.iconHandler)
}

func (service *FrontendService) indexHandler(ctx echo.Context) error {
	return ctx.Render(http.StatusOK, MainPageName, nil)
}

func (service *FrontendService) uploadHandler(ctx echo.Context) error {
	name, data, err := service.readUploadedFile(ctx.Request())
	if err != nil {
		return service.uploadErrorResponse(ctx, err)
	}

	if err := service.coreService.UploadPicture(ctx.Request().Context(), name, data); err != nil {
		return service.uploadErrorResponse(ctx, err)
	}

	return ctx.String(http.StatusOK, msgUploaded)
}

// readUploadedFile returns the filename and payload of the first "file" part.
// The multipart reader is used directly because ParseMultipartForm treats a part with an
// empty filename as a plain value, which would hide the "no file selected" case.
func (service *FrontendService) readUploadedFile(r *http.Request) (string, []byte, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		slog.Warn("uploadHandler: request is not multipart", "error", err)
		return "", nil, core.ValidationError("read form", core.ErrNoFile)
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return "", nil, core.ValidationError("read form", core.ErrNoFile)
		}
		if err != nil {
			slog.Warn("uploadHandler: malformed multipart body", "error", err)
			return "", nil, core.ValidationError("read form", core.ErrNoFile)
		}
		// a "file" field without a filename parameter is a plain form value, not an upload
		if part.FormName() != fileFieldName || !hasFilenameParam(part.Header.Get("Content-Disposition")) {
			_ = part.Close()
			continue
		}

		name, data, err := service.readPart(part)
		if cerr := part.Close(); cerr != nil {
			slog.Error("uploadHandler: failed to close uploaded file reader", "error", cerr, "filename", name)
		}
		return name, data, err
	}
}

// hasFilenameParam reports whether a Content-Disposition header carries a filename
// parameter, even an empty one.
func hasFilenameParam(disposition string) bool {
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return false
	}
	_, ok := params["filename"]
	return ok
}

type filePart interface {
	io.Reader
	FileName() string
}

func (service *FrontendService) readPart(part filePart) (string, []byte, error) {
	name := part.FileName()
	if name == "" {
		return "", nil, core.ValidationError("read form", core.ErrNoFilename)
	}

	var src io.Reader = part
	maxBytes := service.config.Upload.MaxBytes
	if maxBytes > 0 {
		src = io.LimitReader(part, maxBytes+1)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		slog.Error("uploadHandler: failed to read uploaded file", "error", err, "filename", name)
		return "", nil, core.ValidationError("read form", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", nil, core.ValidationError("read form", core.ErrTooLarge)
	}
	return name, data, nil
}

func (service *FrontendService) uploadErrorResponse(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, core.ErrNoFile):
		return ctx.String(http.StatusBadRequest, msgNoFile)
	case errors.Is(err, core.ErrNoFilename):
		return ctx.String(http.StatusBadRequest, msgNoFilename)
	case errors.Is(err, core.ErrTooLarge):
		return ctx.String(http.StatusRequestEntityTooLarge, msgTooLarge)
	case errors.Is(err, core.ErrFormatNotAllowed):
		return ctx.String(http.StatusUnsupportedMediaType, msgFormatNotAllowed)
	}

	var status int
	switch core.KindOf(err) {
	case core.KindValidation:
		status = http.StatusBadRequest
	case core.KindStoreConnection:
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
	}
	slog.Error("uploadHandler: upload failed", "status", status, "kind", core.KindOf(err).String(), "error", err)
	return ctx.String(status, msgError)
}

func (service *FrontendService) iconHandler(ctx echo.Context) error {
	data, err := assetsFS.ReadFile("views/icon.svg")
	if err != nil {
		slog.Error("iconHandler: failed to read icon.svg", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load icon")
	}
	// Cache for 7 days
	ctx.Response().Header().Set("Cache-Control", "public, max-age=604800, immutable")
	return ctx.Blob(http.StatusOK, "image/svg+xml", data)
}
