package backend

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const probeTimeout = 3 * time.Second

// StorePinger reports whether the picture store is reachable.
type StorePinger interface {
	Ping(ctx context.Context) error
}

type APIService struct {
	store StorePinger
}

func NewAPIService(store StorePinger) *APIService {
	return &APIService{
		store: store,
	}
}

func (s *APIService) SetRoutes(e *echo.Echo) {
	e.GET("/probe", s.probeHandler)
}

func (s *APIService) probeHandler(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), probeTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		slog.Warn("probeHandler: store unavailable", "status", http.StatusServiceUnavailable, "error", err)
		return c.String(http.StatusServiceUnavailable, "store unavailable")
	}
	return c.String(http.StatusOK, "ok")
}
