// Package server exposes the sync protocol over HTTP: the client fetches its
// canonical world list and pushes change batches; the same reducer that ran
// optimistically on the client runs here against the durable store.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/GreenHouse007/world-builder/internal/domain"
	"github.com/GreenHouse007/world-builder/internal/service"
	"github.com/GreenHouse007/world-builder/internal/worldsync"
)

type Server struct {
	echo   *echo.Echo
	worlds *service.WorldService
	log    zerolog.Logger
}

func New(worlds *service.WorldService, cfg *Config, log zerolog.Logger) *Server {
	s := &Server{
		worlds: worlds,
		log:    log.With().Str("component", "http").Logger(),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(s.requestLogger())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api", actorMiddleware(cfg.AuthSecret))
	api.GET("/worlds", s.handleListWorlds)
	api.POST("/worlds/sync", s.handleSync)

	s.echo = e
	return s
}

// handleListWorlds returns the actor's canonical world list.
func (s *Server) handleListWorlds(c echo.Context) error {
	worlds, err := s.worlds.ListWorlds(c.Request().Context(), requestActor(c))
	if err != nil {
		s.log.Error().Err(err).Msg("list worlds failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "list worlds failed")
	}
	return c.JSON(http.StatusOK, emptyIfNil(worlds))
}

// handleSync applies a change batch and returns the resulting canonical
// list. Unknown change types are filtered before the reducer sees them.
func (s *Server) handleSync(c echo.Context) error {
	var changes []domain.WorldChange
	if err := c.Bind(&changes); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed change batch")
	}
	changes = worldsync.FilterKnown(changes)

	worlds, err := s.worlds.ApplyChanges(c.Request().Context(), requestActor(c), changes)
	if err != nil {
		s.log.Error().Err(err).Msg("apply changes failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "apply changes failed")
	}
	return c.JSON(http.StatusOK, emptyIfNil(worlds))
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			s.log.Info().
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", c.Response().Status).
				Dur("took", time.Since(start)).
				Err(err).
				Msg("request")
			return err
		}
	}
}

// Start blocks serving HTTP until Shutdown.
func (s *Server) Start(addr string) error {
	s.log.Info().Str("addr", addr).Msg("listening")
	err := s.echo.Start(addr)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the root handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// The client expects a JSON array even when an actor has no worlds yet.
func emptyIfNil(worlds []*domain.World) []*domain.World {
	if worlds == nil {
		return []*domain.World{}
	}
	return worlds
}
