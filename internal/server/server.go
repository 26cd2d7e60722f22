// Package server provides the HTTP server and Echo setup for the settings API.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	httphandlers "github.com/webchatbot/panel/internal/handlers"
	"github.com/webchatbot/panel/internal/logger"
)

// Server is the HTTP server (Echo) with CORS and registered handlers.
type Server struct {
	echo   *echo.Echo
	addr   string
	logger *slog.Logger
}

// Handler registers routes on the Echo instance.
type Handler interface {
	Register(e *echo.Echo)
}

// NewServer builds the Echo server with recovery, request logging, CORS for
// allowedOrigins, and the given handlers.
func NewServer(log *slog.Logger, addr string, allowedOrigins []string,
	handlers ...Handler,
) *Server {
	if addr == "" {
		addr = ":8000"
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httphandlers.NewErrorHandler(log)
	e.Use(middleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.FromContext(c.Request().Context()).Info("request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", c.RealIP()),
			)
			return nil
		},
	}))
	if len(allowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: allowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAccept, "Cache-Control"},
		}))
	}

	for _, h := range handlers {
		if h != nil {
			h.Register(e)
		}
	}

	return &Server{
		echo:   e,
		addr:   addr,
		logger: log.With(slog.String("component", "server")),
	}
}

// requestLogger stores a logger tagged with the request id in the request
// context. RequestID must run first.
func requestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := c.Response().Header().Get(echo.HeaderXRequestID)
			ctx := logger.WithContext(req.Context(), log.With(slog.String("request_id", id)))
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

// Echo exposes the underlying instance, mainly for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Start starts the HTTP server (blocks until shutdown).
func (s *Server) Start() error {
	s.logger.Info("listening", slog.String("addr", s.addr))
	return s.echo.Start(s.addr)
}

// Stop gracefully shuts down the server using the given context.
func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

