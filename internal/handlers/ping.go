package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/webchatbot/panel/internal/version"
)

// PingHandler answers liveness probes.
type PingHandler struct {
	logger *slog.Logger
}

// PingResponse is the body of GET /ping.
type PingResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func NewPingHandler(log *slog.Logger) *PingHandler {
	return &PingHandler{logger: log.With(slog.String("handler", "ping"))}
}

func (h *PingHandler) Register(e *echo.Echo) {
	e.GET("/ping", h.Ping)
	e.HEAD("/health", h.Health)
}

// Ping godoc
// @Summary Liveness check
// @Tags system
// @Success 200 {object} PingResponse
// @Router /ping [get]
func (h *PingHandler) Ping(c echo.Context) error {
	return c.JSON(http.StatusOK, PingResponse{Status: "ok", Version: version.GetInfo()})
}

// Health returns 200 with no body for load balancer checks.
func (h *PingHandler) Health(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}
