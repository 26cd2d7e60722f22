package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/webchatbot/panel/internal/bots"
)

// CatalogHandler serves the static bot list.
type CatalogHandler struct {
	path   string
	logger *slog.Logger
}

// NewCatalogHandler serves the catalog file at path.
func NewCatalogHandler(log *slog.Logger, path string) *CatalogHandler {
	return &CatalogHandler{
		path:   path,
		logger: log.With(slog.String("handler", "catalog")),
	}
}

func (h *CatalogHandler) Register(e *echo.Echo) {
	e.GET("/"+bots.DefaultCatalogPath, h.List)
}

// List godoc
// @Summary List bots
// @Description Returns the configured chatbot variants
// @Tags bots
// @Success 200 {array} bots.Bot
// @Failure 500 {object} ErrorResponse
// @Router /chatbots.json [get]
func (h *CatalogHandler) List(c echo.Context) error {
	catalog, err := bots.LoadCatalog(h.path)
	if err != nil {
		h.logger.Error("load catalog failed", slog.String("path", h.path), slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	items := catalog.Bots
	if items == nil {
		items = []bots.Bot{}
	}
	return c.JSON(http.StatusOK, items)
}
