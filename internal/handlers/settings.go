package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/webchatbot/panel/internal/settings"
)

// SettingsStore is the persistence behind the settings endpoints.
type SettingsStore interface {
	Load(ctx context.Context, botID, channel string) (settings.Document, error)
	Save(ctx context.Context, botID string, doc settings.Document) (settings.Document, error)
	Reset(ctx context.Context, botID, channel string) (settings.Document, error)
}

type SettingsHandler struct {
	store  SettingsStore
	logger *slog.Logger
}

func NewSettingsHandler(log *slog.Logger, store SettingsStore) *SettingsHandler {
	return &SettingsHandler{
		store:  store,
		logger: log.With(slog.String("handler", "settings")),
	}
}

func (h *SettingsHandler) Register(e *echo.Echo) {
	group := e.Group("/chatbots/:id")
	group.GET("/settings", h.Get)
	group.PUT("/settings", h.Put)
	group.POST("/settings/reset", h.Reset)
	group.GET("/defaults", h.Defaults)
}

// Get godoc
// @Summary Get bot settings
// @Description Returns the stored settings, or the defaults when none are stored
// @Tags settings
// @Param id path string true "Bot ID"
// @Param channel query string false "Channel"
// @Success 200 {object} settings.Document
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /chatbots/{id}/settings [get]
func (h *SettingsHandler) Get(c echo.Context) error {
	botID, err := requireBotID(c)
	if err != nil {
		return err
	}
	doc, err := h.store.Load(c.Request().Context(), botID, channelParam(c))
	if err != nil {
		h.logger.Error("load settings failed", slog.String("bot_id", botID), slog.Any("error", err))
		return storeError(err)
	}
	return c.JSON(http.StatusOK, doc)
}

// Put godoc
// @Summary Replace bot settings
// @Description Overwrites the whole document; values are clamped and blank entries dropped
// @Tags settings
// @Param id path string true "Bot ID"
// @Param payload body settings.Document true "Settings document"
// @Success 200 {object} settings.Document
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /chatbots/{id}/settings [put]
func (h *SettingsHandler) Put(c echo.Context) error {
	botID, err := requireBotID(c)
	if err != nil {
		return err
	}
	// fields missing from the body keep their model-level defaults
	doc := settings.Base()
	if err := c.Bind(&doc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	if _, err := h.store.Save(ctx, botID, doc); err != nil {
		h.logger.Error("save settings failed", slog.String("bot_id", botID), slog.Any("error", err))
		return storeError(err)
	}
	stored, err := h.store.Load(ctx, botID, channelParam(c))
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, stored)
}

// Reset godoc
// @Summary Reset bot settings
// @Description Writes and returns the defaults for the bot and channel
// @Tags settings
// @Param id path string true "Bot ID"
// @Param channel query string false "Channel"
// @Success 200 {object} settings.Document
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /chatbots/{id}/settings/reset [post]
func (h *SettingsHandler) Reset(c echo.Context) error {
	botID, err := requireBotID(c)
	if err != nil {
		return err
	}
	doc, err := h.store.Reset(c.Request().Context(), botID, channelParam(c))
	if err != nil {
		h.logger.Error("reset settings failed", slog.String("bot_id", botID), slog.Any("error", err))
		return storeError(err)
	}
	return c.JSON(http.StatusOK, doc)
}

// Defaults godoc
// @Summary Get default settings
// @Description Returns the defaults for the bot and channel without storing them
// @Tags settings
// @Param id path string true "Bot ID"
// @Param channel query string false "Channel"
// @Success 200 {object} settings.Document
// @Failure 400 {object} ErrorResponse
// @Router /chatbots/{id}/defaults [get]
func (h *SettingsHandler) Defaults(c echo.Context) error {
	botID, err := requireBotID(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, settings.Defaults(botID, channelParam(c)))
}
