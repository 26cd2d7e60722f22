package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/webchatbot/panel/internal/bots"
)

// requireBotID extracts and validates the :id path parameter.
func requireBotID(c echo.Context) (string, error) {
	botID := strings.TrimSpace(c.Param("id"))
	if err := bots.ValidateID(botID); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid bot id")
	}
	return botID, nil
}

// channelParam returns the optional ?channel= query value.
func channelParam(c echo.Context) string {
	return strings.TrimSpace(c.QueryParam("channel"))
}

// storeError maps a store failure to an HTTP error.
func storeError(err error) error {
	switch {
	case errors.Is(err, bots.ErrInvalidID):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid bot id")
	case errors.Is(err, context.Canceled):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "request canceled")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
