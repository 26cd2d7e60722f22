package chat

import (
	"context"
	"log/slog"

	"github.com/webchatbot/panel/internal/bots"
	"github.com/webchatbot/panel/internal/settings"
)

// LoadMenu fetches the suggestion chips (and the parameter summary for
// config_summary bots). Failures are logged and yield an empty menu.
func (s *Session) LoadMenu(ctx context.Context, fetcher SettingsFetcher) Menu {
	doc, err := fetcher.FetchSettings(ctx, s.bot.ID, s.channel)
	if err != nil {
		s.logger.Debug("menu suggestions unavailable", slog.Any("error", err))
		return Menu{}
	}
	menu := Menu{}
	for _, item := range doc.MenuSuggestions {
		if item.Label == "" && item.Message == "" {
			continue
		}
		menu.Suggestions = append(menu.Suggestions, item)
	}
	if s.bot.Has(bots.CapConfigSummary) {
		menu.Summary = &Summary{
			Temperature: doc.Generation.Temperature,
			TopP:        doc.Generation.TopP,
			MaxTokens:   doc.Generation.MaxTokens,
			PrePrompts:  append([]string(nil), doc.PrePrompts...),
		}
	}
	return menu
}

// ChipLabel is the text shown on a suggestion chip.
func ChipLabel(item settings.MenuItem) string {
	if item.Label != "" {
		return item.Label
	}
	return item.Message
}
