// Package form maps a settings document to editable form state and back.
// A Session is one open editing session for one bot; it owns the last
// loaded snapshot and the pending field values.
package form

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/webchatbot/panel/internal/bots"
	"github.com/webchatbot/panel/internal/rules"
	"github.com/webchatbot/panel/internal/settings"
)

// Session is an editing session for a single bot.
type Session struct {
	Fields Fields

	transport Transport
	bot       bots.Bot
	loaded    settings.Document
	logger    *slog.Logger
}

// Open fetches the current settings of bot and returns a populated session.
// On failure no session is returned and any prior form stays as it was.
func Open(ctx context.Context, log *slog.Logger, transport Transport, bot bots.Bot) (*Session, error) {
	doc, err := transport.FetchSettings(ctx, bot.ID, bot.Channel)
	if err != nil {
		return nil, err
	}
	return NewSession(log, transport, bot, doc), nil
}

// NewSession builds a session around an already fetched document.
func NewSession(log *slog.Logger, transport Transport, bot bots.Bot, doc settings.Document) *Session {
	if log == nil {
		log = slog.Default()
	}
	s := &Session{
		transport: transport,
		bot:       bot,
		logger:    log.With(slog.String("component", "form"), slog.String("bot_id", bot.ID)),
	}
	s.loaded = doc.Clone()
	s.Populate(doc)
	return s
}

// Bot returns the bot being edited.
func (s *Session) Bot() bots.Bot {
	return s.bot
}

// Loaded returns a copy of the last document received from the server.
func (s *Session) Loaded() settings.Document {
	return s.loaded.Clone()
}

// GenericNoMatch reports whether the generic no-match fields are part of the form.
func (s *Session) GenericNoMatch() bool {
	return s.bot.Has(bots.CapGenericNoMatch)
}

// Populate writes doc into the form fields verbatim. Out of range values are
// shown as received.
func (s *Session) Populate(doc settings.Document) {
	f := Fields{
		Temperature:        formatFloat(doc.Generation.Temperature),
		TopP:               formatFloat(doc.Generation.TopP),
		MaxTokens:          strconv.Itoa(doc.Generation.MaxTokens),
		RAGThreshold:       formatFloat(doc.RAGThreshold),
		UseRules:           doc.Features.UseRules,
		UseRAG:             doc.Features.UseRAG,
		EnableDefaultRules: doc.Features.EnableDefaultRules,
		GroundedOnly:       doc.GroundedOnly,
		Suggestions:        make([]Suggestion, 0, len(doc.MenuSuggestions)),
		PrePrompts:         append([]string{}, doc.PrePrompts...),
		HelpTemplate:       doc.HelpTemplate,
		AllowedDomains:     strings.Join(doc.AllowedDomains, ", "),
		NoMatchReplies:     append([]string{}, doc.NoMatchReplies...),
		NoMatchPick:        string(doc.NoMatchPick),
		Rules:              settings.CloneRules(doc.Rules),
	}
	if f.NoMatchPick == "" {
		f.NoMatchPick = string(settings.PickFirst)
	}
	if doc.Features.UseGenericNoMatch != nil {
		f.UseGenericNoMatch = *doc.Features.UseGenericNoMatch
	}
	for _, item := range doc.MenuSuggestions {
		f.Suggestions = append(f.Suggestions, Suggestion{Label: item.Label, Message: item.Message})
	}
	if f.Rules == nil {
		f.Rules = []settings.Rule{}
	}
	s.Fields = f
}

// Collect builds the outgoing document from the form. Numbers that cannot be
// parsed fall back to the loaded value, then every number is clamped. Rows
// missing a required value are dropped, order is kept.
func (s *Session) Collect() (settings.Document, error) {
	f := s.Fields
	loaded := s.loaded

	temperature, err := numberField("temperature", f.Temperature, loaded.Generation.Temperature)
	if err != nil {
		return settings.Document{}, err
	}
	topP, err := numberField("top_p", f.TopP, loaded.Generation.TopP)
	if err != nil {
		return settings.Document{}, err
	}
	maxTokens, err := numberField("max_tokens", f.MaxTokens, float64(loaded.Generation.MaxTokens))
	if err != nil {
		return settings.Document{}, err
	}
	threshold := loaded.RAGThreshold
	if f.UseRAG {
		threshold, err = numberField("rag_threshold", f.RAGThreshold, loaded.RAGThreshold)
		if err != nil {
			return settings.Document{}, err
		}
	} else if !isFinite(threshold) {
		return settings.Document{}, &FieldError{Field: "rag_threshold", Value: formatFloat(threshold), Err: ErrInvalidNumber}
	}

	doc := settings.Document{
		Generation: settings.Generation{
			Temperature: settings.ClampTemperature(temperature),
			TopP:        settings.ClampTopP(topP),
			MaxTokens:   settings.ClampMaxTokens(maxTokens),
		},
		Features: settings.Features{
			UseRules:           f.UseRules,
			UseRAG:             f.UseRAG,
			EnableDefaultRules: f.EnableDefaultRules,
		},
		GroundedOnly:    f.GroundedOnly,
		RAGThreshold:    settings.ClampThreshold(threshold),
		MenuSuggestions: collectSuggestions(f.Suggestions),
		PrePrompts:      settings.CleanStrings(f.PrePrompts),
		Rules:           settings.CloneRules(f.Rules),
		HelpTemplate:    f.HelpTemplate,
		AllowedDomains:  settings.SplitList(f.AllowedDomains),
	}
	if doc.Rules == nil {
		doc.Rules = []settings.Rule{}
	}

	if s.GenericNoMatch() {
		pick, err := settings.ParsePick(f.NoMatchPick)
		if err != nil {
			return settings.Document{}, &FieldError{Field: "no_match_pick", Value: f.NoMatchPick, Err: err}
		}
		use := f.UseGenericNoMatch
		doc.Features.UseGenericNoMatch = &use
		doc.NoMatchReplies = settings.CleanStrings(f.NoMatchReplies)
		doc.NoMatchPick = pick
	}
	return doc, nil
}

// Save collects the form and overwrites the stored document. On success the
// server response becomes the loaded snapshot and is shown in the form; on
// failure the form is left untouched.
func (s *Session) Save(ctx context.Context) (settings.Document, error) {
	doc, err := s.Collect()
	if err != nil {
		return settings.Document{}, err
	}
	saved, err := s.transport.SaveSettings(ctx, s.bot.ID, doc)
	if err != nil {
		s.logger.Warn("save settings failed", slog.Any("error", err))
		return settings.Document{}, err
	}
	s.loaded = saved.Clone()
	s.Populate(saved)
	s.logger.Info("settings saved")
	return saved, nil
}

// Reset asks the server to restore the bot defaults and replaces the whole
// form and snapshot with the result.
func (s *Session) Reset(ctx context.Context) (settings.Document, error) {
	doc, err := s.transport.ResetSettings(ctx, s.bot.ID, s.bot.Channel)
	if err != nil {
		s.logger.Warn("reset settings failed", slog.Any("error", err))
		return settings.Document{}, err
	}
	s.loaded = doc.Clone()
	s.Populate(doc)
	s.logger.Info("settings reset to defaults")
	return doc, nil
}

// LoadDefaults fills the form with the bot defaults without saving them.
// The loaded snapshot is kept, so Save is still required to persist.
func (s *Session) LoadDefaults(ctx context.Context) (settings.Document, error) {
	doc, err := s.transport.FetchDefaults(ctx, s.bot.ID, s.bot.Channel)
	if err != nil {
		s.logger.Warn("fetch defaults failed", slog.Any("error", err))
		return settings.Document{}, err
	}
	s.Populate(doc)
	return doc, nil
}

// EditRules opens a rules editor seeded with the form's pending rules.
func (s *Session) EditRules() *rules.Editor {
	return rules.Open(s.Fields.Rules)
}

// CommitRules stores the editor result in the form. It is only persisted by
// a later Save.
func (s *Session) CommitRules(ed *rules.Editor) {
	s.Fields.Rules = ed.Collect()
}

func collectSuggestions(rows []Suggestion) []settings.MenuItem {
	out := make([]settings.MenuItem, 0, len(rows))
	for _, row := range rows {
		label := strings.TrimSpace(row.Label)
		message := strings.TrimSpace(row.Message)
		if label == "" || message == "" {
			continue
		}
		out = append(out, settings.MenuItem{Label: label, Message: message})
	}
	return out
}

func numberField(name, raw string, fallback float64) (float64, error) {
	if v, ok := parseNumber(raw); ok {
		return v, nil
	}
	if !isFinite(fallback) {
		return 0, &FieldError{Field: name, Value: raw, Err: ErrInvalidNumber}
	}
	return fallback, nil
}

func parseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		// a cleared field reads as zero
		return 0, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !isFinite(v) {
		return 0, false
	}
	return v, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
