package form

import (
	"context"
	"errors"
	"fmt"

	"github.com/webchatbot/panel/internal/settings"
)

// ErrInvalidNumber is reported when a numeric field has neither a usable
// input nor a usable loaded value.
var ErrInvalidNumber = errors.New("invalid number")

// Transport is the settings API as seen by the form.
type Transport interface {
	FetchSettings(ctx context.Context, botID, channel string) (settings.Document, error)
	SaveSettings(ctx context.Context, botID string, doc settings.Document) (settings.Document, error)
	ResetSettings(ctx context.Context, botID, channel string) (settings.Document, error)
	FetchDefaults(ctx context.Context, botID, channel string) (settings.Document, error)
}

// Suggestion is one editable menu chip row.
type Suggestion struct {
	Label   string
	Message string
}

// Fields is the raw, operator-editable form state. Numbers are kept as typed
// text so that invalid input can fall back at collection time.
type Fields struct {
	Temperature  string
	TopP         string
	MaxTokens    string
	RAGThreshold string

	UseRules           bool
	UseRAG             bool
	EnableDefaultRules bool
	GroundedOnly       bool

	Suggestions    []Suggestion
	PrePrompts     []string
	HelpTemplate   string
	AllowedDomains string

	// Generic no-match surface, only collected for bots with the capability.
	UseGenericNoMatch bool
	NoMatchReplies    []string
	NoMatchPick       string

	// Rules holds the committed output of the last rules editor session.
	Rules []settings.Rule
}

// FieldError describes a field that blocked collection.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s (%q): %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
