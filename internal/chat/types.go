package chat

import (
	"context"
	"errors"

	"github.com/webchatbot/panel/internal/client"
	"github.com/webchatbot/panel/internal/settings"
)

// Fixed texts shown in the transcript.
const (
	ApologyMessage  = "No pudimos contactar al servidor. Verificá que la API esté corriendo."
	EmptyReply      = "Sin respuesta"
	GreetingMessage = "¡Hola! Soy el asistente municipal. Escribí tu consulta o pedí 'ayuda' para ver las opciones disponibles."
)

var (
	ErrEmptyMessage = errors.New("empty message")
	ErrBusy         = errors.New("a reply is already pending")
	ErrCanceled     = errors.New("request canceled")
)

// Sender delivers one chat message to the API.
type Sender interface {
	SendMessage(ctx context.Context, req client.ChatRequest) (client.ChatResponse, error)
}

// SettingsFetcher reads a bot's settings; used for the menu chips.
type SettingsFetcher interface {
	FetchSettings(ctx context.Context, botID, channel string) (settings.Document, error)
}

// Role identifies who wrote a transcript line.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is one transcript line.
type Message struct {
	Role Role
	Text string
}

// State is the submit state of a session.
type State int

const (
	StateIdle State = iota
	StateAwaiting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaiting:
		return "awaiting-reply"
	}
	return "unknown"
}

// Summary mirrors the generation parameters shown for config_summary bots.
type Summary struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
	PrePrompts  []string
}

// Menu is what a chat shows before the first message.
type Menu struct {
	Suggestions []settings.MenuItem
	Summary     *Summary
}
