// Package chat implements the chat client: one message out, one reply in.
// No conversation state is kept beyond the transcript shown to the user;
// the server owns any memory keyed by the session id.
package chat

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/webchatbot/panel/internal/bots"
	"github.com/webchatbot/panel/internal/client"
)

// Session is a chat with one bot. At most one request is in flight.
type Session struct {
	id      string
	bot     bots.Bot
	channel string
	sender  Sender
	logger  *slog.Logger

	mu         sync.Mutex
	state      State
	cancel     context.CancelFunc
	transcript []Message
}

// Option customizes a Session.
type Option func(*Session)

// WithChannel overrides the bot's default channel.
func WithChannel(channel string) Option {
	return func(s *Session) {
		if strings.TrimSpace(channel) != "" {
			s.channel = strings.TrimSpace(channel)
		}
	}
}

// WithSessionID fixes the session id instead of generating one.
func WithSessionID(id string) Option {
	return func(s *Session) {
		if strings.TrimSpace(id) != "" {
			s.id = strings.TrimSpace(id)
		}
	}
}

// NewSession starts a chat. The session id is generated once here.
func NewSession(log *slog.Logger, sender Sender, bot bots.Bot, opts ...Option) *Session {
	if log == nil {
		log = slog.Default()
	}
	s := &Session{
		id:      uuid.NewString(),
		bot:     bot,
		channel: bot.Channel,
		sender:  sender,
	}
	if s.channel == "" {
		s.channel = "web"
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = log.With(
		slog.String("component", "chat"),
		slog.String("bot_id", bot.ID),
		slog.String("session_id", s.id),
	)
	if bot.Has(bots.CapGreeting) {
		s.transcript = append(s.transcript, Message{Role: RoleBot, Text: GreetingMessage})
	}
	return s
}

// ID returns the session id sent with every message.
func (s *Session) ID() string { return s.id }

// Channel returns the channel tag sent with every message.
func (s *Session) Channel() string { return s.channel }

// Bot returns the bot this session talks to.
func (s *Session) Bot() bots.Bot { return s.bot }

// State returns the current submit state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transcript returns a copy of the messages so far.
func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.transcript...)
}

// Submit sends text and blocks until the reply, a failure or Cancel.
// Blank text is ignored with ErrEmptyMessage and a second submit while a
// reply is pending gets ErrBusy; neither touches the transcript. A transport
// failure is not returned: the apology message is appended and returned as
// the reply. After Cancel no bot message is appended and ErrCanceled is
// returned.
func (s *Session) Submit(ctx context.Context, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.state == StateAwaiting {
		s.mu.Unlock()
		return Message{}, ErrBusy
	}
	reqCtx, cancel := context.WithCancel(ctx)
	s.state = StateAwaiting
	s.cancel = cancel
	s.transcript = append(s.transcript, Message{Role: RoleUser, Text: text})
	s.mu.Unlock()

	resp, err := s.sender.SendMessage(reqCtx, client.ChatRequest{
		SessionID: s.id,
		Message:   text,
		Channel:   s.channel,
		BotID:     s.bot.ID,
	})
	canceled := client.IsCanceled(reqCtx.Err())
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
	s.cancel = nil

	if canceled {
		s.logger.Debug("chat request canceled")
		return Message{}, ErrCanceled
	}
	if err != nil {
		s.logger.Warn("chat request failed", slog.Any("error", err))
		reply := Message{Role: RoleBot, Text: ApologyMessage}
		s.transcript = append(s.transcript, reply)
		return reply, nil
	}
	text = resp.Reply
	if strings.TrimSpace(text) == "" {
		text = EmptyReply
	}
	reply := Message{Role: RoleBot, Text: text}
	s.transcript = append(s.transcript, reply)
	return reply, nil
}

// Cancel aborts the in-flight request, if any, and reports whether there was one.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return false
	}
	s.cancel()
	return true
}
