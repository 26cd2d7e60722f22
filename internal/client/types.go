package client

import (
	"fmt"
	"strings"
)

// ChatRequest is the body of POST /chat/message.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Channel   string `json:"channel"`
	BotID     string `json:"bot_id"`
}

// ChatResponse is the reply of POST /chat/message.
type ChatResponse struct {
	SessionID string `json:"session_id,omitempty"`
	Reply     string `json:"reply"`
	Source    string `json:"source,omitempty"`
	Escalated bool   `json:"escalated,omitempty"`
}

// RequestError is returned for network failures and non-2xx responses.
// Client and server errors are not distinguished.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	}
	msg := fmt.Sprintf("%s %s: HTTP %d", e.Method, e.URL, e.StatusCode)
	if body := strings.TrimSpace(e.Body); body != "" {
		msg += ": " + body
	}
	return msg
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
