// Package client talks to the chatbot API: per-bot settings, the bot catalog
// and the chat message endpoint. Every call is a single round trip with no
// retry or caching.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/webchatbot/panel/internal/bots"
	"github.com/webchatbot/panel/internal/settings"
)

const maxErrorBody = 4 << 10

// Client is an HTTP client bound to one API base URL.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger

	timeout    time.Duration
	hasTimeout bool
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the request timeout. It applies to a copy of the
// http.Client, whichever option order is used.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
		c.hasTimeout = true
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.logger = log
		}
	}
}

// New creates a client. An empty baseURL means paths are sent as-is.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: NormalizeBaseURL(baseURL),
		http:    &http.Client{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.hasTimeout {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	c.logger = c.logger.With(slog.String("component", "client"))
	return c
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// NormalizeBaseURL trims whitespace and trailing slashes.
func NormalizeBaseURL(value string) string {
	return strings.TrimRight(strings.TrimSpace(value), "/")
}

// FetchSettings reads the settings document of a bot for a channel.
func (c *Client) FetchSettings(ctx context.Context, botID, channel string) (settings.Document, error) {
	var doc settings.Document
	err := c.do(ctx, http.MethodGet, settingsPath(botID, ""), channelQuery(channel), nil, &doc)
	return doc, err
}

// SaveSettings overwrites the whole settings document and returns the stored one.
func (c *Client) SaveSettings(ctx context.Context, botID string, doc settings.Document) (settings.Document, error) {
	var out settings.Document
	err := c.do(ctx, http.MethodPut, settingsPath(botID, ""), nil, doc, &out)
	return out, err
}

// ResetSettings restores the bot defaults server-side and returns them.
func (c *Client) ResetSettings(ctx context.Context, botID, channel string) (settings.Document, error) {
	var out settings.Document
	err := c.do(ctx, http.MethodPost, settingsPath(botID, "/reset"), channelQuery(channel), nil, &out)
	return out, err
}

// FetchDefaults reads the default document without changing the stored one.
func (c *Client) FetchDefaults(ctx context.Context, botID, channel string) (settings.Document, error) {
	var out settings.Document
	err := c.do(ctx, http.MethodGet, "/chatbots/"+url.PathEscape(botID)+"/defaults", channelQuery(channel), nil, &out)
	return out, err
}

// SendMessage posts one user utterance and returns the bot reply.
func (c *Client) SendMessage(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	var out ChatResponse
	err := c.do(ctx, http.MethodPost, "/chat/message", nil, req, &out)
	return out, err
}

// FetchCatalog reads the static list of bots.
func (c *Client) FetchCatalog(ctx context.Context) (bots.Catalog, error) {
	var items []bots.Bot
	if err := c.do(ctx, http.MethodGet, "/"+bots.DefaultCatalogPath, nil, nil, &items); err != nil {
		return bots.Catalog{}, err
	}
	return bots.Catalog{Bots: items}, nil
}

func settingsPath(botID, suffix string) string {
	return "/chatbots/" + url.PathEscape(botID) + "/settings" + suffix
}

func channelQuery(channel string) url.Values {
	return url.Values{"channel": []string{channel}}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return &RequestError{Method: method, URL: target, Err: err}
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return &RequestError{Method: method, URL: target, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodGet {
		req.Header.Set("Cache-Control", "no-cache")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			slog.String("method", method),
			slog.String("url", target),
			slog.Any("error", err),
		)
		return &RequestError{Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("request",
		slog.String("method", method),
		slog.String("url", target),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &RequestError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(payload)),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RequestError{Method: method, URL: target, StatusCode: resp.StatusCode, Err: err}
	}
	return nil
}

// IsCanceled reports whether err comes from a canceled context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
