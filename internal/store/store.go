// Package store persists chatbot settings documents as JSON files,
// one per bot under <dir>/<bot_id>/settings.json.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/webchatbot/panel/internal/bots"
	"github.com/webchatbot/panel/internal/settings"
)

const fileName = "settings.json"

// FileStore reads and writes settings documents on disk.
type FileStore struct {
	dir    string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewFileStore returns a store rooted at dir.
func NewFileStore(log *slog.Logger, dir string) *FileStore {
	return &FileStore{
		dir:    dir,
		logger: log.With(slog.String("component", "settings_store")),
	}
}

// Dir returns the root directory.
func (s *FileStore) Dir() string { return s.dir }

// Path returns the settings file path for botID.
func (s *FileStore) Path(botID string) (string, error) {
	if err := bots.ValidateID(botID); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, botID, fileName), nil
}

// Load returns the stored document of botID. A missing or unreadable
// document yields the defaults for the bot and channel.
func (s *FileStore) Load(ctx context.Context, botID, channel string) (settings.Document, error) {
	path, err := s.Path(botID)
	if err != nil {
		return settings.Document{}, err
	}
	if err := ctx.Err(); err != nil {
		return settings.Document{}, err
	}

	s.mu.Lock()
	raw, err := os.ReadFile(path)
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings.Defaults(botID, channel), nil
		}
		return settings.Document{}, fmt.Errorf("read settings: %w", err)
	}

	doc := settings.Defaults(botID, channel)
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.logger.Warn("corrupt settings file, using defaults",
			slog.String("bot_id", botID),
			slog.String("path", path),
			slog.Any("error", err),
		)
		return settings.Defaults(botID, channel), nil
	}
	return settings.Normalize(doc), nil
}

// Save normalizes doc and overwrites the stored document. The last writer wins.
func (s *FileStore) Save(ctx context.Context, botID string, doc settings.Document) (settings.Document, error) {
	path, err := s.Path(botID)
	if err != nil {
		return settings.Document{}, err
	}
	if err := ctx.Err(); err != nil {
		return settings.Document{}, err
	}
	doc = settings.Normalize(doc)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return settings.Document{}, fmt.Errorf("encode settings: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeFile(path, data); err != nil {
		return settings.Document{}, err
	}
	s.logger.Info("settings saved", slog.String("bot_id", botID))
	return doc, nil
}

// Reset overwrites the stored document with the defaults and returns them.
func (s *FileStore) Reset(ctx context.Context, botID, channel string) (settings.Document, error) {
	if err := bots.ValidateID(botID); err != nil {
		return settings.Document{}, err
	}
	return s.Save(ctx, botID, settings.Defaults(botID, channel))
}

func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, fileName+".*")
	if err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
