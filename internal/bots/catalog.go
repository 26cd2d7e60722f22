// Package bots loads the catalog of chatbot variants (chatbots.json).
package bots

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// DefaultCatalogPath is the catalog file name served next to the pages.
const DefaultCatalogPath = "chatbots.json"

var (
	ErrBotNotFound = errors.New("bot not found")
	ErrInvalidID   = errors.New("invalid bot id")
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateID rejects ids that are empty or could escape a storage directory.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Catalog is the ordered list of known bots.
type Catalog struct {
	Bots []Bot
}

// LoadCatalog reads the catalog at path. A missing file yields an empty catalog.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		path = DefaultCatalogPath
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Catalog{}, nil
		}
		return Catalog{}, err
	}
	return ParseCatalog(raw)
}

// ParseCatalog decodes a JSON array of bot descriptors.
func ParseCatalog(raw []byte) (Catalog, error) {
	var items []Bot
	if err := json.Unmarshal(raw, &items); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	out := make([]Bot, 0, len(items))
	for _, b := range items {
		b.ID = strings.TrimSpace(b.ID)
		if b.ID == "" {
			continue
		}
		out = append(out, b)
	}
	return Catalog{Bots: out}, nil
}

// Find returns the bot with the given id.
func (c Catalog) Find(id string) (Bot, error) {
	id = strings.TrimSpace(id)
	for _, b := range c.Bots {
		if b.ID == id {
			return b, nil
		}
	}
	return Bot{}, fmt.Errorf("%w: %s", ErrBotNotFound, id)
}
