package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webchatbot/panel/internal/bots"
	"github.com/webchatbot/panel/internal/logger"
	"github.com/webchatbot/panel/internal/settings"
)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(logger.Discard(), t.TempDir())
}

func TestLoadMissingReturnsDefaults(t *testing.T) {
	t.Parallel()
	s := newStore(t)

	doc, err := s.Load(context.Background(), "municipal", "web")
	require.NoError(t, err)
	assert.Equal(t, settings.Defaults("municipal", "web"), doc)

	doc, err = s.Load(context.Background(), "mar2", "")
	require.NoError(t, err)
	assert.False(t, doc.Features.UseRules)
	assert.Empty(t, doc.MenuSuggestions)
}

func TestLoadCorruptReturnsDefaults(t *testing.T) {
	t.Parallel()
	s := newStore(t)

	path, err := s.Path("municipal")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	doc, err := s.Load(context.Background(), "municipal", "web")
	require.NoError(t, err)
	assert.Equal(t, settings.Defaults("municipal", "web"), doc)
}

func TestSaveNormalizesAndRoundTrips(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()

	in := settings.Defaults("municipal", "web")
	in.Generation.Temperature = 5
	in.Generation.MaxTokens = 0
	in.PrePrompts = []string{"  Sé breve ", ""}
	in.Rules = []settings.Rule{
		{Enabled: true, Keywords: []string{"horario"}, Response: "8 a 14", Source: settings.SourceFAQ},
		{Enabled: true, Keywords: nil, Response: "sin keywords"},
	}

	saved, err := s.Save(ctx, "municipal", in)
	require.NoError(t, err)
	assert.Equal(t, 2.0, saved.Generation.Temperature)
	assert.Equal(t, 1, saved.Generation.MaxTokens)
	assert.Equal(t, []string{"Sé breve"}, saved.PrePrompts)
	require.Len(t, saved.Rules, 1)

	loaded, err := s.Load(ctx, "municipal", "web")
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()
	s := newStore(t)

	path, err := s.Path("municipal")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{"generation":{"temperature":0.2,"top_p":0.5,"max_tokens":64}}`), 0o644))

	doc, err := s.Load(context.Background(), "municipal", "web")
	require.NoError(t, err)
	assert.Equal(t, 0.2, doc.Generation.Temperature)
	assert.Equal(t, 64, doc.Generation.MaxTokens)
	assert.Len(t, doc.MenuSuggestions, 4)
}

func TestResetWritesDefaults(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()

	doc := settings.Defaults("municipal", "web")
	doc.MenuSuggestions = nil
	_, err := s.Save(ctx, "municipal", doc)
	require.NoError(t, err)

	reset, err := s.Reset(ctx, "municipal", "web")
	require.NoError(t, err)
	assert.Equal(t, settings.Defaults("municipal", "web"), reset)

	loaded, err := s.Load(ctx, "municipal", "web")
	require.NoError(t, err)
	assert.Len(t, loaded.MenuSuggestions, 4)
}

func TestInvalidBotID(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()

	for _, id := range []string{"", "../etc", "a/b", "bot id"} {
		_, err := s.Load(ctx, id, "")
		assert.ErrorIs(t, err, bots.ErrInvalidID, "id %q", id)
		_, err = s.Save(ctx, id, settings.Document{})
		assert.ErrorIs(t, err, bots.ErrInvalidID, "id %q", id)
	}
}

func TestConcurrentSavesLastWriterWins(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			doc := settings.Defaults("municipal", "web")
			doc.Generation.MaxTokens = n
			_, err := s.Save(ctx, "municipal", doc)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	doc, err := s.Load(ctx, "municipal", "web")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, doc.Generation.MaxTokens, 1)
	assert.LessOrEqual(t, doc.Generation.MaxTokens, 8)
}
