package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/labstack/echo/v4"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webchatbot/panel/internal/bots"
	"github.com/webchatbot/panel/internal/chat"
	"github.com/webchatbot/panel/internal/client"
	"github.com/webchatbot/panel/internal/form"
	"github.com/webchatbot/panel/internal/handlers"
	"github.com/webchatbot/panel/internal/logger"
	"github.com/webchatbot/panel/internal/rules"
	"github.com/webchatbot/panel/internal/settings"
	"github.com/webchatbot/panel/internal/store"
	"github.com/webchatbot/panel/internal/theme"
)

const testCatalog = `[
  {"id": "municipal", "name": "Municipal", "channel": "web", "capabilities": ["greeting", "generic_no_match"]},
  {"id": "mar2", "name": "MAR2", "channel": "mar2", "capabilities": ["config_summary"]}
]`

// newAPI serves the settings endpoints and catalog from temp files.
func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	catalog := filepath.Join(dir, "chatbots.json")
	require.NoError(t, os.WriteFile(catalog, []byte(testCatalog), 0o644))

	log := logger.Discard()
	e := echo.New()
	e.HTTPErrorHandler = handlers.NewErrorHandler(log)
	handlers.NewSettingsHandler(log, store.NewFileStore(log, filepath.Join(dir, "data"))).Register(e)
	handlers.NewCatalogHandler(log, catalog).Register(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func runPanel(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func baseArgs(t *testing.T, srv *httptest.Server) []string {
	return []string{
		"--config", filepath.Join(t.TempDir(), "none.toml"),
		"--api-url", srv.URL,
		"--log-level", "error",
	}
}

func TestSettingsSetSavesAndClamps(t *testing.T) {
	srv := newAPI(t)
	args := append(baseArgs(t, srv), "-o", "json", "settings", "set", "municipal",
		"--temperature", "5", "--max-tokens", "abc", "--suggestion", "Turnos=Quiero un turno",
		"--pre-prompt", "Sé breve")

	out, err := runPanel(t, args...)
	require.NoError(t, err)

	var doc settings.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 2.0, doc.Generation.Temperature)
	assert.Equal(t, settings.DefaultMaxTokens, doc.Generation.MaxTokens)
	assert.Equal(t, []settings.MenuItem{{Label: "Turnos", Message: "Quiero un turno"}}, doc.MenuSuggestions)
	assert.Equal(t, []string{"Sé breve"}, doc.PrePrompts)

	out, err = runPanel(t, append(baseArgs(t, srv), "-o", "json", "settings", "get", "municipal")...)
	require.NoError(t, err)
	var stored settings.Document
	require.NoError(t, json.Unmarshal([]byte(out), &stored))
	assert.Equal(t, doc, stored)
}

func TestSettingsSetDropsIncompleteSuggestion(t *testing.T) {
	srv := newAPI(t)

	out, err := runPanel(t, append(baseArgs(t, srv), "-o", "json", "settings", "set", "municipal",
		"--suggestion", "Horarios=", "--suggestion", "A=B")...)
	require.NoError(t, err)
	var doc settings.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, []settings.MenuItem{{Label: "A", Message: "B"}}, doc.MenuSuggestions)

	out, err = runPanel(t, append(baseArgs(t, srv), "-o", "json", "settings", "get", "municipal")...)
	require.NoError(t, err)
	var stored settings.Document
	require.NoError(t, json.Unmarshal([]byte(out), &stored))
	assert.Equal(t, doc.MenuSuggestions, stored.MenuSuggestions)
}

func TestSettingsDryRunDoesNotSave(t *testing.T) {
	srv := newAPI(t)

	_, err := runPanel(t, append(baseArgs(t, srv), "settings", "set", "municipal", "--top-p", "0.1", "--dry-run")...)
	require.NoError(t, err)

	out, err := runPanel(t, append(baseArgs(t, srv), "-o", "json", "settings", "get", "municipal")...)
	require.NoError(t, err)
	var doc settings.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, settings.DefaultTopP, doc.Generation.TopP)
}

func TestNoMatchFlagsNeedCapability(t *testing.T) {
	srv := newAPI(t)

	_, err := runPanel(t, append(baseArgs(t, srv), "settings", "set", "mar2", "--no-match-pick", "random")...)
	assert.Error(t, err)

	out, err := runPanel(t, append(baseArgs(t, srv), "-o", "json", "settings", "set", "municipal",
		"--generic-no-match", "--no-match-reply", "No entendí", "--no-match-pick", "random")...)
	require.NoError(t, err)
	var doc settings.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.NotNil(t, doc.Features.UseGenericNoMatch)
	assert.True(t, *doc.Features.UseGenericNoMatch)
	assert.Equal(t, settings.PickRandom, doc.NoMatchPick)
}

func TestRulesAddToggleRemove(t *testing.T) {
	srv := newAPI(t)
	base := append(baseArgs(t, srv), "-o", "json")

	_, err := runPanel(t, append(base, "rules", "add", "municipal", "-k", "horario, atención", "-r", "8 a 14")...)
	require.NoError(t, err)
	_, err = runPanel(t, append(base, "rules", "add", "municipal", "-k", "turno", "-r", "Pedilo online", "--source", "fallback")...)
	require.NoError(t, err)

	out, err := runPanel(t, append(base, "rules", "toggle", "municipal", "1")...)
	require.NoError(t, err)
	var list []settings.Rule
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 2)
	assert.False(t, list[0].Enabled)
	assert.Equal(t, []string{"horario", "atención"}, list[0].Keywords)
	assert.Equal(t, settings.SourceFallback, list[1].Source)

	out, err = runPanel(t, append(base, "rules", "rm", "municipal", "1")...)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 1)
	assert.Equal(t, []string{"turno"}, list[0].Keywords)

	_, err = runPanel(t, append(base, "rules", "rm", "municipal", "7")...)
	assert.ErrorIs(t, err, rules.ErrIndexOutOfRange)

	_, err = runPanel(t, append(base, "rules", "add", "municipal", "-k", " , ", "-r", "x")...)
	assert.Error(t, err)
}

func TestSettingsResetAndDefaults(t *testing.T) {
	srv := newAPI(t)
	base := append(baseArgs(t, srv), "-o", "json")

	_, err := runPanel(t, append(base, "settings", "set", "municipal", "--clear-suggestions")...)
	require.NoError(t, err)

	out, err := runPanel(t, append(base, "settings", "defaults", "municipal")...)
	require.NoError(t, err)
	var defaults settings.Document
	require.NoError(t, json.Unmarshal([]byte(out), &defaults))
	assert.Len(t, defaults.MenuSuggestions, 4)

	out, err = runPanel(t, append(base, "settings", "reset", "municipal")...)
	require.NoError(t, err)
	var reset settings.Document
	require.NoError(t, json.Unmarshal([]byte(out), &reset))
	assert.Equal(t, defaults, reset)
}

func TestBotsListYAML(t *testing.T) {
	srv := newAPI(t)

	out, err := runPanel(t, append(baseArgs(t, srv), "-o", "yaml", "bots", "list")...)
	require.NoError(t, err)
	assert.Contains(t, out, "id: municipal")
	assert.Contains(t, out, "- config_summary")
}

func TestThemeCommands(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	themePath := filepath.Join(dir, "themes.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[theme]\npath = \""+filepath.ToSlash(themePath)+"\"\n"), 0o644))
	base := []string{"--config", cfgPath, "--log-level", "error"}

	_, err := runPanel(t, append(base, "theme", "save", "ocean", "--var", "accent=#0af", "--var", "font-size=15")...)
	require.NoError(t, err)

	out, err := runPanel(t, append(base, "-o", "json", "theme", "show")...)
	require.NoError(t, err)
	var active theme.Theme
	require.NoError(t, json.Unmarshal([]byte(out), &active))
	assert.Equal(t, "ocean", active.Name)
	assert.Equal(t, "#00aaff", active.Vars[theme.VarAccent])
	assert.Equal(t, "15px", active.Vars[theme.VarFontSize])

	_, err = runPanel(t, append(base, "theme", "save", "dark")...)
	assert.ErrorIs(t, err, theme.ErrReservedName)

	_, err = runPanel(t, append(base, "theme", "delete", "ocean")...)
	require.NoError(t, err)
	out, err = runPanel(t, append(base, "-o", "json", "theme", "show")...)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &active))
	assert.Equal(t, theme.NameDefault, active.Name)
}

func TestChatOneShotUsesApologyWhenAPIFails(t *testing.T) {
	srv := newAPI(t)

	// the test API has no /chat/message route
	out, err := runPanel(t, append(baseArgs(t, srv), "chat", "municipal", "-m", "hola")...)
	require.NoError(t, err)
	assert.Equal(t, chat.ApologyMessage, strings.TrimSpace(out))
}

func TestSettingsFlagsApply(t *testing.T) {
	t.Parallel()

	var sf settingsFlags
	fs := pflag.NewFlagSet("set", pflag.ContinueOnError)
	sf.bind(fs)
	require.NoError(t, fs.Parse([]string{"--top-p", "x", "--use-rag=false", "--allowed-domains", "a.org, b.org"}))

	fields := form.Fields{TopP: "0.9", UseRAG: true, Temperature: "0.7", UseRules: true}
	require.NoError(t, sf.apply(fs, &fields, false))
	assert.Equal(t, "x", fields.TopP)
	assert.False(t, fields.UseRAG)
	assert.True(t, fields.UseRules, "unset flags keep the loaded value")
	assert.Equal(t, "0.7", fields.Temperature)
	assert.Equal(t, "a.org, b.org", fields.AllowedDomains)
}

func TestParseSuggestion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want form.Suggestion
	}{
		{" Ayuda = ayuda ", form.Suggestion{Label: "Ayuda", Message: "ayuda"}},
		{"ayuda", form.Suggestion{Label: "ayuda", Message: "ayuda"}},
		{"Horarios=", form.Suggestion{Label: "Horarios"}},
		{"=hola", form.Suggestion{Message: "hola"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseSuggestion(tt.raw), tt.raw)
	}
}

func TestMergeVars(t *testing.T) {
	t.Parallel()

	out, err := mergeVars(map[string]string{theme.VarAccent: "#111111"}, []string{"--surface=#222", "text-primary=#333333"})
	require.NoError(t, err)
	assert.Equal(t, "#111111", out[theme.VarAccent])
	assert.Equal(t, "#222", out[theme.VarSurface])
	assert.Equal(t, "#333333", out[theme.VarTextPrimary])

	_, err = mergeVars(nil, []string{"shadow=1px"})
	assert.Error(t, err)
	_, err = mergeVars(nil, []string{"accent"})
	assert.Error(t, err)
}

func TestRuleIndex(t *testing.T) {
	t.Parallel()

	i, err := ruleIndex("3")
	require.NoError(t, err)
	assert.Equal(t, 2, i)
	_, err = ruleIndex("0")
	assert.Error(t, err)
	_, err = ruleIndex("uno")
	assert.Error(t, err)
}

func TestTermColor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, lipgloss.Color("#38bdf8"), termColor("#38bdf8"))
	assert.Equal(t, lipgloss.Color("#0f172a"), termColor("#0f172acc"))
	assert.Equal(t, lipgloss.Color("#00aaff"), termColor("#0af"))
	assert.Equal(t, lipgloss.NoColor{}, termColor("Inter"))
}

func TestSummaryLine(t *testing.T) {
	t.Parallel()

	line := summaryLine(chat.Summary{Temperature: 0.7, TopP: 0.9, MaxTokens: 256, PrePrompts: []string{"a", "b"}})
	assert.Equal(t, "Temperature: 0.7 · Top-p: 0.9 · Max tokens: 256\nPre-prompts: a | b", line)
}

type echoSender struct{}

func (echoSender) SendMessage(_ context.Context, req client.ChatRequest) (client.ChatResponse, error) {
	return client.ChatResponse{Reply: "eco: " + req.Message}, nil
}

// blockingSender holds the request until its context is done.
type blockingSender struct{ started chan struct{} }

func (b blockingSender) SendMessage(ctx context.Context, _ client.ChatRequest) (client.ChatResponse, error) {
	close(b.started)
	<-ctx.Done()
	return client.ChatResponse{}, ctx.Err()
}

func TestChatModelQuitWhileAwaiting(t *testing.T) {
	t.Parallel()

	sender := blockingSender{started: make(chan struct{})}
	session := chat.NewSession(logger.Discard(), sender, bots.Bot{ID: "mar2", Channel: "mar2"})
	m := newChatModel(context.Background(), session, nil, newChatStyles(theme.Presets()[0]))

	m.input.SetValue("hola")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(chatModel)
	require.True(t, m.awaiting)

	replies := make(chan replyMsg, 1)
	go func() { replies <- m.submit("hola")().(replyMsg) }()
	<-sender.started

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())

	reply := <-replies
	assert.ErrorIs(t, reply.err, chat.ErrCanceled)
	transcript := session.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, chat.RoleUser, transcript[0].Role)
}

func TestChatModelEscCancelsWithoutQuitting(t *testing.T) {
	t.Parallel()

	sender := blockingSender{started: make(chan struct{})}
	session := chat.NewSession(logger.Discard(), sender, bots.Bot{ID: "mar2", Channel: "mar2"})
	m := newChatModel(context.Background(), session, nil, newChatStyles(theme.Presets()[0]))
	m.awaiting = true

	replies := make(chan replyMsg, 1)
	go func() { replies <- m.submit("hola")().(replyMsg) }()
	<-sender.started

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(chatModel)
	assert.Nil(t, cmd)
	assert.Equal(t, "consulta cancelada", m.status)
	assert.ErrorIs(t, (<-replies).err, chat.ErrCanceled)
}

func TestChatModelSubmitFlow(t *testing.T) {
	t.Parallel()

	session := chat.NewSession(logger.Discard(), echoSender{}, bots.Bot{ID: "mar2", Channel: "mar2"})
	m := newChatModel(context.Background(), session, nil, newChatStyles(theme.Presets()[0]))

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(chatModel)

	// blank input is ignored
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(chatModel)
	assert.Nil(t, cmd)
	assert.False(t, m.awaiting)

	m.input.SetValue("hola")
	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(chatModel)
	require.NotNil(t, cmd)
	assert.True(t, m.awaiting)
	assert.Empty(t, m.input.Value())

	var reply replyMsg
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	for _, c := range batch {
		if c == nil {
			continue
		}
		if r, ok := c().(replyMsg); ok {
			reply = r
		}
	}
	require.NoError(t, reply.err)
	assert.Equal(t, "eco: hola", reply.reply.Text)

	next, _ = m.Update(reply)
	m = next.(chatModel)
	assert.False(t, m.awaiting)
	assert.Len(t, session.Transcript(), 2)
	assert.Contains(t, m.View(), "Tú")
}

func TestChatModelTabCyclesChips(t *testing.T) {
	t.Parallel()

	session := chat.NewSession(logger.Discard(), echoSender{}, bots.Bot{ID: "municipal"})
	m := newChatModel(context.Background(), session, nil, newChatStyles(theme.Presets()[0]))
	next, _ := m.Update(menuMsg{menu: chat.Menu{Suggestions: []settings.MenuItem{
		{Label: "Turnos", Message: "Quiero un turno"},
		{Label: "Ayuda", Message: "ayuda"},
	}}})
	m = next.(chatModel)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(chatModel)
	assert.Equal(t, "Quiero un turno", m.input.Value())
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(chatModel)
	assert.Equal(t, "ayuda", m.input.Value())
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(chatModel)
	assert.Equal(t, 0, m.chip)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}
