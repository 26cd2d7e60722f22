package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/webchatbot/panel/internal/chat"
)

// header and footer rows around the transcript viewport
const chromeHeight = 6

type replyMsg struct {
	reply chat.Message
	err   error
}

type menuMsg struct {
	menu chat.Menu
}

type chatModel struct {
	ctx     context.Context
	session *chat.Session
	fetcher chat.SettingsFetcher
	styles  chatStyles

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	menu     chat.Menu
	chip     int
	awaiting bool
	status   string
	width    int
	ready    bool
}

func newChatModel(ctx context.Context, session *chat.Session, fetcher chat.SettingsFetcher, styles chatStyles) chatModel {
	in := textinput.New()
	in.Placeholder = "Escribí tu consulta…"
	in.Prompt = "› "
	in.CharLimit = 2000
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.muted

	return chatModel{
		ctx:      ctx,
		session:  session,
		fetcher:  fetcher,
		styles:   styles,
		input:    in,
		viewport: viewport.New(80, 20),
		spinner:  sp,
		chip:     -1,
		width:    80,
	}
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadMenu())
}

func (m chatModel) loadMenu() tea.Cmd {
	if m.fetcher == nil {
		return nil
	}
	session, fetcher, ctx := m.session, m.fetcher, m.ctx
	return func() tea.Msg {
		return menuMsg{menu: session.LoadMenu(ctx, fetcher)}
	}
}

func (m chatModel) submit(text string) tea.Cmd {
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		reply, err := session.Submit(ctx, text)
		return replyMsg{reply: reply, err: err}
	}
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chromeHeight, 3)
		m.input.Width = max(msg.Width-4, 10)
		m.renderer = nil
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			// leaving drops the pending reply
			m.session.Cancel()
			return m, tea.Quit
		case tea.KeyEsc:
			if m.awaiting {
				if m.session.Cancel() {
					m.status = "consulta cancelada"
				}
				return m, nil
			}
			return m, tea.Quit
		case tea.KeyTab:
			if n := len(m.menu.Suggestions); n > 0 && !m.awaiting {
				m.chip = (m.chip + 1) % n
				m.input.SetValue(m.menu.Suggestions[m.chip].Message)
				m.input.CursorEnd()
			}
			return m, nil
		case tea.KeyEnter:
			if m.awaiting {
				return m, nil
			}
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.Reset()
			m.input.Blur()
			m.chip = -1
			m.awaiting = true
			m.status = ""
			return m, tea.Batch(m.submit(text), m.spinner.Tick)
		}

	case replyMsg:
		m.awaiting = false
		switch {
		case errors.Is(msg.err, chat.ErrCanceled):
			m.status = "consulta cancelada"
		case msg.err != nil:
			m.status = msg.err.Error()
		}
		m.refresh()
		cmd := m.input.Focus()
		return m, cmd

	case menuMsg:
		m.menu = msg.menu
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.awaiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		// the session appends the user line asynchronously
		m.refresh()
		return m, cmd
	}

	if !m.awaiting {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *chatModel) refresh() {
	m.viewport.SetContent(m.transcript())
	m.viewport.GotoBottom()
}

func (m *chatModel) transcript() string {
	var b strings.Builder
	if s := m.menu.Summary; s != nil {
		b.WriteString(m.styles.muted.Render(summaryLine(*s)))
		b.WriteString("\n\n")
	}
	for _, msg := range m.session.Transcript() {
		switch msg.Role {
		case chat.RoleUser:
			b.WriteString(m.styles.user.Render("Tú"))
			b.WriteString("\n")
			b.WriteString(m.styles.text.Render(msg.Text))
			b.WriteString("\n\n")
		default:
			b.WriteString(m.styles.bot.Render("Bot"))
			b.WriteString("\n")
			b.WriteString(m.markdown(msg.Text))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// markdown renders a bot reply, falling back to plain text.
func (m *chatModel) markdown(text string) string {
	if m.renderer == nil {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(m.styles.markdown),
			glamour.WithWordWrap(max(m.width-4, 20)),
		)
		if err != nil {
			return m.styles.text.Render(text) + "\n"
		}
		m.renderer = r
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return m.styles.text.Render(text) + "\n"
	}
	return strings.TrimLeft(out, "\n")
}

func (m chatModel) View() string {
	var b strings.Builder
	bot := m.session.Bot()
	b.WriteString(m.styles.title.Render(bot.DisplayName()))
	b.WriteString(m.styles.muted.Render(fmt.Sprintf("  canal %s · sesión %s", m.session.Channel(), shortID(m.session.ID()))))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.chips())
	b.WriteString("\n")
	if m.awaiting {
		b.WriteString(m.spinner.View() + m.styles.muted.Render(" esperando respuesta… (esc cancela)"))
	} else {
		b.WriteString(m.input.View())
	}
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.styles.err.Render(m.status))
	} else {
		b.WriteString(m.styles.muted.Render("enter envía · tab sugerencia · esc sale"))
	}
	return b.String()
}

func (m chatModel) chips() string {
	if len(m.menu.Suggestions) == 0 {
		return ""
	}
	parts := make([]string, 0, len(m.menu.Suggestions))
	for i, item := range m.menu.Suggestions {
		style := m.styles.chip
		if i == m.chip {
			style = m.styles.chipSelected
		}
		parts = append(parts, style.Render(chat.ChipLabel(item)))
	}
	return strings.Join(parts, " ")
}

// summaryLine describes the generation parameters for config_summary bots.
func summaryLine(s chat.Summary) string {
	line := fmt.Sprintf("Temperature: %g · Top-p: %g · Max tokens: %d", s.Temperature, s.TopP, s.MaxTokens)
	if len(s.PrePrompts) > 0 {
		line += "\nPre-prompts: " + strings.Join(s.PrePrompts, " | ")
	}
	return line
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
