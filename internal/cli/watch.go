package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/derby/internal/cli/formatter"
	"github.com/alexanderramin/derby/internal/domain"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const watchInterval = time.Second

type watchKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	Stop    key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func (k watchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Stop, k.Refresh, k.Quit}
}

func (k watchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var watchKeys = watchKeyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle:  key.NewBinding(key.WithKeys("p", " "), key.WithHelp("p", "pause/resume")),
	Stop:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type (
	tickMsg     time.Time
	sessionsMsg struct {
		sessions []*domain.Session
		err      error
	}
	actionMsg struct {
		status string
		err    error
	}
)

// watchModel shows the active sessions with live durations and lets the user
// pause, resume or stop them.
type watchModel struct {
	app      *App
	keys     watchKeyMap
	help     help.Model
	sessions []*domain.Session
	cursor   int
	status   string
	err      error
	width    int
}

func newWatchModel(app *App) watchModel {
	return watchModel{app: app, keys: watchKeys, help: help.New()}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.load(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(watchInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m watchModel) load() tea.Cmd {
	return func() tea.Msg {
		sessions, err := m.app.Timer.Active(context.Background())
		return sessionsMsg{sessions: sessions, err: err}
	}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.load(), tick())

	case sessionsMsg:
		m.err = msg.err
		if msg.err == nil {
			m.sessions = msg.sessions
		}
		if m.cursor >= len(m.sessions) {
			m.cursor = max(len(m.sessions)-1, 0)
		}
		return m, nil

	case actionMsg:
		m.status = msg.status
		m.err = msg.err
		return m, m.load()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.sessions)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Refresh):
			return m, m.load()
		case key.Matches(msg, m.keys.Toggle):
			if s := m.selected(); s != nil {
				return m, m.toggle(s)
			}
		case key.Matches(msg, m.keys.Stop):
			if s := m.selected(); s != nil {
				return m, m.stop(s)
			}
		}
	}
	return m, nil
}

func (m watchModel) selected() *domain.Session {
	if m.cursor < 0 || m.cursor >= len(m.sessions) {
		return nil
	}
	return m.sessions[m.cursor]
}

func (m watchModel) toggle(s *domain.Session) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if s.IsPaused {
			_, err := m.app.Timer.Resume(ctx, s.ID)
			return actionMsg{status: "Resumed " + s.ProjectName, err: err}
		}
		_, err := m.app.Timer.Pause(ctx, s.ID)
		return actionMsg{status: "Paused " + s.ProjectName, err: err}
	}
}

func (m watchModel) stop(s *domain.Session) tea.Cmd {
	return func() tea.Msg {
		stopped, err := m.app.Timer.Stop(context.Background(), s.ID, "")
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: fmt.Sprintf("Stopped %s after %s",
			s.ProjectName, formatter.Duration(stopped.DurationSeconds(m.app.now())))}
	}
}

func (m watchModel) View() string {
	var b strings.Builder
	now := m.app.now()

	b.WriteString(formatter.Header("derby watch"))
	b.WriteString("  ")
	b.WriteString(formatter.Dim(now.In(m.app.loc()).Format("Mon 02 Jan 15:04:05")))
	b.WriteString("\n\n")

	if len(m.sessions) == 0 {
		b.WriteString(formatter.Dim("No active sessions"))
		b.WriteString("\n")
	}
	for i, s := range m.sessions {
		cursor := "  "
		name := s.ProjectName
		if i == m.cursor {
			cursor = formatter.StyleHeader.Render("> ")
			name = formatter.Bold(name)
		}
		fmt.Fprintf(&b, "%s%-24s %s  %s\n",
			cursor,
			name,
			formatter.StatePill(s),
			formatter.StyleGreen.Render(domain.FormatClock(s.DurationSeconds(now))),
		)
	}

	b.WriteString("\n")
	switch {
	case m.err != nil:
		b.WriteString(formatter.StyleRed.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	case m.status != "":
		b.WriteString(formatter.StyleGreen.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}
