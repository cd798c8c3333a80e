package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-forage/internal/storage"
)

const maxSessions = 100

type sessionsView int

const (
	viewRecent sessionsView = iota
	viewTop
)

func (v sessionsView) title() string {
	if v == viewTop {
		return "TOP SESSIONS"
	}
	return "RECENT SESSIONS"
}

// SessionsKeyMap defines the key bindings for the sessions browser.
type SessionsKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Select key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k SessionsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Select, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k SessionsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle},
		{k.Select, k.Quit},
	}
}

// DefaultSessionsKeyMap returns default key bindings.
func DefaultSessionsKeyMap() SessionsKeyMap {
	return SessionsKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "recent/top"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "pick for export"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// SessionsModel is the Bubble Tea model for browsing stored sessions.
type SessionsModel struct {
	store    *storage.Store
	view     sessionsView
	sessions []storage.SessionSummary
	table    table.Model
	help     help.Model
	keys     SessionsKeyMap
	width    int
	height   int
	err      error
	selected string
	quitting bool
}

// NewSessionsModel creates a new sessions browser.
func NewSessionsModel(store *storage.Store, width, height int) SessionsModel {
	m := SessionsModel{
		store:  store,
		keys:   DefaultSessionsKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	m.table = m.createTable()
	m.load()
	return m
}

func (m *SessionsModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Session", Width: 10},
		{Title: "Player", Width: 16},
		{Title: "Score", Width: 7},
		{Title: "Levels", Width: 7},
		{Title: "Ended by", Width: 16},
		{Title: "Date", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(3, m.height-8)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// load fetches sessions for the current view.
func (m *SessionsModel) load() {
	m.sessions = nil
	m.err = nil
	if m.store != nil {
		var err error
		if m.view == viewTop {
			m.sessions, err = m.store.TopSessions(maxSessions)
		} else {
			m.sessions, err = m.store.RecentSessions(maxSessions)
		}
		m.err = err
	}
	m.updateTableRows()
}

func (m *SessionsModel) updateTableRows() {
	rows := make([]table.Row, len(m.sessions))
	for i, s := range m.sessions {
		rows[i] = table.Row{
			fmt.Sprintf("%d", i+1),
			s.SessionID,
			s.PlayerName,
			fmt.Sprintf("%d", s.TotalScore),
			fmt.Sprintf("%d", s.LevelsCompleted),
			s.EndReason,
			s.EndedAt.Local().Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init initializes the sessions browser.
func (m SessionsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the sessions browser.
func (m SessionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Toggle):
			if m.view == viewTop {
				m.view = viewRecent
			} else {
				m.view = viewTop
			}
			m.load()
			return m, nil

		case key.Matches(msg, m.keys.Select):
			if i := m.table.Cursor(); i >= 0 && i < len(m.sessions) {
				m.selected = m.sessions[i].SessionID
				return m, tea.Quit
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the sessions browser.
func (m SessionsModel) View() string {
	if m.quitting || m.selected != "" {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.MarginBottom(1).Render(centerText(m.view.title(), m.width)))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	switch {
	case m.err != nil:
		b.WriteString(errStyle.Render(m.err.Error()))
	case len(m.sessions) == 0:
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		b.WriteString(tableStyle.Render(emptyStyle.Render("No sessions recorded yet.")))
	default:
		b.WriteString(tableStyle.Render(m.table.View()))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// Selected returns the session id picked with Enter, or "".
func (m SessionsModel) Selected() string {
	return m.selected
}

// RunSessions runs the sessions browser and returns the picked session id.
func RunSessions(store *storage.Store, width, height int) (string, error) {
	p := tea.NewProgram(
		NewSessionsModel(store, width, height),
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}
	m, ok := finalModel.(SessionsModel)
	if !ok {
		return "", nil
	}
	return m.Selected(), nil
}
