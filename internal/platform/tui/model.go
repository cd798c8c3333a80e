package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-forage/internal/core"
	"github.com/vovakirdan/tui-forage/internal/export"
	"github.com/vovakirdan/tui-forage/internal/forage"
	"github.com/vovakirdan/tui-forage/internal/storage"
)

type screenState int

const (
	stateNameEntry screenState = iota
	stateInstructions
	statePlaying
	stateSummary
)

// maxNameLength bounds the participant name.
const maxNameLength = 24

// Options configures a Model.
type Options struct {
	Engine  forage.Config
	Runtime core.RuntimeConfig

	// Store receives every finished session. May be nil.
	Store *storage.Store
	// ExportDir receives CSV and JSON files of every finished session.
	// Empty disables file export.
	ExportDir string

	Logger *log.Logger
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Model is the Bubble Tea model for one participant: name entry,
// instructions, the task itself and the end-of-session summary.
type Model struct {
	opts       Options
	logger     *log.Logger
	clock      func() time.Time
	screen     *core.Screen
	keyMapper  *KeyMapper
	inputFrame core.InputFrame
	nameInput  textinput.Model
	state      screenState
	width      int
	height     int

	session *forage.Session
	outcome *sessionOutcome
	err     error

	quitting bool
}

// sessionOutcome is what the summary screen shows about a finished session.
type sessionOutcome struct {
	SessionID       string
	TotalScore      int
	LevelsCompleted int
	EndReason       string
	HighScore       int
	Saved           bool
	Exported        []string
}

// NewModel creates a new Bubble Tea model.
func NewModel(opts Options) Model {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	ti := textinput.New()
	ti.Placeholder = "participant name"
	ti.CharLimit = maxNameLength
	ti.Width = maxNameLength
	ti.SetValue(opts.Runtime.PlayerName)
	ti.Focus()

	w, h := opts.Runtime.ScreenW, opts.Runtime.ScreenH
	return Model{
		opts:       opts,
		logger:     logger,
		clock:      opts.Clock,
		screen:     core.NewScreen(w, h),
		keyMapper:  NewKeyMapper(),
		inputFrame: core.NewInputFrame(),
		nameInput:  ti,
		width:      w,
		height:     h,
	}
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tickCmd(m.opts.Runtime.TickRate))
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TickMsg:
		return m.handleTick()
	}

	if m.state == stateNameEntry {
		var cmd tea.Cmd
		m.nameInput, cmd = m.nameInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateNameEntry:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			if strings.TrimSpace(m.nameInput.Value()) == "" {
				return m, nil
			}
			m.state = stateInstructions
			return m, nil
		}
		var cmd tea.Cmd
		m.nameInput, cmd = m.nameInput.Update(msg)
		return m, cmd

	case stateInstructions:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "enter", " ":
			return m.startSession()
		}
		return m, nil

	case statePlaying:
		if m.keyMapper.MapKeyToFrame(msg, &m.inputFrame, m.clock()) {
			m.inputFrame.Set(core.ActionQuit)
		}
		return m, nil

	case stateSummary:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter", "r":
			m.session = nil
			m.outcome = nil
			m.state = stateInstructions
			return m, nil
		}
	}
	return m, nil
}

// startSession creates and starts a new engine session.
func (m Model) startSession() (tea.Model, tea.Cmd) {
	name := strings.TrimSpace(m.nameInput.Value())
	opts := []forage.Option{forage.WithPlayerName(name)}
	if m.opts.Runtime.Seed != 0 {
		opts = append(opts, forage.WithSeed(m.opts.Runtime.Seed))
	}

	session, err := forage.NewSession(m.opts.Engine, opts...)
	if err != nil {
		m.err = err
		m.logger.Error("cannot start session", "error", err)
		return m, nil
	}

	now := m.clock()
	session.Start(now)
	m.session = session
	m.err = nil
	m.state = statePlaying
	m.inputFrame.Clear()
	m.logger.Info("session started", "session", session.ID(), "player", name)
	return m, nil
}

// handleTick advances the engine once. The clock is read exactly once.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	next := tickCmd(m.opts.Runtime.TickRate)
	if m.state != statePlaying || m.session == nil {
		return m, next
	}

	now := m.clock()
	if m.inputFrame.Has(core.ActionQuit) {
		m.session.Abort(now)
		m.logger.Info("session aborted", "session", m.session.ID())
	}

	res := m.session.Step(now, m.inputFrame)
	m.inputFrame.Clear()

	if res.Err != nil {
		m.logger.Error("session halted", "session", m.session.ID(), "error", res.Err)
	}
	if res.LevelEnded != "" {
		snap := m.session.Snapshot(now)
		m.logger.Info("level ended",
			"session", m.session.ID(),
			"level", snap.LevelIndex,
			"reason", res.LevelEnded,
			"score", snap.LevelScore,
		)
	}

	if m.session.Mode() == forage.ModeSessionOver {
		m.outcome = m.finish(now)
		m.state = stateSummary
	}
	return m, next
}

// finish persists and exports the finished session. Failures are logged and
// shown on the summary; they never affect the recorded task data.
func (m Model) finish(now time.Time) *sessionOutcome {
	s := m.session
	out := &sessionOutcome{
		SessionID:       s.ID(),
		TotalScore:      s.TotalScore(),
		LevelsCompleted: s.LevelsCompleted(),
		EndReason:       s.EndReason(),
	}
	m.logger.Info("session ended",
		"session", s.ID(),
		"reason", out.EndReason,
		"total", out.TotalScore,
	)

	events, err := s.Events()
	if err != nil {
		m.logger.Error("cannot read event log", "session", s.ID(), "error", err)
		return out
	}

	if m.opts.Store != nil {
		if _, err := m.opts.Store.SaveSession(events); err != nil {
			m.logger.Error("cannot save session", "session", s.ID(), "error", err)
		} else {
			out.Saved = true
		}
		if high, err := m.opts.Store.HighScore(); err == nil {
			out.HighScore = high
		}
	}

	if m.opts.ExportDir != "" {
		paths, err := export.WriteFiles(m.opts.ExportDir, s.ID(), events, now)
		if err != nil {
			m.logger.Error("cannot export session", "session", s.ID(), "error", err)
		}
		out.Exported = paths
	}
	return out
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case stateNameEntry:
		return m.viewNameEntry()
	case stateInstructions:
		return m.viewInstructions()
	case stateSummary:
		return m.viewSummary()
	}

	DrawBoard(m.screen, m.session.Snapshot(m.clock()), m.clock())
	return RenderScreen(m.screen)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	textStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 3)
)

func (m Model) place(content string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) viewNameEntry() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("F O R A G E"))
	b.WriteString("\n\n")
	b.WriteString(textStyle.Render("Enter your name to begin:"))
	b.WriteString("\n\n")
	b.WriteString(m.nameInput.View())
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("Enter: continue  |  Esc: quit"))
	return m.place(boxStyle.Render(b.String()))
}

var instructions = []string{
	"Move with the arrow keys or WASD and collect pellets.",
	"Some areas of the maze hold more valuable pellets than others.",
	"Avoid the ghosts. You have 3 lives for the whole session.",
	"",
	"From time to time you will be FROZEN in place.",
	"Press SPACE to continue once the wait is over.",
	"Pressing too early makes you wait 2 seconds longer,",
	"and that extra time is taken from the level clock.",
	"",
	"There are 5 levels and each one is shorter than the last.",
}

func (m Model) viewInstructions() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Welcome, %s", strings.TrimSpace(m.nameInput.Value()))))
	b.WriteString("\n\n")
	for _, line := range instructions {
		b.WriteString(textStyle.Render(line))
		b.WriteString("\n")
	}
	if m.opts.Engine.Practice {
		b.WriteString(textStyle.Render("You will start with an unscored practice level."))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errStyle.Render(m.err.Error()))
		b.WriteString("\n\n")
	}
	b.WriteString(dimStyle.Render("Enter/Space: start  |  Q: quit"))
	return m.place(boxStyle.Render(b.String()))
}

func (m Model) viewSummary() string {
	out := m.outcome
	var b strings.Builder
	b.WriteString(titleStyle.Render("Session complete"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Session:          %s\n", out.SessionID)
	fmt.Fprintf(&b, "Total score:      %d\n", out.TotalScore)
	fmt.Fprintf(&b, "Levels completed: %d/%d\n", out.LevelsCompleted, forage.LevelCount)
	fmt.Fprintf(&b, "Ended by:         %s\n", endReasonText(out.EndReason))
	if m.opts.Store != nil {
		fmt.Fprintf(&b, "Best score:       %d\n", out.HighScore)
	}
	if len(out.Exported) > 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("Exported:"))
		b.WriteString("\n")
		for _, p := range out.Exported {
			b.WriteString(dimStyle.Render("  " + p))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Enter: new session  |  Q: quit"))
	return m.place(boxStyle.Render(b.String()))
}

func endReasonText(reason string) string {
	switch reason {
	case forage.ReasonLevelsComplete:
		return "all levels played"
	case forage.ReasonLivesExhausted:
		return "no lives left"
	case forage.ReasonAborted:
		return "quit"
	case forage.ReasonInvariantViolation:
		return "internal error"
	default:
		return reason
	}
}

// Outcome returns the summary of the last finished session, if any.
func (m Model) Outcome() (sessionID string, total int, ok bool) {
	if m.outcome == nil {
		return "", 0, false
	}
	return m.outcome.SessionID, m.outcome.TotalScore, true
}

// Run starts the Bubble Tea program with the given options.
func Run(opts Options) error {
	p := tea.NewProgram(
		NewModel(opts),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
