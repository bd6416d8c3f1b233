package tui

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nlquery/mysql-ai/internal/config"
	"github.com/nlquery/mysql-ai/internal/pipeline"
)

// Screen represents the current screen being displayed
type Screen int

const (
	ScreenSession Screen = iota
	ScreenHistory
)

// goToSessionMsg returns control to the session screen
type goToSessionMsg struct{}

// goToHistoryMsg opens the history screen
type goToHistoryMsg struct{}

// AppModel routes between the session and history screens. The session model
// lives for the whole program so the conversation survives screen switches;
// the history screen is rebuilt on entry to pick up new entries.
type AppModel struct {
	screen  Screen
	width   int
	height  int
	session *SessionModel
	history *HistoryModel
	cfg     *config.Config
	logger  *slog.Logger
}

// NewAppModel creates the application model over an established pipeline.
func NewAppModel(pipe *pipeline.Pipeline, model string, cfg *config.Config, logger *slog.Logger) *AppModel {
	return &AppModel{
		screen:  ScreenSession,
		session: NewSessionModel(pipe, model, cfg, logger),
		cfg:     cfg,
		logger:  logger,
	}
}

// Init initializes the application
func (m *AppModel) Init() tea.Cmd {
	return m.session.Init()
}

// Update handles all messages for the application
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// The session always tracks size so the conversation is laid out
		// correctly when the history screen closes.
		var cmd tea.Cmd
		m.session, cmd = m.session.Update(msg)
		if m.history != nil {
			m.history.width = msg.Width
			m.history.height = msg.Height
		}
		return m, cmd

	case goToHistoryMsg:
		m.screen = ScreenHistory
		m.history = NewHistoryModel(m.cfg, m.session.status(), m.logger)
		m.history.width = m.width
		m.history.height = m.height
		return m, m.history.Init()

	case goToSessionMsg:
		m.screen = ScreenSession
		return m, m.session.FocusInput()

	case rerunQuestionMsg:
		m.screen = ScreenSession
		m.session.SetQuestion(msg.question)
		return m, m.session.FocusInput()
	}

	// Route to current screen
	switch m.screen {
	case ScreenSession:
		var cmd tea.Cmd
		m.session, cmd = m.session.Update(msg)
		return m, cmd

	case ScreenHistory:
		if m.history != nil {
			var cmd tea.Cmd
			m.history, cmd = m.history.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

// View renders the application
func (m *AppModel) View() string {
	switch m.screen {
	case ScreenHistory:
		if m.history != nil {
			return m.history.View()
		}
		return m.session.View()
	default:
		return m.session.View()
	}
}

// RunApp runs the interactive session until the user exits.
func RunApp(pipe *pipeline.Pipeline, model string, cfg *config.Config, logger *slog.Logger) error {
	app := NewAppModel(pipe, model, cfg, logger)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
