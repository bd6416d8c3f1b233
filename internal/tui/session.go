package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nlquery/mysql-ai/internal/config"
	"github.com/nlquery/mysql-ai/internal/pipeline"
)

// maxTableRows caps how many rows of one result render in the conversation.
const maxTableRows = 15

// SessionModel is the main question-and-answer screen. One question is in
// flight at a time: while loading, the input is blurred and submissions are
// ignored until the answer lands.
type SessionModel struct {
	width    int
	height   int
	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model

	pipe   *pipeline.Pipeline
	cfg    *config.Config
	logger *slog.Logger
	model  string
	tables int

	entries []ConversationEntry
	loading bool
	queries int
}

// ConversationEntry holds one answered (or failed) question.
type ConversationEntry struct {
	Question  string
	SQL       string
	RawOutput string
	Result    *pipeline.QueryResult
	Err       error
}

// questionAnsweredMsg carries the outcome of one pipeline run back to the
// update loop.
type questionAnsweredMsg struct {
	outcome *pipeline.Outcome
	err     error
}

// NewSessionModel creates the session screen for an established pipeline.
func NewSessionModel(pipe *pipeline.Pipeline, model string, cfg *config.Config, logger *slog.Logger) *SessionModel {
	ti := textinput.New()
	ti.Placeholder = "Ask a question about your data..."
	ti.Prompt = ""
	ti.CharLimit = 0
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorOrange)

	vp := viewport.New(80, 20)

	m := &SessionModel{
		input:    ti,
		spinner:  s,
		viewport: vp,
		pipe:     pipe,
		cfg:      cfg,
		logger:   logger,
		model:    model,
		tables:   len(pipe.Tables()),
	}
	m.viewport.SetContent(m.renderConversation())
	return m
}

// Init starts the cursor blink.
func (m *SessionModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the session screen
func (m *SessionModel) Update(msg tea.Msg) (*SessionModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case questionAnsweredMsg:
		m.loading = false
		m.queries++
		m.input.SetValue("")
		m.input.Focus()

		m.entries = append(m.entries, ConversationEntry{
			Question:  msg.outcome.Question,
			SQL:       msg.outcome.SQL,
			RawOutput: msg.outcome.RawOutput,
			Result:    msg.outcome.Result,
			Err:       msg.err,
		})

		m.cfg.AddQueryToHistory(HistoryEntry(msg.outcome, msg.err))
		if err := m.cfg.Save(); err != nil {
			m.logger.Warn("saving history failed", "error", err)
		}

		m.viewport.SetContent(m.renderConversation())
		m.viewport.GotoBottom()
		return m, textinput.Blink

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		// Scroll keys go to the viewport so typed letters never scroll.
		if key.Matches(msg, key.NewBinding(key.WithKeys("up", "down", "pgup", "pgdown"))) {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		if key.Matches(msg, key.NewBinding(key.WithKeys("ctrl+h"))) && !m.loading {
			return m, func() tea.Msg {
				return goToHistoryMsg{}
			}
		}

		if key.Matches(msg, key.NewBinding(key.WithKeys("ctrl+l"))) {
			m.entries = nil
			m.viewport.SetContent(m.renderConversation())
			m.viewport.GotoTop()
			return m, nil
		}

		if msg.Type == tea.KeyEnter {
			return m, m.submit()
		}
	}

	if !m.loading {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// submit reads the input line and either quits, ignores it, or starts a run.
func (m *SessionModel) submit() tea.Cmd {
	if m.loading {
		return nil
	}
	question := strings.TrimSpace(m.input.Value())
	if question == "" {
		return nil
	}
	if IsExitCommand(question) {
		return tea.Quit
	}

	m.loading = true
	m.input.Blur()
	return tea.Batch(m.spinner.Tick, m.ask(question))
}

// ask runs the pipeline off the update loop.
func (m *SessionModel) ask(question string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.pipe.Run(context.Background(), question)
		return questionAnsweredMsg{outcome: out, err: err}
	}
}

func (m *SessionModel) resize() {
	contentWidth := m.width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}
	m.input.Width = contentWidth - 6

	headerHeight := lipgloss.Height(m.renderHeader())
	vpHeight := m.height - headerHeight - 8
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = contentWidth
	m.viewport.Height = vpHeight
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

func (m *SessionModel) renderConversation() string {
	if len(m.entries) == 0 {
		return m.renderWelcome()
	}

	sepWidth := min(60, m.viewport.Width)
	if sepWidth < 1 {
		sepWidth = 1
	}
	separator := lipgloss.NewStyle().
		Foreground(ColorDarkGray).
		Render(strings.Repeat("─", sepWidth))

	var blocks []string
	for i, entry := range m.entries {
		if i > 0 {
			blocks = append(blocks, separator)
		}
		blocks = append(blocks, m.renderEntry(entry))
	}
	return strings.Join(blocks, "\n")
}

func (m *SessionModel) renderEntry(entry ConversationEntry) string {
	var lines []string

	lines = append(lines, LabelStyle.Render("You: ")+PromptStyle.Render(entry.Question))

	// The statement is always echoed once it exists, even when execution
	// failed afterwards.
	if entry.SQL != "" {
		lines = append(lines, SQLStyle.Render("SQL: "+entry.SQL))
	}

	if entry.Err != nil {
		lines = append(lines, ErrorStyle.Render(ErrorBadge(entry.Err))+" "+ErrorDetail(entry.Err))

		var extErr *pipeline.ExtractionError
		if errors.As(entry.Err, &extErr) && strings.TrimSpace(entry.RawOutput) != "" {
			lines = append(lines, LabelStyle.Render("Model output:"))
			for _, l := range strings.Split(strings.TrimSpace(entry.RawOutput), "\n") {
				lines = append(lines, "  "+l)
			}
		}
		return strings.Join(lines, "\n")
	}

	if entry.Result != nil {
		if len(entry.Result.Rows) > 0 {
			lines = append(lines, "")
			lines = append(lines, RenderResultTable(entry.Result, maxTableRows)...)
		} else {
			lines = append(lines, SubtitleStyle.Render("No rows returned"))
		}
		stats := fmt.Sprintf("%d rows • %s", entry.Result.RowCount, entry.Result.Elapsed.Round(time.Millisecond))
		lines = append(lines, SubtitleStyle.Render(stats))
	}

	return strings.Join(lines, "\n")
}

func (m *SessionModel) renderWelcome() string {
	examples := []string{
		"• \"How many rows does each table have?\"",
		"• \"Show me the 10 most recent orders\"",
		"• \"Which customers placed no orders this year?\"",
	}

	examplesContent := lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render("Example questions:"),
		"",
		lipgloss.NewStyle().Foreground(ColorGray).Render(strings.Join(examples, "\n")),
	)

	examplesBox := BoxStyle.
		BorderForeground(ColorGray).
		Width(52).
		Padding(1, 2)

	info := fmt.Sprintf("Connected to %s • %d tables • model %s",
		m.cfg.MySQL.Database, m.tables, m.model)

	return lipgloss.JoinVertical(
		lipgloss.Center,
		TitleStyle.Render("Ask your database in plain language"),
		"",
		SubtitleStyle.Render(info),
		"",
		examplesBox.Render(examplesContent),
		"",
		SubtitleStyle.Render("Type exit or quit to leave"),
	)
}

// View renders the session screen
func (m *SessionModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := m.renderHeader()

	var sections []string
	sections = append(sections, m.viewport.View())
	sections = append(sections, "")
	if m.loading {
		sections = append(sections, m.spinner.View()+" Generating and executing query...")
	} else {
		inputBox := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorTeal).
			Width(m.viewport.Width).
			Padding(0, 1).
			Render(PromptStyle.Render("? ") + m.input.View())
		sections = append(sections, inputBox)
	}
	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	helpText := "enter: ask • ctrl+h: history • ctrl+l: clear • ↑/↓: scroll • exit/quit: leave"
	footer := RenderHelpFooter(helpText, m.width)

	return LayoutWithHeaderFooter(header, content, footer, m.width, m.height)
}

func (m *SessionModel) renderHeader() string {
	return RenderHeader("Session", m.status())
}

func (m *SessionModel) status() Status {
	return Status{
		Database:  m.cfg.MySQL.Database,
		Tables:    m.tables,
		Model:     m.model,
		Questions: m.queries,
	}
}

// SetQuestion preloads the input, used when re-running a question from
// history.
func (m *SessionModel) SetQuestion(question string) {
	m.input.SetValue(question)
	m.input.CursorEnd()
}

// FocusInput refocuses the input and restarts the cursor blink after another
// screen had control.
func (m *SessionModel) FocusInput() tea.Cmd {
	m.input.Focus()
	return textinput.Blink
}

// IsExitCommand reports whether a line asks to end the session. Only the bare
// words "exit" and "quit" qualify, compared case-insensitively after
// trimming; questions that merely contain them are answered normally.
func IsExitCommand(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "exit", "quit":
		return true
	}
	return false
}

// HistoryEntry converts one answered question into its persisted form.
func HistoryEntry(out *pipeline.Outcome, err error) config.QueryHistoryEntry {
	entry := config.QueryHistoryEntry{
		Timestamp: time.Now(),
		Question:  out.Question,
		SQL:       out.SQL,
		Success:   err == nil,
	}
	if err != nil {
		entry.Error = err.Error()
		return entry
	}
	if out.Result != nil {
		entry.RowCount = out.Result.RowCount
		entry.ExecutionTime = float64(out.Result.Elapsed.Microseconds()) / 1000.0
	}
	return entry
}
