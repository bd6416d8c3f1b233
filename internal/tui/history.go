package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nlquery/mysql-ai/internal/config"
)

// HistoryModel is the recorded-questions screen. Entries are display-only:
// selecting one preloads its question into the session input, it never
// re-executes the stored SQL directly.
type HistoryModel struct {
	width    int
	height   int
	entries  []config.QueryHistoryEntry
	selected int
	cfg      *config.Config
	logger   *slog.Logger
	status   Status
}

// rerunQuestionMsg asks the session screen to preload a past question.
type rerunQuestionMsg struct {
	question string
}

// NewHistoryModel builds the history screen over the persisted history,
// newest entries first. The entries are copied so list edits never shift
// cfg.QueryHistory's backing array out from under deleteEntry's lookup.
func NewHistoryModel(cfg *config.Config, st Status, logger *slog.Logger) *HistoryModel {
	return &HistoryModel{
		entries:  append([]config.QueryHistoryEntry(nil), cfg.QueryHistory...),
		selected: 0,
		cfg:      cfg,
		logger:   logger,
		status:   st,
	}
}

// Init initializes the history model
func (m *HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history model
func (m *HistoryModel) Update(msg tea.Msg) (*HistoryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("esc"))):
			return m, func() tea.Msg {
				return goToSessionMsg{}
			}

		case key.Matches(msg, key.NewBinding(key.WithKeys("ctrl+c"))):
			return m, tea.Quit

		case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
			if len(m.entries) > 0 {
				m.selected--
				if m.selected < 0 {
					m.selected = len(m.entries) - 1
				}
			}
			return m, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
			if len(m.entries) > 0 {
				m.selected++
				if m.selected >= len(m.entries) {
					m.selected = 0
				}
			}
			return m, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
			if len(m.entries) > 0 && m.selected < len(m.entries) {
				entry := m.entries[m.selected]
				return m, func() tea.Msg {
					return rerunQuestionMsg{question: entry.Question}
				}
			}
			return m, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("d"))):
			if len(m.entries) > 0 && m.selected < len(m.entries) {
				m.deleteEntry(m.selected)
				if m.selected >= len(m.entries) && m.selected > 0 {
					m.selected--
				}
			}
			return m, nil
		}
	}

	return m, nil
}

func (m *HistoryModel) deleteEntry(index int) {
	if index >= len(m.entries) {
		return
	}

	entry := m.entries[index]
	m.entries = append(m.entries[:index], m.entries[index+1:]...)

	for i, e := range m.cfg.QueryHistory {
		if e.Timestamp.Equal(entry.Timestamp) && e.Question == entry.Question {
			m.cfg.QueryHistory = append(m.cfg.QueryHistory[:i], m.cfg.QueryHistory[i+1:]...)
			if err := m.cfg.Save(); err != nil {
				m.logger.Warn("saving history failed", "error", err)
			}
			break
		}
	}
}

// View renders the history screen
func (m *HistoryModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := RenderHeader("History", m.status)
	content := m.renderContent()
	helpText := "↑/k: up • ↓/j: down • enter: rerun • d: delete • esc: back • ctrl+c: quit"
	footer := RenderHelpFooter(helpText, m.width)

	return LayoutWithHeaderFooter(header, content, footer, m.width, m.height)
}

func (m *HistoryModel) renderContent() string {
	if len(m.entries) == 0 {
		return lipgloss.NewStyle().
			Foreground(ColorGray).
			Italic(true).
			Render("No questions recorded yet")
	}

	borderStyle := lipgloss.NewStyle().Foreground(ColorTeal)
	headerStyle := lipgloss.NewStyle().Foreground(ColorTeal).Bold(true)

	colWidths := []int{3, 18, 45, 8}

	edge := func(left, mid, right string) string {
		parts := make([]string, len(colWidths))
		for i, w := range colWidths {
			parts[i] = strings.Repeat("─", w)
		}
		return borderStyle.Render(left + strings.Join(parts, mid) + right)
	}

	headerContent := borderStyle.Render("│") +
		headerStyle.Render(padRight(" ", colWidths[0])) +
		borderStyle.Render("│") +
		headerStyle.Render(padRight(" Time", colWidths[1])) +
		borderStyle.Render("│") +
		headerStyle.Render(padRight(" Question", colWidths[2])) +
		borderStyle.Render("│") +
		headerStyle.Render(padRight(" Rows", colWidths[3])) +
		borderStyle.Render("│")

	var rows []string
	rows = append(rows, edge("┌", "┬", "┐"))
	rows = append(rows, headerContent)
	rows = append(rows, edge("├", "┼", "┤"))

	maxVisible := 15
	for i, entry := range m.entries {
		if i >= maxVisible {
			moreStyle := lipgloss.NewStyle().
				Foreground(ColorGray).
				Italic(true)
			rows = append(rows, moreStyle.Render(fmt.Sprintf("... and %d more entries", len(m.entries)-maxVisible)))
			break
		}

		isSelected := i == m.selected

		var statusIcon string
		if entry.Success {
			statusIcon = lipgloss.NewStyle().Foreground(ColorGreen).Render("●")
		} else {
			statusIcon = lipgloss.NewStyle().Foreground(ColorRed).Render("○")
		}

		var selector string
		if isSelected {
			selector = lipgloss.NewStyle().Foreground(ColorOrange).Bold(true).Render("▶")
		} else {
			selector = " "
		}

		questionStyle := lipgloss.NewStyle().Foreground(ColorWhite)
		if isSelected {
			questionStyle = lipgloss.NewStyle().Foreground(ColorOrange).Bold(true)
		}

		timeStr := entry.Timestamp.Format("01-02 15:04")
		rowsStr := fmt.Sprintf("%d", entry.RowCount)

		row := borderStyle.Render("│") +
			selector + statusIcon + " " +
			borderStyle.Render("│") +
			lipgloss.NewStyle().Foreground(ColorGray).Render(padRight(" "+timeStr, colWidths[1])) +
			borderStyle.Render("│") +
			questionStyle.Render(padRight(" "+truncateStr(entry.Question, colWidths[2]-2), colWidths[2])) +
			borderStyle.Render("│") +
			lipgloss.NewStyle().Foreground(ColorCyan).Render(padRight(" "+rowsStr, colWidths[3])) +
			borderStyle.Render("│")

		rows = append(rows, row)
	}

	rows = append(rows, edge("└", "┴", "┘"))

	rows = append(rows, "")
	legendStyle := lipgloss.NewStyle().
		Foreground(ColorGray).
		Align(lipgloss.Center)
	rows = append(rows, legendStyle.Render("● success  ○ failed"))

	if m.selected < len(m.entries) {
		rows = append(rows, "")
		rows = append(rows, m.renderDetail(m.entries[m.selected]))
	}

	return lipgloss.JoinVertical(lipgloss.Center, rows...)
}

func (m *HistoryModel) renderDetail(entry config.QueryHistoryEntry) string {
	detailBox := BoxStyle.
		BorderForeground(ColorTeal).
		Width(min(80, m.width-10))

	var parts []string
	if entry.SQL != "" {
		parts = append(parts,
			LabelStyle.Render("Generated SQL:"),
			SQLStyle.Render(entry.SQL),
		)
	}
	if entry.Error != "" {
		if len(parts) > 0 {
			parts = append(parts, "")
		}
		parts = append(parts,
			LabelStyle.Render("Error:"),
			ErrorStyle.Render(entry.Error),
		)
	}
	if entry.Success {
		parts = append(parts, "",
			LabelStyle.Render(fmt.Sprintf("Execution time: %.2fms", entry.ExecutionTime)),
		)
	}
	if len(parts) == 0 {
		parts = append(parts, LabelStyle.Render("No details recorded"))
	}

	return detailBox.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
