package tui

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/nlquery/mysql-ai/internal/pipeline"
)

// Terminal palette.
var (
	ColorTeal     = lipgloss.Color("#2AA198") // Primary/Active
	ColorOrange   = lipgloss.Color("#F29111") // Accent/Prompt
	ColorGray     = lipgloss.Color("#8A8F98") // Inactive/Subtle
	ColorWhite    = lipgloss.Color("#FFFFFF") // Text
	ColorDarkGray = lipgloss.Color("#3B4252") // Separators
	ColorRed      = lipgloss.Color("#E06C75") // Errors
	ColorGreen    = lipgloss.Color("#98C379") // Success
	ColorCyan     = lipgloss.Color("#56B6C2") // SQL text
)

// HeaderWidth is the standard width for the header block
const HeaderWidth = 64

// Status is the session summary shown in every header.
type Status struct {
	Database  string
	Tables    int
	Model     string
	Questions int
}

// RenderHeader renders the standard header for all screens:
//
//	mysql-ai - Page Title
//	Natural Language MySQL Interface
//	────────────────────────────────────────────────────────────────
//	DB: shop | Tables: 12 | Model: sqlcoder | Questions: 3
//	────────────────────────────────────────────────────────────────
func RenderHeader(pageTitle string, st Status) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorTeal).
		Align(lipgloss.Center).
		Width(HeaderWidth)

	mottoStyle := lipgloss.NewStyle().
		Italic(true).
		Foreground(ColorGray).
		Align(lipgloss.Center).
		Width(HeaderWidth)

	dividerStyle := lipgloss.NewStyle().
		Foreground(ColorGray).
		Align(lipgloss.Center).
		Width(HeaderWidth)

	statusStyle := lipgloss.NewStyle().
		Foreground(ColorWhite).
		Align(lipgloss.Center).
		Width(HeaderWidth)

	title := titleStyle.Render(fmt.Sprintf("mysql-ai - %s", pageTitle))
	motto := mottoStyle.Render("Natural Language MySQL Interface")
	divider := dividerStyle.Render(strings.Repeat("─", HeaderWidth))

	database := st.Database
	if database == "" {
		database = "-"
	}
	model := st.Model
	if model == "" {
		model = "-"
	}

	dbStyled := lipgloss.NewStyle().
		Foreground(ColorGreen).
		Bold(true).
		Render(database)

	statusLine := fmt.Sprintf("DB: %s | Tables: %d | Model: %s | Questions: %d",
		dbStyled,
		st.Tables,
		model,
		st.Questions,
	)
	status := statusStyle.Render(statusLine)

	return lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		motto,
		divider,
		status,
		divider,
	)
}

// RenderHelpFooter renders the key-hint footer at the bottom of the screen
func RenderHelpFooter(helpText string, width int) string {
	helpStyle := lipgloss.NewStyle().
		Foreground(ColorGray).
		Italic(true)

	footerStyle := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center)

	return footerStyle.Render(helpStyle.Render(helpText))
}

// LayoutWithHeaderFooter stacks header, content and footer into the full
// terminal height, top-aligning the content in the space between them.
func LayoutWithHeaderFooter(header, content, footer string, width, height int) string {
	centeredHeader := lipgloss.PlaceHorizontal(width, lipgloss.Center, header)
	centeredContent := lipgloss.PlaceHorizontal(width, lipgloss.Center, content)
	centeredFooter := lipgloss.PlaceHorizontal(width, lipgloss.Center, footer)

	headerHeight := lipgloss.Height(centeredHeader)
	footerHeight := lipgloss.Height(centeredFooter)
	contentAreaHeight := height - headerHeight - footerHeight - 2
	if contentAreaHeight < 1 {
		contentAreaHeight = 1
	}

	contentArea := lipgloss.Place(
		width,
		contentAreaHeight,
		lipgloss.Center,
		lipgloss.Top,
		centeredContent,
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		centeredHeader,
		"",
		contentArea,
		centeredFooter,
	)
}

// RenderResultTable renders a materialized result as aligned table lines,
// truncating wide cells and capping the visible row count.
func RenderResultTable(result *pipeline.QueryResult, maxRows int) []string {
	if result == nil || len(result.Columns) == 0 {
		return nil
	}

	colWidths := make([]int, len(result.Columns))
	for i, col := range result.Columns {
		colWidths[i] = utf8.RuneCountInString(col)
	}
	for _, row := range result.Rows {
		for i, cell := range row {
			if i < len(colWidths) {
				if n := utf8.RuneCountInString(cell); n > colWidths[i] {
					colWidths[i] = n
				}
			}
		}
	}

	const maxColWidth = 28
	for i := range colWidths {
		if colWidths[i] > maxColWidth {
			colWidths[i] = maxColWidth
		}
	}

	var lines []string

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorTeal)

	var headerCells []string
	for i, col := range result.Columns {
		headerCells = append(headerCells, headerStyle.Render(padOrTruncate(col, colWidths[i])))
	}
	lines = append(lines, strings.Join(headerCells, " │ "))

	sepStyle := lipgloss.NewStyle().Foreground(ColorGray)
	var sepParts []string
	for _, w := range colWidths {
		sepParts = append(sepParts, strings.Repeat("─", w))
	}
	lines = append(lines, sepStyle.Render(strings.Join(sepParts, "─┼─")))

	rowStyle := lipgloss.NewStyle().Foreground(ColorWhite)
	shown := min(len(result.Rows), maxRows)
	for _, row := range result.Rows[:shown] {
		var cells []string
		for i, cell := range row {
			if i < len(colWidths) {
				cells = append(cells, padOrTruncate(cell, colWidths[i]))
			}
		}
		lines = append(lines, rowStyle.Render(strings.Join(cells, " │ ")))
	}

	if len(result.Rows) > shown {
		moreStyle := lipgloss.NewStyle().Foreground(ColorGray).Italic(true)
		lines = append(lines, moreStyle.Render(fmt.Sprintf("... and %d more rows", len(result.Rows)-shown)))
	}

	return lines
}

// ErrorBadge maps one question's failure to the short label that marks it in
// the conversation and in scripted output.
func ErrorBadge(err error) string {
	var confErr *pipeline.ConfigurationError
	var extErr *pipeline.ExtractionError
	var execErr *pipeline.ExecutionError
	var stepErr *pipeline.StepError

	switch {
	case errors.As(err, &confErr):
		return "CONFIG ERROR"
	case errors.As(err, &extErr):
		return "EXTRACTION ERROR"
	case errors.As(err, &execErr):
		return "EXECUTION ERROR"
	case errors.As(err, &stepErr) && stepErr.Step == pipeline.StepGenerate:
		return "GENERATOR ERROR"
	default:
		return "ERROR"
	}
}

// ErrorDetail returns the failure message without the step prefix; the badge
// already names the step.
func ErrorDetail(err error) string {
	var stepErr *pipeline.StepError
	if errors.As(err, &stepErr) {
		return stepErr.Err.Error()
	}
	return err.Error()
}

// Common styles

var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorTeal)

var SubtitleStyle = lipgloss.NewStyle().
	Italic(true).
	Foreground(ColorGray)

var LabelStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

var ErrorStyle = lipgloss.NewStyle().
	Foreground(ColorRed).
	Bold(true)

var SQLStyle = lipgloss.NewStyle().
	Foreground(ColorCyan)

var PromptStyle = lipgloss.NewStyle().
	Foreground(ColorOrange).
	Bold(true)

var BoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorTeal).
	Padding(1, 2)

// Helper functions for table rendering. Widths are rune counts, so a cut
// never lands inside a multi-byte character.

func padOrTruncate(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		return string(r[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-len(r))
}

func padRight(s string, length int) string {
	r := []rune(s)
	if len(r) >= length {
		return string(r[:length])
	}
	return s + strings.Repeat(" ", length-len(r))
}

func truncateStr(s string, maxLen int) string {
	r := []rune(s)
	if len(r) > maxLen {
		return string(r[:maxLen-2]) + ".."
	}
	return s
}
