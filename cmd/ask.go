package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/nlquery/mysql-ai/internal/config"
	"github.com/nlquery/mysql-ai/internal/logging"
	"github.com/nlquery/mysql-ai/internal/pipeline"
	"github.com/nlquery/mysql-ai/internal/tui"
)

// askCmd answers questions without the interactive UI, for scripts and
// one-off checks.
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question without the interactive UI",
	Long: `Answer one question given as arguments, or read questions from
standard input when no arguments are given. In stream mode blank lines are
skipped, "exit" or "quit" ends the stream, and a failed question is
reported without stopping the ones after it.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		var logWriter io.Writer
		if cfg.Debug {
			logWriter = os.Stderr
		}
		logger := logging.New(logWriter, cfg.Debug)

		sess, err := openSession(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer sess.Close()

		if len(args) > 0 {
			question := strings.Join(args, " ")
			out, err := sess.pipeline.Run(cmd.Context(), question)
			record(cfg, logger, out, err)
			if err != nil {
				printFailure(out, err)
				return fmt.Errorf("question failed")
			}
			printOutcome(out)
			return nil
		}

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			question := strings.TrimSpace(scanner.Text())
			if question == "" {
				continue
			}
			if tui.IsExitCommand(question) {
				break
			}

			fmt.Printf("> %s\n", question)
			out, err := sess.pipeline.Run(cmd.Context(), question)
			record(cfg, logger, out, err)
			if err != nil {
				printFailure(out, err)
			} else {
				printOutcome(out)
			}
			fmt.Println()
		}
		return scanner.Err()
	},
}

func record(cfg *config.Config, logger *slog.Logger, out *pipeline.Outcome, err error) {
	cfg.AddQueryToHistory(tui.HistoryEntry(out, err))
	if err := cfg.Save(); err != nil {
		logger.Warn("saving history failed", "error", err)
	}
}

func printOutcome(out *pipeline.Outcome) {
	fmt.Printf("SQL: %s\n", out.SQL)
	if out.Result == nil {
		return
	}
	printTable(out.Result)
	fmt.Printf("%d row(s) in %s\n", out.Result.RowCount, out.Result.Elapsed.Round(time.Millisecond))
}

// printFailure writes the failed question's details to stderr: the statement
// when one was produced, the error itself, and the raw model output when
// extraction found nothing usable in it.
func printFailure(out *pipeline.Outcome, err error) {
	if out.SQL != "" {
		fmt.Fprintf(os.Stderr, "SQL: %s\n", out.SQL)
	}
	fmt.Fprintf(os.Stderr, "%s: %s\n", tui.ErrorBadge(err), tui.ErrorDetail(err))

	var extErr *pipeline.ExtractionError
	if errors.As(err, &extErr) && strings.TrimSpace(out.RawOutput) != "" {
		fmt.Fprintln(os.Stderr, "Model output:")
		for _, line := range strings.Split(strings.TrimSpace(out.RawOutput), "\n") {
			fmt.Fprintf(os.Stderr, "  %s\n", line)
		}
	}
}

func printTable(result *pipeline.QueryResult) {
	if len(result.Columns) == 0 {
		return
	}

	// fmt pads string verbs by rune count, so widths are rune counts too.
	widths := make([]int, len(result.Columns))
	for i, col := range result.Columns {
		widths[i] = utf8.RuneCountInString(col)
	}
	for _, row := range result.Rows {
		for i, cell := range row {
			if i < len(widths) {
				if n := utf8.RuneCountInString(cell); n > widths[i] {
					widths[i] = n
				}
			}
		}
	}

	line := func(cells []string) string {
		var b strings.Builder
		for i, cell := range cells {
			if i >= len(widths) {
				break
			}
			if i > 0 {
				b.WriteString("  ")
			}
			fmt.Fprintf(&b, "%-*s", widths[i], cell)
		}
		return b.String()
	}

	fmt.Println(line(result.Columns))

	seps := make([]string, len(widths))
	for i, w := range widths {
		seps[i] = strings.Repeat("-", w)
	}
	fmt.Println(line(seps))

	for _, row := range result.Rows {
		fmt.Println(line(row))
	}
}
