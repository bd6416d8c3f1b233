package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nlquery/mysql-ai/internal/config"
)

// New builds the application logger. Debug lowers the level to Debug so the
// pipeline's step transitions show up; otherwise only Info and above are
// emitted. A nil writer discards everything.
func New(w io.Writer, debug bool) *slog.Logger {
	if w == nil {
		w = io.Discard
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// SessionLogFile opens the session log file in the config directory for
// appending, creating the directory if needed. The interactive session logs
// here instead of stderr, which belongs to the terminal UI while it runs.
func SessionLogFile() (*os.File, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, "session.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening session log: %w", err)
	}
	return f, nil
}
