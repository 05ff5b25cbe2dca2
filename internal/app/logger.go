package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/andyballingall/pgformat-action/internal/fsh"
)

const (
	LogFile   = ".pgfa.log"
	LogEnvVar = "PGFA_LOG_FILE"
)

// setupLogger configures a logger that writes structured logs to a file and clean,
// human-readable logs to the console. Inside GitHub Actions the console output uses
// workflow commands on stdout so warnings and errors become annotations.
func setupLogger(stdout, stderr io.Writer, logLevel *slog.LevelVar, logDir string,
	env fsh.EnvProvider,
) (*slog.Logger, io.Closer, error) {
	actions := env.Get("GITHUB_ACTIONS") == "true"

	// 1. Determine log file path
	logPath := env.Get(LogEnvVar)
	if logPath == "" {
		logPath = filepath.Join(logDir, LogFile)
	}

	// 2. Open log file
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	var logCloser io.Closer
	var fileHandler slog.Handler

	if err == nil {
		logCloser = f
		fileHandler = slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: slog.LevelDebug, // File always gets full debug info
		}).WithAttrs([]slog.Attr{slog.String("run", uuid.NewString())})
	}

	// 3. Create console handler
	console := &consoleHandler{
		w:       stderr,
		level:   logLevel,
		actions: actions,
	}
	if actions {
		console.w = stdout
	}

	// 4. Combine handlers
	var handlers []slog.Handler
	if fileHandler != nil {
		handlers = append(handlers, fileHandler)
	}
	handlers = append(handlers, console)

	multi := &multiHandler{
		handlers: handlers,
	}

	return slog.New(multi), logCloser, err
}

type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

//nolint:gocritic // slog.Record is passed by value in the interface
func (m *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, record.Level) {
			if err := h.Handle(ctx, record); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: newHandlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: newHandlers}
}

type consoleHandler struct {
	w       io.Writer
	level   *slog.LevelVar
	actions bool
	attrs   []slog.Attr
}

func (c *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= c.level.Level()
}

//nolint:gocritic // slog.Record is passed by value in the interface
func (c *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	var b strings.Builder
	b.WriteString(record.Message)

	// Show attributes added via WithAttrs
	for _, a := range c.attrs {
		c.formatAttr(&b, a)
	}

	// Show attributes from the record
	record.Attrs(func(a slog.Attr) bool {
		c.formatAttr(&b, a)
		return true
	})

	msg := b.String()
	if c.actions {
		msg = escapeData(msg)
		switch {
		case record.Level >= slog.LevelError:
			_, err := fmt.Fprintf(c.w, "::error::%s\n", msg)
			return err
		case record.Level >= slog.LevelWarn:
			_, err := fmt.Fprintf(c.w, "::warning::%s\n", msg)
			return err
		case record.Level < slog.LevelInfo:
			_, err := fmt.Fprintf(c.w, "::debug::%s\n", msg)
			return err
		}
		_, err := fmt.Fprintln(c.w, msg)
		return err
	}

	// Clean output for the console
	switch {
	case record.Level >= slog.LevelError:
		_, err := fmt.Fprintf(c.w, "Error: %s\n", msg)
		return err
	case record.Level >= slog.LevelWarn:
		_, err := fmt.Fprintf(c.w, "Warning: %s\n", msg)
		return err
	}
	_, err := fmt.Fprintln(c.w, msg)
	return err
}

func (c *consoleHandler) formatAttr(b *strings.Builder, a slog.Attr) {
	if a.Key == "error" || a.Key == "err" {
		fmt.Fprintf(b, ": %v", a.Value)
	} else if c.level.Level() <= slog.LevelDebug {
		fmt.Fprintf(b, " %s=%v", a.Key, a.Value)
	}
}

func (c *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &consoleHandler{
		w:       c.w,
		level:   c.level,
		actions: c.actions,
		attrs:   append(append([]slog.Attr(nil), c.attrs...), attrs...),
	}
}

func (c *consoleHandler) WithGroup(_ string) slog.Handler {
	// Grouping not deeply supported in this simple console output for now
	return c
}

// escapeData escapes a workflow command message the way the Actions toolkit does.
func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	return strings.ReplaceAll(s, "\n", "%0A")
}
