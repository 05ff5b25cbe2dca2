package app

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/andyballingall/pgformat-action/internal/config"
	"github.com/andyballingall/pgformat-action/internal/glob"
	"github.com/andyballingall/pgformat-action/internal/report"
	"github.com/andyballingall/pgformat-action/internal/runner"
	"github.com/andyballingall/pgformat-action/internal/tool"
)

// Manager defines the operations behind the pgfa commands.
type Manager interface {
	Config() *config.Config
	Format(ctx context.Context) (*runner.Summary, error)
	WatchFormat(ctx context.Context, readyChan chan<- struct{}) error
	ResolveFiles(ctx context.Context) ([]string, error)
	CachedVersions() ([]string, error)
	CachedToolPath(ctx context.Context) (string, error)
}

// Ensure the interface is satisfied.
var _ Manager = (*LazyManager)(nil)

// LazyManager acts as a placeholder for a real Manager implementation, allowing
// for deferred initialization of dependencies.
type LazyManager struct {
	inner Manager
}

func (l *LazyManager) SetInner(m Manager) {
	l.inner = m
}

// HasInner returns true if the inner manager has been set.
// This is used by PersistentPreRunE to skip initialization if already configured (e.g., in tests).
func (l *LazyManager) HasInner() bool {
	return l.inner != nil
}

func (l *LazyManager) check() Manager {
	if l.inner == nil {
		panic("LazyManager accessed before initialization; check command wiring.")
	}
	return l.inner
}

func (l *LazyManager) Config() *config.Config {
	return l.check().Config()
}

func (l *LazyManager) Format(ctx context.Context) (*runner.Summary, error) {
	return l.check().Format(ctx)
}

func (l *LazyManager) WatchFormat(ctx context.Context, readyChan chan<- struct{}) error {
	return l.check().WatchFormat(ctx, readyChan)
}

func (l *LazyManager) ResolveFiles(ctx context.Context) ([]string, error) {
	return l.check().ResolveFiles(ctx)
}

func (l *LazyManager) CachedVersions() ([]string, error) {
	return l.check().CachedVersions()
}

func (l *LazyManager) CachedToolPath(ctx context.Context) (string, error) {
	return l.check().CachedToolPath(ctx)
}

// Ensure the interface is satisfied.
var _ Manager = (*CLIManager)(nil)

// CLIManager is the concrete implementation of the Manager interface.
type CLIManager struct {
	cfg      *config.Config
	logger   *slog.Logger
	deps     runner.Deps
	cache    *tool.Cache
	resolver *glob.Resolver
}

// NewCLIManager wires the run collaborators. deps.Cache and deps.Resolver are set to
// cache and resolver.
func NewCLIManager(
	cfg *config.Config,
	l *slog.Logger,
	deps runner.Deps,
	cache *tool.Cache,
	resolver *glob.Resolver,
) *CLIManager {
	deps.Cache = cache
	deps.Resolver = resolver
	return &CLIManager{
		cfg:      cfg,
		logger:   l,
		deps:     deps,
		cache:    cache,
		resolver: resolver,
	}
}

func (m *CLIManager) Config() *config.Config {
	return m.cfg
}

func (m *CLIManager) driver() *runner.Driver {
	return runner.NewDriver(m.cfg, m.deps, m.logger)
}

func (m *CLIManager) Format(ctx context.Context) (*runner.Summary, error) {
	m.logger.Debug("formatting", "pattern", m.cfg.Pattern, "followSymbolicLinks", m.cfg.FollowSymbolicLinks,
		"extraArgs", m.cfg.ExtraArgs, "continueOnError", m.cfg.ContinueOnError, "tool", m.cfg.Tool.String())

	summary, err := m.driver().Run(ctx)

	var failed *runner.FilesFailedError
	if errors.As(err, &failed) {
		for _, r := range summary.Files {
			if !r.OK() {
				m.logger.Error(r.Err.Error(), "path", r.Path)
			}
		}
	}

	if m.cfg.StepSummary != "" && summary.Processed > 0 {
		if sErr := m.writeStepSummary(summary); sErr != nil {
			m.logger.Warn("cannot write job summary", "error", sErr)
		}
	}
	return summary, err
}

// writeStepSummary appends a markdown report to the job summary file.
func (m *CLIManager) writeStepSummary(summary *runner.Summary) error {
	f, err := os.OpenFile(m.cfg.StepSummary, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	r := &report.MarkdownReporter{BaseDir: m.cfg.WorkDir}
	if err = r.Write(f, summary); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WatchFormat formats every matching file once, then keeps re-formatting files as they
// change until ctx is cancelled. Failures of individual files are logged, not returned.
// If you want to know when the watcher is ready to start listening to changes,
// pass a non-nil readyChan to be notified.
func (m *CLIManager) WatchFormat(ctx context.Context, readyChan chan<- struct{}) error {
	d := m.driver()
	if _, err := d.Run(ctx); err != nil {
		if d.ToolPath() == "" {
			return err
		}
		m.logger.Error("Initial format failed", "error", err)
	}

	set, err := m.resolver.Compile(m.cfg.Pattern)
	if err != nil {
		return err
	}

	toolPath := d.ToolPath()
	watcher := runner.NewWatcher(set.Roots(), set.Match, func(ctx context.Context, path string) error {
		return d.FormatFile(ctx, toolPath, path)
	}, m.logger)

	// Forward watcher Ready signal if caller wants notification
	if readyChan != nil {
		go func() {
			select {
			case <-watcher.Ready:
				readyChan <- struct{}{}
			case <-ctx.Done():
			}
		}()
	}

	if err = watcher.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (m *CLIManager) ResolveFiles(ctx context.Context) ([]string, error) {
	m.logger.Debug("resolving files", "pattern", m.cfg.Pattern, "followSymbolicLinks", m.cfg.FollowSymbolicLinks)
	return m.driver().ResolveFiles(ctx)
}

func (m *CLIManager) CachedVersions() ([]string, error) {
	return m.cache.Versions(m.cfg.Tool.Name)
}

// CachedToolPath returns the cached executable of the configured release.
func (m *CLIManager) CachedToolPath(ctx context.Context) (string, error) {
	desc, err := m.driver().Descriptor(ctx)
	if err != nil {
		return "", err
	}
	e, ok := m.cache.Find(desc.Name, desc.Version)
	if !ok {
		return "", &ToolNotCachedError{Tool: desc.String(), Root: m.cache.Root()}
	}
	return e.Path, nil
}
