package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/andyballingall/pgformat-action/internal/config"
	"github.com/andyballingall/pgformat-action/internal/fsh"
	"github.com/andyballingall/pgformat-action/internal/repo"
	"github.com/andyballingall/pgformat-action/internal/tool"
)

// NoFilesWarning is logged when the pattern matched nothing. The run still succeeds.
const NoFilesWarning = "The glob patterns did not match any source files"

type Fetcher interface {
	Fetch(ctx context.Context, d tool.Descriptor) (string, error)
}

type ToolCache interface {
	Find(tool, version string) (tool.CacheEntry, bool)
	CacheOrRetrieve(sourceDir, tool, version string) (string, error)
}

type FileResolver interface {
	Resolve(pattern string, followSymlinks bool) ([]string, error)
}

type ReleaseResolver interface {
	Latest(ctx context.Context, repository string) (string, error)
}

// Deps are the collaborators of a Driver. Releases is only needed for version "latest"
// and Gitter only when the configuration limits the run to changed files.
type Deps struct {
	Fetcher  Fetcher
	Cache    ToolCache
	Resolver FileResolver
	Executor Executor
	Releases ReleaseResolver
	Gitter   repo.Gitter
}

// Driver runs the format pipeline for one immutable configuration.
type Driver struct {
	cfg    *config.Config
	deps   Deps
	logger *slog.Logger

	mu       sync.Mutex
	state    State
	toolPath string
}

func NewDriver(cfg *config.Config, deps Deps, logger *slog.Logger) *Driver {
	return &Driver{
		cfg:    cfg,
		deps:   deps,
		logger: logger.With("component", "driver"),
		state:  Init,
	}
}

func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// ToolPath returns the formatter prepared by the last Run, or "" before the tool is ready.
func (d *Driver) ToolPath() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.toolPath
}

func (d *Driver) setState(s State) {
	d.mu.Lock()
	d.state = s
	d.mu.Unlock()
	d.logger.Debug("state", "state", s.String())
}

func (d *Driver) fail(summary *Summary, err error) (*Summary, error) {
	d.setState(Failed)
	summary.EndTime = time.Now()
	return summary, err
}

// Run executes the whole pipeline. The returned Summary is never nil. By default the first
// failing file aborts the run; with ContinueOnError every file is processed and a
// *FilesFailedError is returned if any of them failed.
func (d *Driver) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{StartTime: time.Now()}

	d.setState(DependencyCheck)
	if err := d.CheckDependency(ctx); err != nil {
		return d.fail(summary, err)
	}

	d.setState(ToolReady)
	toolPath, err := d.PrepareTool(ctx)
	if err != nil {
		return d.fail(summary, err)
	}
	d.mu.Lock()
	d.toolPath = toolPath
	d.mu.Unlock()

	d.setState(FilesResolved)
	files, err := d.ResolveFiles(ctx)
	if err != nil {
		return d.fail(summary, err)
	}
	if len(files) == 0 {
		d.logger.Warn(NoFilesWarning)
		summary.EndTime = time.Now()
		d.setState(Done)
		return summary, nil
	}

	d.setState(Processing)
	for _, file := range files {
		if err = ctx.Err(); err != nil {
			return d.fail(summary, err)
		}
		err = d.FormatFile(ctx, toolPath, file)
		summary.add(file, err)
		if err != nil && !d.cfg.ContinueOnError {
			return d.fail(summary, err)
		}
	}

	if summary.Failed > 0 {
		return d.fail(summary, &FilesFailedError{Summary: summary})
	}

	summary.EndTime = time.Now()
	d.setState(Done)
	d.logger.Info(fmt.Sprintf("Formatted %d files", summary.Processed))
	return summary, nil
}

// CheckDependency runs the configured interpreter probe, perl -v by default.
func (d *Driver) CheckDependency(ctx context.Context) error {
	dep := d.cfg.Dependency
	if err := d.deps.Executor.Run(ctx, dep.Command, dep.Args...); err != nil {
		return &DependencyMissingError{Command: dep.String(), Wrapped: err}
	}
	return nil
}

// PrepareTool returns the path of a runnable formatter. A cached copy is used when there is
// one; otherwise the release is fetched, located in the archive and added to the cache.
func (d *Driver) PrepareTool(ctx context.Context) (string, error) {
	desc, err := d.Descriptor(ctx)
	if err != nil {
		return "", err
	}

	var path string
	if entry, ok := d.deps.Cache.Find(desc.Name, desc.Version); ok {
		d.logger.Info("Using cached " + desc.String())
		path = entry.Path
	} else if path, err = d.install(ctx, desc); err != nil {
		return "", err
	}

	if err = fsh.MakeExecutable(path); err != nil {
		return "", &tool.CacheError{Tool: desc.Name, Version: desc.Version, Op: "chmod", Wrapped: err}
	}

	if err = d.deps.Executor.Run(ctx, path, "--version"); err != nil {
		return "", &InvocationError{Tool: path, ExitCode: exitCode(err), Wrapped: err}
	}
	return path, nil
}

// Descriptor returns the configured tool with "latest" resolved to a concrete version.
func (d *Driver) Descriptor(ctx context.Context) (tool.Descriptor, error) {
	desc := d.cfg.Tool
	if !desc.IsLatest() {
		return desc, nil
	}
	if d.deps.Releases == nil {
		return desc, &NoReleaseResolverError{Repository: desc.Repository}
	}
	tag, err := d.deps.Releases.Latest(ctx, desc.Repository)
	if err != nil {
		return desc, err
	}
	desc = desc.WithVersion(tag)
	d.logger.Info("Resolved latest release to " + desc.Version)
	return desc, nil
}

// install fetches the release and hands it to the cache, which keeps an entry another
// job completed in the meantime.
func (d *Driver) install(ctx context.Context, desc tool.Descriptor) (string, error) {
	root, err := d.deps.Fetcher.Fetch(ctx, desc)
	if err != nil {
		return "", err
	}
	defer func() {
		if rErr := os.RemoveAll(root); rErr != nil {
			d.logger.Debug("cannot remove extracted archive", "path", root, "error", rErr)
		}
	}()

	dir, err := tool.Locate(root, desc)
	if err != nil {
		return "", &tool.CacheError{Tool: desc.Name, Version: desc.Version, Op: "add", Wrapped: err}
	}
	return d.deps.Cache.CacheOrRetrieve(dir, desc.Name, desc.Version)
}

// ResolveFiles expands the pattern and, when Since is set, keeps only the files git
// reports as changed.
func (d *Driver) ResolveFiles(ctx context.Context) ([]string, error) {
	files, err := d.deps.Resolver.Resolve(d.cfg.Pattern, d.cfg.FollowSymbolicLinks)
	if err != nil {
		return nil, err
	}
	if d.cfg.Since == "" || len(files) == 0 {
		return files, nil
	}
	if d.deps.Gitter == nil {
		return nil, fmt.Errorf("cannot limit files to changes since %s: git is not available", d.cfg.Since)
	}

	changes, err := d.deps.Gitter.ChangedFiles(ctx, repo.Revision(d.cfg.Since), d.cfg.WorkDir)
	if err != nil {
		return nil, err
	}
	kept := repo.FilterChanged(files, changes)
	d.logger.Debug("filtered to changed files", "since", d.cfg.Since, "matched", len(files), "changed", len(kept))
	return kept, nil
}

// FormatFile runs the formatter in place on file.
func (d *Driver) FormatFile(ctx context.Context, toolPath, file string) error {
	d.logger.Info("Processing " + file)
	if err := d.deps.Executor.Run(ctx, toolPath, InvocationArgs(d.cfg.ExtraArgs, file)...); err != nil {
		return &InvocationError{Tool: toolPath, File: file, ExitCode: exitCode(err), Wrapped: err}
	}
	return nil
}
