package runner

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/andyballingall/pgformat-action/internal/repo"
	"github.com/andyballingall/pgformat-action/internal/tool"
)

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, d tool.Descriptor) (string, error) {
	args := m.Called(ctx, d)
	return args.String(0), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Find(name, version string) (tool.CacheEntry, bool) {
	args := m.Called(name, version)
	e, _ := args.Get(0).(tool.CacheEntry)
	return e, args.Bool(1)
}

func (m *MockCache) CacheOrRetrieve(sourceDir, name, version string) (string, error) {
	args := m.Called(sourceDir, name, version)
	return args.String(0), args.Error(1)
}

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(pattern string, followSymlinks bool) ([]string, error) {
	args := m.Called(pattern, followSymlinks)
	files, _ := args.Get(0).([]string)
	return files, args.Error(1)
}

type MockReleases struct {
	mock.Mock
}

func (m *MockReleases) Latest(ctx context.Context, repository string) (string, error) {
	args := m.Called(ctx, repository)
	return args.String(0), args.Error(1)
}

type MockGitter struct {
	mock.Mock
}

func (m *MockGitter) ChangedFiles(ctx context.Context, since repo.Revision, dir string) ([]repo.Change, error) {
	args := m.Called(ctx, since, dir)
	changes, _ := args.Get(0).([]repo.Change)
	return changes, args.Error(1)
}

// fakeExecutor records every command line and fails the ones failFor selects.
type fakeExecutor struct {
	mu      sync.Mutex
	calls   [][]string
	failFor func(name string, args []string) error
	onRun   func(name string, args []string)
}

func (f *fakeExecutor) Run(_ context.Context, name string, args ...string) error {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()
	if f.onRun != nil {
		f.onRun(name, args)
	}
	if f.failFor != nil {
		return f.failFor(name, args)
	}
	return nil
}

func (f *fakeExecutor) lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, strings.Join(c, " "))
	}
	return out
}

// formatted returns the files the formatter was invoked on, in order.
func (f *fakeExecutor) formatted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if slices.Contains(c, InPlaceFlag) {
			out = append(out, c[len(c)-1])
		}
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
