package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/andyballingall/pgformat-action/internal/config"
	"github.com/andyballingall/pgformat-action/internal/runner"
	"github.com/andyballingall/pgformat-action/internal/tool"
)

type mockEnvProvider struct {
	values map[string]string
}

func (m *mockEnvProvider) Get(key string) string {
	return m.values[key]
}

type MockManager struct {
	mock.Mock
	cfg *config.Config
}

func (m *MockManager) Config() *config.Config {
	return m.cfg
}

func (m *MockManager) Format(ctx context.Context) (*runner.Summary, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*runner.Summary)
	return s, args.Error(1)
}

func (m *MockManager) WatchFormat(ctx context.Context, readyChan chan<- struct{}) error {
	args := m.Called(ctx, readyChan)
	return args.Error(0)
}

func (m *MockManager) ResolveFiles(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	files, _ := args.Get(0).([]string)
	return files, args.Error(1)
}

func (m *MockManager) CachedVersions() ([]string, error) {
	args := m.Called()
	v, _ := args.Get(0).([]string)
	return v, args.Error(1)
}

func (m *MockManager) CachedToolPath(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// safeBuffer is a thread-safe wrapper around bytes.Buffer for use in concurrent tests.
type safeBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (s *safeBuffer) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *safeBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// waitFor polls the buffer until it contains want or timeout is reached.
func (s *safeBuffer) waitFor(want string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if strings.Contains(s.String(), want) {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return false
}

// recordingExecutor records command lines and fails those whose last argument is in fail.
type recordingExecutor struct {
	mu    sync.Mutex
	lines []string
	fail  map[string]bool
}

func (r *recordingExecutor) Run(_ context.Context, name string, args ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, strings.Join(append([]string{name}, args...), " "))
	if len(args) > 0 && r.fail[args[len(args)-1]] {
		return &runner.CommandError{Command: name, ExitCode: 1}
	}
	return nil
}

func (r *recordingExecutor) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seedCache adds a fake pg_format release to a new tool cache.
func seedCache(t *testing.T, version string) *tool.Cache {
	t.Helper()
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "pg_format"), []byte("#!/bin/sh\n"), 0o600))
	c := tool.NewCache(t.TempDir(), "x64", discardLogger())
	_, err := c.Add(src, "pg_format", version)
	require.NoError(t, err)
	return c
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		p := filepath.Join(dir, filepath.FromSlash(n))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("select 1;\n"), 0o600))
	}
}
