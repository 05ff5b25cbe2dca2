package tool

import (
	"archive/zip"
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type zipEntry struct {
	name    string
	content string
	mode    os.FileMode
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func buildZip(t *testing.T, entries []zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		h := &zip.FileHeader{Name: e.name, Method: zip.Deflate}
		h.SetMode(e.mode)
		w, err := zw.CreateHeader(h)
		require.NoError(t, err)
		if e.mode.IsDir() {
			continue
		}
		_, err = w.Write([]byte(e.content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// pgFormatterZip mimics the layout of a GitHub tag archive of pgFormatter.
func pgFormatterZip(t *testing.T, version string) []byte {
	t.Helper()
	root := "pgFormatter-" + version + "/"
	return buildZip(t, []zipEntry{
		{name: root, mode: os.ModeDir | 0o755},
		{name: root + "pg_format", content: "#!/usr/bin/env perl\nprint \"pg_format " + version + "\\n\";\n", mode: 0o755},
		{name: root + "lib/", mode: os.ModeDir | 0o755},
		{name: root + "lib/pgFormatter/Beautify.pm", content: "1;\n", mode: 0o644},
	})
}

func writeFile(t *testing.T, path string, data []byte, mode os.FileMode) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, mode))
	return path
}
