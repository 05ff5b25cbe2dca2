// Package main provides integration tests for the pgfa CLI.
package main

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andyballingall/pgformat-action/internal/app"
)

var binaryPath string

var (
	errBuild  error
	buildOnce sync.Once
)

func ensureBinary() error {
	buildOnce.Do(func() {
		tmpDir, err := os.MkdirTemp("", "pgfa-integration-test-*")
		if err != nil {
			errBuild = fmt.Errorf("failed to create temp dir: %w", err)
			return
		}

		binaryName := "pgfa"
		if runtime.GOOS == "windows" {
			binaryName += ".exe"
		}
		binaryPath = filepath.Join(tmpDir, binaryName)

		cmd := exec.CommandContext(context.Background(), "go", "build", "-o", binaryPath, ".")
		if bOutput, bErr := cmd.CombinedOutput(); bErr != nil {
			errBuild = fmt.Errorf("failed to build binary: %w\nOutput: %s", bErr, string(bOutput))
		}
	})
	return errBuild
}

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"pgfa": func() int {
			ctx := context.Background()
			if err := app.Run(ctx, os.Args, os.Stdout, os.Stderr, nil); err != nil {
				return 1
			}
			return 0
		},
	}))
}

func TestScripts(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("scripts use a shell script as the formatter")
	}
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			"mkzip": cmdMkzip,
		},
	})
}

// cmdMkzip packs a directory of the script work dir into a zip archive, keeping the
// directory name as the top-level folder the way release archives do.
//
//	mkzip <archive> <dir>
func cmdMkzip(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("unsupported: ! mkzip")
	}
	if len(args) != 2 {
		ts.Fatalf("usage: mkzip archive dir")
	}
	ts.Check(writeZip(ts.MkAbs(args[0]), ts.MkAbs(args[1])))
}

func writeZip(archive, dir string) error {
	out, err := os.Create(archive)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	parent := filepath.Dir(dir)
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(parent, p)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if d.IsDir() {
			hdr.Name += "/"
			_, err = zw.CreateHeader(hdr)
			return err
		}
		hdr.Method = zip.Deflate
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
	if err != nil {
		return err
	}
	return zw.Close()
}

func TestBinary_Help(t *testing.T) {
	t.Parallel()
	if err := ensureBinary(); err != nil {
		t.Fatal(err)
	}
	cmd := exec.CommandContext(context.Background(), binaryPath, "--help")
	cmd.Env = append(os.Environ(), "GITHUB_ACTIONS=")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	require.NoError(t, err, "stderr: %s", stderr.String())
	assert.Contains(t, stdout.String(), "pgfa formats the SQL files of a repository")
}

func TestBinary_Version(t *testing.T) {
	t.Parallel()
	if err := ensureBinary(); err != nil {
		t.Fatal(err)
	}
	out, err := exec.CommandContext(context.Background(), binaryPath, "version").Output()
	require.NoError(t, err)
	assert.Equal(t, "pgfa "+app.Version+"\n", string(out))
}

func TestBinary_UnknownCommand(t *testing.T) {
	t.Parallel()
	if err := ensureBinary(); err != nil {
		t.Fatal(err)
	}
	cmd := exec.CommandContext(context.Background(), binaryPath, "bogus")
	cmd.Env = append(os.Environ(), "GITHUB_ACTIONS=")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	require.Error(t, cmd.Run())
	assert.Contains(t, stderr.String(), "Error: unknown command")
}
