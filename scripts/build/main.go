// Package main builds the pgfa binary into bin/, stamping the version from git.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

const versionVar = "github.com/andyballingall/pgformat-action/internal/app.Version"

func main() {
	goos := envOr("GOOS", runtime.GOOS)
	goarch := envOr("GOARCH", runtime.GOARCH)

	binaryName := "pgfa"
	if goos == "windows" {
		binaryName += ".exe"
	}

	ctx := context.Background()
	versionOut, _ := exec.CommandContext(ctx, "go", "run", "./scripts/version").Output()
	version := strings.TrimSpace(string(versionOut))
	if version == "" {
		version = "dev"
	}

	outDir := filepath.Join("bin", goos+"-"+goarch)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Printf("❌ Failed to create %s: %v\n", outDir, err)
		os.Exit(1)
	}

	outputPath := filepath.Join(outDir, binaryName)
	fmt.Printf("Building pgfa %s for %s/%s...\n", version, goos, goarch)

	cmd := exec.CommandContext(ctx, "go", "build", "-trimpath",
		"-ldflags", fmt.Sprintf("-s -w -X %s=%s", versionVar, version),
		"-o", outputPath, "./cmd/pgfa")
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0", "GOOS="+goos, "GOARCH="+goarch)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		fmt.Printf("❌ Build failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Build complete: %s\n", outputPath)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
