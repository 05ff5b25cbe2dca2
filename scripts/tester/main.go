// Package main runs the test suite, optionally with a coverage gate.
//
//	go run ./scripts/tester [--coverage] [--min=85] [--summary] [--browser] [go test args...]
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

const defaultMin = 85.0

type testerConfig struct {
	checkCoverage bool
	showSummary   bool
	openBrowser   bool
	minCoverage   float64
	coverageFile  string
}

func (c *testerConfig) isCoverageRun() bool {
	return c.checkCoverage || c.showSummary || c.openBrowser
}

func main() {
	testArgs, cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(2)
	}

	if cfg.isCoverageRun() {
		if cfg.coverageFile == "" {
			cfg.coverageFile = "coverage.out"
			testArgs = append(testArgs, "-coverprofile="+cfg.coverageFile)
		}
		testArgs = append(testArgs, "-coverpkg=./internal/...")
	}
	if len(testArgs) == 0 || strings.HasPrefix(testArgs[len(testArgs)-1], "-") {
		testArgs = append(testArgs, "./...")
	}

	if _, lookErr := exec.LookPath("gotestsum"); lookErr == nil && !cfg.isCoverageRun() {
		runCommand("gotestsum", append([]string{"--"}, testArgs...))
	} else {
		runCommand("go", append([]string{"test", "-race"}, testArgs...))
	}

	switch {
	case cfg.checkCoverage:
		checkCoverage(cfg.coverageFile, cfg.minCoverage)
	case cfg.showSummary:
		runCommand("go", []string{"tool", "cover", "-func", cfg.coverageFile})
	case cfg.openBrowser:
		runCommand("go", []string{"tool", "cover", "-html", cfg.coverageFile})
	}
}

func parseFlags(args []string) ([]string, *testerConfig, error) {
	var testArgs []string
	cfg := &testerConfig{minCoverage: defaultMin}

	for _, arg := range args {
		switch {
		case arg == "--coverage":
			cfg.checkCoverage = true
		case arg == "--summary":
			cfg.showSummary = true
		case arg == "--browser":
			cfg.openBrowser = true
		case strings.HasPrefix(arg, "--min="):
			v, err := strconv.ParseFloat(strings.TrimPrefix(arg, "--min="), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("invalid --min: %w", err)
			}
			cfg.minCoverage = v
		case strings.HasPrefix(arg, "-coverprofile="):
			cfg.coverageFile = strings.TrimPrefix(arg, "-coverprofile=")
			testArgs = append(testArgs, arg)
		default:
			testArgs = append(testArgs, arg)
		}
	}
	return testArgs, cfg, nil
}

func runCommand(name string, args []string) {
	cmd := exec.CommandContext(context.Background(), name, args...)
	// The git tests create their own repositories; inherited GIT_ variables would point
	// them at this one.
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, "GIT_") {
			cmd.Env = append(cmd.Env, kv)
		}
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Printf("❌ Command failed: %v\n", err)
		os.Exit(1)
	}
}

func checkCoverage(coverageFile string, minCoverage float64) {
	output, err := exec.CommandContext(context.Background(), "go", "tool", "cover", "-func", coverageFile).Output()
	if err != nil {
		fmt.Printf("❌ Error running go tool cover: %v\n", err)
		os.Exit(1)
	}

	total, err := totalCoverage(string(output))
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	if total < minCoverage {
		fmt.Printf("❌ Coverage %.1f%% is below the %.1f%% minimum\n", total, minCoverage)
		os.Exit(1)
	}
	fmt.Printf("✅ Coverage %.1f%% (minimum %.1f%%)\n", total, minCoverage)
}

// totalCoverage reads the percentage from the "total:" line of go tool cover -func.
func totalCoverage(output string) (float64, error) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "total:") {
			continue
		}
		parts := strings.Fields(line)
		return strconv.ParseFloat(strings.TrimSuffix(parts[len(parts)-1], "%"), 64)
	}
	return 0, fmt.Errorf("no total line in coverage output")
}
