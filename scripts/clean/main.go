// Package main removes build output, coverage files and pgfa logs.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

func main() {
	remove([]string{"bin", "dist", ".pgfa.log"})
	for _, pattern := range []string{"coverage*", "*.out", "*.test", "*.coverprofile"} {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			fmt.Printf("❌ Bad pattern %s: %v\n", pattern, err)
			continue
		}
		remove(matches)
	}
}

func remove(paths []string) {
	for _, p := range paths {
		if _, err := os.Lstat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := os.RemoveAll(p); err != nil {
			fmt.Printf("❌ Failed to remove %s: %v\n", p, err)
			continue
		}
		fmt.Printf("✅ Removed %s\n", p)
	}
}
