// Package main prints the pgfa version derived from the nearest v* tag, without the "v".
package main

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

func main() {
	out, err := exec.CommandContext(context.Background(),
		"git", "describe", "--tags", "--match", "v*", "--always", "--dirty").Output()
	if err != nil {
		fmt.Print("dev")
		return
	}
	fmt.Print(strings.TrimPrefix(strings.TrimSpace(string(out)), "v"))
}
