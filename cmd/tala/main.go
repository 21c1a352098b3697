package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Exit codes of `tala solve`, kept compatible with the benchmark harness
const (
	exitOptimal    = 10
	exitUnverified = 15
	exitInfeasible = 20
)

// exitCode ends the process with a specific status once the command has written its output
type exitCode int

func (code exitCode) Error() string {
	return fmt.Sprintf("exit status %d", int(code))
}

func main() {
	err := rootCmd.ExecuteContext(context.Background())
	if err == nil {
		return
	}

	var code exitCode
	if errors.As(err, &code) {
		os.Exit(int(code))
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
