package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ronfux/LeadGenius/cli"
)

// runMain executes the CLI and returns the process exit code. Extracted so
// tests can drive it without exiting.
func runMain() int {
	// First interrupt cancels the run cooperatively: launches stop, running
	// tasks finish and are recorded. A second interrupt kills the process.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	if code := runMain(); code != 0 {
		os.Exit(code)
	}
}
