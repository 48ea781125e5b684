package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/ronfux/LeadGenius/task"
)

const (
	// DefaultBinary is the model CLI invoked when none is configured.
	DefaultBinary = "gemini"
	// DefaultModel is the worker model used when none is configured.
	DefaultModel = "gemini-2.5-flash"

	probeTimeout = 10 * time.Second
)

// CLI invokes an external model CLI binary as a subprocess. Safe for
// concurrent use: every Execute spawns its own process.
type CLI struct {
	bin       string
	model     string
	webSearch bool
	logger    *slog.Logger
}

// CLIOption configures a CLI executor.
type CLIOption func(*CLI)

// WithBinary sets the executable to invoke. Defaults to "gemini".
func WithBinary(bin string) CLIOption {
	return func(c *CLI) { c.bin = bin }
}

// WithModel sets the model identifier passed to the binary.
func WithModel(model string) CLIOption {
	return func(c *CLI) { c.model = model }
}

// WithWebSearch prefixes prompts with the web-search directive so the model
// grounds its answers in live search results.
func WithWebSearch(enabled bool) CLIOption {
	return func(c *CLI) { c.webSearch = enabled }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) CLIOption {
	return func(c *CLI) { c.logger = l }
}

// NewCLI builds a subprocess executor.
func NewCLI(opts ...CLIOption) *CLI {
	c := &CLI{
		bin:    DefaultBinary,
		model:  DefaultModel,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Executor = (*CLI)(nil)

// Execute renders the task's prompt and runs the binary under ctx. The
// subprocess is killed when ctx expires; a completed run with non-zero exit
// is returned as a Result, not an error.
func (c *CLI) Execute(ctx context.Context, t *task.Task) (*Result, error) {
	prompt := c.renderPrompt(t)

	cmd := exec.CommandContext(ctx, c.bin, "--model", c.model, "--prompt", prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Give a killed subprocess a moment to release the pipes instead of
	// blocking Wait forever.
	cmd.WaitDelay = 10 * time.Second

	c.logger.Debug("executor: invoking model CLI",
		slog.String("task_id", t.ID),
		slog.String("bin", c.bin),
		slog.String("model", c.model),
	)

	err := cmd.Run()

	res := &Result{
		Output: stdout.String(),
		Stderr: stderr.String(),
	}

	switch {
	case err == nil:
		return res, nil
	case ctx.Err() != nil:
		return nil, fmt.Errorf("executor: %s: %w", c.bin, ctx.Err())
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return nil, fmt.Errorf("executor: run %s: %w", c.bin, err)
	}
}

// renderPrompt combines standing instructions, the web-search directive,
// and the task prompt into the final text sent to the model.
func (c *CLI) renderPrompt(t *task.Task) string {
	var b strings.Builder
	if t.Instructions != "" {
		b.WriteString(t.Instructions)
		b.WriteString("\n\n---\n\n")
	}
	if c.webSearch {
		b.WriteString("@web ")
	}
	b.WriteString(t.Prompt)
	return b.String()
}

// Probe reports whether the binary is installed and responsive, returning
// its version banner. Used by availability checks before a run.
func (c *CLI) Probe(ctx context.Context) (string, error) {
	path, err := exec.LookPath(c.bin)
	if err != nil {
		return "", fmt.Errorf("executor: %s not found in PATH: %w", c.bin, err)
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("executor: probe %s: %w", c.bin, err)
	}
	return strings.TrimSpace(string(out)), nil
}
