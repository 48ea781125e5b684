//go:build !windows

package executor_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ronfux/LeadGenius/executor"
	"github.com/ronfux/LeadGenius/task"
)

// fakeBinary writes an executable shell script standing in for the model CLI.
// The script receives: --model <model> --prompt <prompt>.
func fakeBinary(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-model-cli")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("write fake binary: %v", err)
	}
	return path
}

func searchTask(t *testing.T, opts ...task.Option) *task.Task {
	t.Helper()
	opts = append([]task.Option{task.WithPrompt("find ems companies in Houston, TX")}, opts...)
	tk, err := task.New("houston_tx", task.KindCitySearch,
		task.Payload{City: "Houston", State: "TX", Industry: "ems"}, opts...)
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	return tk
}

func TestCLI_ExecuteSuccess(t *testing.T) {
	bin := fakeBinary(t, `echo '{"businesses": []}'`)
	cli := executor.NewCLI(executor.WithBinary(bin))

	res, err := cli.Execute(context.Background(), searchTask(t))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", res.ExitCode)
	}
	if !strings.Contains(res.Output, `"businesses"`) {
		t.Errorf("output missing document: %q", res.Output)
	}
}

func TestCLI_PromptRendering(t *testing.T) {
	// $4 is the rendered prompt (args: --model <m> --prompt <p>).
	bin := fakeBinary(t, `printf '%s' "$4"`)

	t.Run("plain", func(t *testing.T) {
		cli := executor.NewCLI(executor.WithBinary(bin))
		res, err := cli.Execute(context.Background(), searchTask(t))
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if res.Output != "find ems companies in Houston, TX" {
			t.Errorf("prompt = %q", res.Output)
		}
	})

	t.Run("web search prefix", func(t *testing.T) {
		cli := executor.NewCLI(executor.WithBinary(bin), executor.WithWebSearch(true))
		res, err := cli.Execute(context.Background(), searchTask(t))
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if !strings.HasPrefix(res.Output, "@web ") {
			t.Errorf("prompt missing web-search directive: %q", res.Output)
		}
	})

	t.Run("instructions prepended", func(t *testing.T) {
		cli := executor.NewCLI(executor.WithBinary(bin))
		tk := searchTask(t, task.WithInstructions("verify every phone number"))
		res, err := cli.Execute(context.Background(), tk)
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if !strings.HasPrefix(res.Output, "verify every phone number") {
			t.Errorf("prompt missing instructions: %q", res.Output)
		}
		if !strings.Contains(res.Output, "find ems companies") {
			t.Errorf("prompt missing task text: %q", res.Output)
		}
	})
}

func TestCLI_ModelFlag(t *testing.T) {
	bin := fakeBinary(t, `printf '%s' "$2"`)
	cli := executor.NewCLI(executor.WithBinary(bin), executor.WithModel("gemini-2.5-pro"))

	res, err := cli.Execute(context.Background(), searchTask(t))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if res.Output != "gemini-2.5-pro" {
		t.Errorf("model = %q, want gemini-2.5-pro", res.Output)
	}
}

func TestCLI_NonZeroExit(t *testing.T) {
	bin := fakeBinary(t, `echo "quota exhausted" >&2; exit 3`)
	cli := executor.NewCLI(executor.WithBinary(bin))

	res, err := cli.Execute(context.Background(), searchTask(t))
	if err != nil {
		t.Fatalf("a completed non-zero exit should not be an error, got %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", res.ExitCode)
	}
	if !strings.Contains(res.Stderr, "quota exhausted") {
		t.Errorf("stderr = %q", res.Stderr)
	}
}

func TestCLI_DeadlineKillsSubprocess(t *testing.T) {
	bin := fakeBinary(t, `sleep 30`)
	cli := executor.NewCLI(executor.WithBinary(bin))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := cli.Execute(ctx, searchTask(t))
	if err == nil {
		t.Fatal("expected error from expired deadline")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("subprocess not killed promptly, took %v", elapsed)
	}
}

func TestCLI_MissingBinary(t *testing.T) {
	cli := executor.NewCLI(executor.WithBinary(filepath.Join(t.TempDir(), "no-such-bin")))

	_, err := cli.Execute(context.Background(), searchTask(t))
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestCLI_Probe(t *testing.T) {
	bin := fakeBinary(t, `echo "fake-model-cli 1.2.3"`)
	cli := executor.NewCLI(executor.WithBinary(bin))

	version, err := cli.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if version != "fake-model-cli 1.2.3" {
		t.Errorf("version = %q", version)
	}
}

func TestCLI_ProbeMissingBinary(t *testing.T) {
	cli := executor.NewCLI(executor.WithBinary("definitely-not-installed-anywhere"))

	if _, err := cli.Probe(context.Background()); err == nil {
		t.Fatal("expected error for missing binary")
	}
}
