package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// cliEnv isolates a test from the developer's environment.
func cliEnv(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("AITASK_OUTPUT_ROOT", filepath.Join(root, "out"))
	t.Setenv("AITASK_MODE", "")
	t.Setenv("AITASK_DEFAULT_PROVIDER", "")
	t.Setenv("AITASK_HISTORY_BACKEND", "memory")
	t.Setenv("AITASK_HISTORY_DSN", "")
	t.Setenv("AITASK_OTLP_ENDPOINT", "")
	t.Setenv("OPENAI_API_KEY", "")
	return root
}

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

// ========== Usage ==========

// TestRun_Usage verifies exit codes for missing and unknown commands.
func TestRun_Usage(t *testing.T) {
	cliEnv(t)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no command", nil, 2},
		{"unknown command", []string{"paint"}, 2},
		{"missing prompt", []string{"chat"}, 2},
		{"bad flag", []string{"-nope"}, 2},
		{"unknown provider", []string{"chat", "-provider", "acme", "hi"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, _, _ := runCLI(t, tt.args...); code != tt.want {
				t.Errorf("expected exit code %d, got %d", tt.want, code)
			}
		})
	}
}

// TestRun_UnknownHistoryBackend verifies configuration errors fail the run.
func TestRun_UnknownHistoryBackend(t *testing.T) {
	cliEnv(t)
	t.Setenv("AITASK_HISTORY_BACKEND", "mongo")

	code, _, stderr := runCLI(t, "kinds")
	if code != 1 || !strings.Contains(stderr, "mongo") {
		t.Errorf("expected a backend error, got %d %q", code, stderr)
	}
}

// ========== Commands ==========

// TestRun_Complete verifies streamed text from the offline executor.
func TestRun_Complete(t *testing.T) {
	cliEnv(t)

	code, stdout, stderr := runCLI(t, "complete", "hello", "world")
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, stderr)
	}
	if stdout != "hello world\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

// TestRun_Chat verifies an explicit provider flag.
func TestRun_Chat(t *testing.T) {
	cliEnv(t)

	code, stdout, stderr := runCLI(t, "chat", "-provider", "Echo", "-system", "be brief", "ping")
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, stderr)
	}
	if strings.TrimSpace(stdout) != "ping" {
		t.Errorf("unexpected output %q", stdout)
	}
}

// TestRun_Speech verifies that the audio file lands under the output root.
func TestRun_Speech(t *testing.T) {
	root := cliEnv(t)

	code, stdout, stderr := runCLI(t, "speech", "Hello")
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, stderr)
	}
	path := strings.TrimSpace(stdout)
	if !strings.HasPrefix(path, filepath.Join(root, "out")) || filepath.Ext(path) != ".mp3" {
		t.Fatalf("unexpected path %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "Hello" {
		t.Errorf("unexpected audio content %q", data)
	}
}

// TestRun_Listings verifies the kinds and providers tables.
func TestRun_Listings(t *testing.T) {
	cliEnv(t)

	_, kinds, _ := runCLI(t, "kinds")
	for _, want := range []string{"KIND", "speech", "list_models"} {
		if !strings.Contains(kinds, want) {
			t.Errorf("kinds output misses %q:\n%s", want, kinds)
		}
	}

	_, providers, _ := runCLI(t, "providers")
	if !strings.Contains(providers, "echo") || strings.Contains(providers, "openai") {
		t.Errorf("unexpected providers output:\n%s", providers)
	}
}

// TestRun_HistorySQLite verifies records persist across runs.
func TestRun_HistorySQLite(t *testing.T) {
	root := cliEnv(t)
	t.Setenv("AITASK_HISTORY_BACKEND", "sqlite")
	t.Setenv("AITASK_HISTORY_DSN", filepath.Join(root, "history.db"))

	if code, _, stderr := runCLI(t, "complete", "-sender", "tester", "hi"); code != 0 {
		t.Fatalf("exit code %d: %s", code, stderr)
	}
	code, stdout, stderr := runCLI(t, "history", "-n", "5")
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "completion") || !strings.Contains(stdout, "tester") {
		t.Errorf("expected the completion record, got:\n%s", stdout)
	}

	_, stdout, _ = runCLI(t, "history", "-json")
	if !strings.Contains(stdout, `"sender":"tester"`) {
		t.Errorf("expected a JSON record, got:\n%s", stdout)
	}
}

// TestRun_HistoryDiscard verifies the none backend cannot be listed.
func TestRun_HistoryDiscard(t *testing.T) {
	cliEnv(t)
	t.Setenv("AITASK_HISTORY_BACKEND", "none")

	if code, _, _ := runCLI(t, "history"); code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
}
