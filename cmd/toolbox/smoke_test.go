//go:build smoke

package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TestSmoke_Binary builds toolbox and drives each command as a subprocess.
//
// Subtests run sequentially and depend on the first subtest building the binary.
func TestSmoke_Binary(t *testing.T) {
	projectRoot := findProjectRoot(t)
	binary := buildBinary(t, projectRoot)

	t.Run("version prints version commit and date", func(t *testing.T) {
		out, err := exec.Command(binary, "--version").CombinedOutput()
		output := string(out)
		if err != nil && !strings.Contains(output, "smoke-test") {
			t.Fatalf("--version failed: %v\n%s", err, output)
		}
		for _, want := range []string{"smoke-test", "abc1234", "2026-01-01"} {
			if !strings.Contains(output, want) {
				t.Errorf("version output = %q, want to contain %q", output, want)
			}
		}
	})

	t.Run("no args exits non-zero with usage", func(t *testing.T) {
		out, err := exec.Command(binary).CombinedOutput()
		if err == nil {
			t.Fatal("expected non-zero exit without a command")
		}
		if !strings.Contains(strings.ToLower(string(out)), "usage") {
			t.Errorf("output should contain usage:\n%s", out)
		}
	})

	t.Run("salary prints total and average", func(t *testing.T) {
		// Given: a salary file with two employees
		dir := t.TempDir()
		path := filepath.Join(dir, "salary.txt")
		if err := os.WriteFile(path, []byte("Alice,1000\nBob,2000\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		// When: toolbox salary runs
		cmd := exec.Command(binary, "salary", path)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()

		// Then: the summary line is printed
		if err != nil {
			t.Fatalf("salary failed: %v\n%s", err, out)
		}
		if !strings.Contains(string(out), "Total salary: 3000, average salary: 1500.0") {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("malformed salary exits 1", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "salary.txt")
		if err := os.WriteFile(path, []byte("Alice,lots\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		cmd := exec.Command(binary, "salary", path)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()

		exitErr, ok := err.(*exec.ExitError)
		if !ok || exitErr.ExitCode() != exitInput {
			t.Fatalf("want exit %d, got %v\n%s", exitInput, err, out)
		}
		if !strings.Contains(string(out), "line 1") {
			t.Errorf("error should name the line:\n%s", out)
		}
	})

	t.Run("cats json", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "cats.txt")
		if err := os.WriteFile(path, []byte("c1,Tom,3\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		out, err := exec.Command(binary, "cats", "--format", "json", path).CombinedOutput()

		if err != nil {
			t.Fatalf("cats failed: %v\n%s", err, out)
		}
		if !strings.Contains(string(out), `"name": "Tom"`) {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("bot plain session over piped stdin", func(t *testing.T) {
		// Given: a scripted session on stdin (not a TTY, so the plain REPL runs)
		cmd := exec.Command(binary, "bot")
		cmd.Dir = t.TempDir()
		cmd.Stdin = strings.NewReader("hello\nadd Alice 1234567890\nphone Alice\nall\nexit\n")

		// When: the bot runs to completion
		out, err := cmd.CombinedOutput()

		// Then: it exits 0 after the farewell
		if err != nil {
			t.Fatalf("bot failed: %v\n%s", err, out)
		}
		for _, want := range []string{
			"Welcome to the assistant bot!",
			"How can I help you?",
			"Contact added.",
			"Phone number for Alice: 1234567890",
			"name: Alice phone: 1234567890",
			"Good bye!",
		} {
			if !strings.Contains(string(out), want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("demo uses embedded samples", func(t *testing.T) {
		// Given: an empty working directory, so samples come from the binary
		dir := t.TempDir()
		cmd := exec.Command(binary, "demo", dir)
		cmd.Dir = dir

		out, err := cmd.CombinedOutput()

		if err != nil {
			t.Fatalf("demo failed: %v\n%s", err, out)
		}
		if !strings.Contains(string(out), "Total salary: 6000, average salary: 2000.0") {
			t.Errorf("output = %q", out)
		}
	})
}

// buildBinary compiles toolbox with version ldflags into a temp dir.
func buildBinary(t *testing.T, projectRoot string) string {
	t.Helper()
	binary := filepath.Join(t.TempDir(), "toolbox")
	cmd := exec.Command("go", "build",
		"-ldflags", "-X main.version=smoke-test -X main.commit=abc1234 -X main.date=2026-01-01",
		"-o", binary, "./cmd/toolbox")
	cmd.Dir = projectRoot
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("go build failed: %v\n%s", err, out)
	}
	return binary
}

// findProjectRoot walks up from the working directory to the go.mod.
func findProjectRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}
