package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

// captureStderr sends command logs to a file and returns a func reading it.
func captureStderr(t *testing.T) func() string {
	t.Helper()
	f, err := os.Create(filepath.Join(t.TempDir(), "stderr.log"))
	if err != nil {
		t.Fatal(err)
	}
	prev := stderr
	stderr = f
	t.Cleanup(func() {
		stderr = prev
		f.Close()
	})
	return func() string {
		data, err := os.ReadFile(f.Name())
		if err != nil {
			t.Fatal(err)
		}
		return string(data)
	}
}

func TestRun_Scenarios(t *testing.T) {
	out := captureStdout(t)
	captureStderr(t)
	if err := execute([]string{"run", "--json", "../testdata/cart.yaml", "../testdata/search.yaml"}); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := strings.Join([]string{
		"=== cart",
		"subtotal -> 36",
		"summary = [36, SAVE10]",
		"--- ok   cart (12 steps)",
		"=== search",
		"query -> o",
		"query -> ob",
		"query -> obs",
		"query settled at obs",
		"--- ok   search (8 steps)",
		"",
	}, "\n")
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
}

func TestCheck_ReportsEveryProblem(t *testing.T) {
	captureStdout(t)
	logs := captureStderr(t)
	err := execute([]string{"check", "--json", "../testdata/broken.yaml"})
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{`op "average"`, `unknown source "missing"`, "exactly one action"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
	for _, want := range []string{`"msg":"rx error"`, `"op":"rxplay.check"`, `"kind":"config"`} {
		if !strings.Contains(logs(), want) {
			t.Errorf("log %q does not contain %s", logs(), want)
		}
	}
}

func TestRun_LoadFailureLogged(t *testing.T) {
	captureStdout(t)
	logs := captureStderr(t)
	err := execute([]string{"run", "--json", "../testdata/broken.yaml"})
	if err == nil {
		t.Fatal("expected a load error")
	}
	for _, want := range []string{`"op":"rxplay.load"`, `"kind":"config"`, "unknown source"} {
		if !strings.Contains(logs(), want) {
			t.Errorf("log %q does not contain %s", logs(), want)
		}
	}
}

func TestRun_AbortedStepLogged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abort.yaml")
	src := "observables: [{name: a, value: 1}]\nsteps: [{dispose: a}, {set: a, value: 2}]\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	captureStdout(t)
	logs := captureStderr(t)

	err := execute([]string{"run", "--json", path})
	if err == nil || !strings.Contains(err.Error(), "disposed") {
		t.Fatalf("err = %v, want a disposed error", err)
	}
	for _, want := range []string{`"op":"rxplay.run"`, `"kind":"config"`, "disposed"} {
		if !strings.Contains(logs(), want) {
			t.Errorf("log %q does not contain %s", logs(), want)
		}
	}
}

func TestCheck_Valid(t *testing.T) {
	out := captureStdout(t)
	if err := execute([]string{"check", "../testdata/cart.yaml"}); err != nil {
		t.Fatalf("check: %v", err)
	}
	if want := "ok   ../testdata/cart.yaml (6 observables, 12 steps)\n"; out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	captureStdout(t)
	if err := execute([]string{"frobnicate"}); err == nil {
		t.Error("expected an error for an unknown command")
	}
}

func TestExecute_Version(t *testing.T) {
	out := captureStdout(t)
	if err := execute([]string{"--version"}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "rxplay version "+Version) {
		t.Errorf("output = %q", out.String())
	}
}

func TestParseRunArgs(t *testing.T) {
	files, opts := parseRunArgs([]string{"--verbose", "a.yaml", "--unknown", "b.yaml", "--json"})
	if diff := cmp.Diff([]string{"a.yaml", "b.yaml"}, files); diff != "" {
		t.Errorf("files (-want +got):\n%s", diff)
	}
	if !opts.verbose || !opts.json {
		t.Errorf("opts = %+v", opts)
	}
}
