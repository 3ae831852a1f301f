package scenario

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sumScenario = `
name: sum
observables:
  - {name: a, value: 1}
  - {name: b, value: 2}
  - {name: sum, combine: [a, b], op: sum, watch: true}
steps:
  - {expect: sum, value: 3}
  - {set: a, value: 3}
  - {expect: sum, value: 5}
  - {set: b, value: 4}
  - {expect: sum, value: 7}
`

func run(t *testing.T, src string) (*Result, string, error) {
	t.Helper()
	sc, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var out bytes.Buffer
	res, err := NewRunner(&out, nil).Run(sc)
	return res, out.String(), err
}

func TestRun_Sum(t *testing.T) {
	res, out, err := run(t, sumScenario)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.OK() {
		t.Errorf("failures: %v", res.Failures)
	}
	if res.Steps != 5 || res.Name != "sum" {
		t.Errorf("result = %+v", res)
	}
	if diff := cmp.Diff("sum -> 5\nsum -> 7\n", out); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
}

func TestRun_FailedExpectation(t *testing.T) {
	res, _, err := run(t, `
observables:
  - {name: a, value: 1}
steps:
  - {expect: a, value: 2}
  - {print: a}
`)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"steps[0]: a = 1, want 2"}
	if diff := cmp.Diff(want, res.Failures); diff != "" {
		t.Errorf("failures (-want +got):\n%s", diff)
	}
	if res.Steps != 2 {
		t.Errorf("Steps = %d, want 2 (failures do not stop the run)", res.Steps)
	}
}

func TestRun_StrictAndNotify(t *testing.T) {
	_, out, err := run(t, `
observables:
  - {name: strict, value: 1, watch: true}
  - {name: loose, value: 1, strict: false, watch: true}
steps:
  - {set: strict, value: 1}
  - {set: loose, value: 1}
  - {notify: strict}
`)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff("loose -> 1\nstrict -> 1\n", out); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
}

func TestRun_Debounce(t *testing.T) {
	_, out, err := run(t, `
observables:
  - {name: query, value: "", debounce_ms: 100}
steps:
  - {set: query, value: g}
  - {advance_ms: 40}
  - {set: query, value: go}
  - {advance_ms: 40}
  - {set: query, value: gop}
  - {advance_ms: 100}
`)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff("query settled at gop\n", out); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
}

func TestRun_NullableAndComputed(t *testing.T) {
	res, out, err := run(t, `
observables:
  - {name: user, nullable: true}
  - {name: greeting, value: hi}
  - {name: both, computed: [greeting, user]}
  - {name: total, combine: [user], op: sum}
steps:
  - {expect: user, value: null}
  - {expect: total, value: 0}
  - {set: user, value: 5}
  - {print: both}
  - {expect: total, value: 5}
  - {clear: user}
  - {print: both}
`)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.OK() {
		t.Errorf("failures: %v", res.Failures)
	}
	if diff := cmp.Diff("both = [hi, 5]\nboth = [hi, null]\n", out); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
}

func TestRun_DisposedDerivedStopsFollowing(t *testing.T) {
	res, _, err := run(t, `
observables:
  - {name: a, value: 2}
  - {name: b, value: 3}
  - {name: prod, combine: [a, b], op: product}
steps:
  - {dispose: prod}
  - {set: a, value: 10}
  - {expect: prod, value: 6}
`)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.OK() {
		t.Errorf("failures: %v", res.Failures)
	}
}

func TestRun_SetDisposedFails(t *testing.T) {
	_, _, err := run(t, `
observables:
  - {name: a, value: 1}
steps:
  - {dispose: a}
  - {set: a, value: 2}
`)
	if err == nil || !strings.Contains(err.Error(), "disposed") {
		t.Errorf("err = %v, want a disposed error", err)
	}
}

func TestRun_SetDerivedFails(t *testing.T) {
	_, _, err := run(t, sumScenario+"  - {set: sum, value: 1}\n")
	if err == nil || !strings.Contains(err.Error(), "derived") {
		t.Errorf("err = %v, want a derived error", err)
	}
}

func TestRun_CombineFailurePropagates(t *testing.T) {
	_, _, err := run(t, `
observables:
  - {name: a, value: 1}
  - {name: total, combine: [a], op: sum}
steps:
  - {set: a, value: oops}
`)
	if err == nil || !strings.Contains(err.Error(), "not a number") {
		t.Errorf("err = %v, want a combine failure", err)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"missing name", "observables: [{value: 1}]", "name is required"},
		{"duplicate", "observables: [{name: a, value: 1}, {name: a, value: 2}]", "duplicate name"},
		{"missing value", "observables: [{name: a}]", "value is required"},
		{"bad op", "observables: [{name: a, value: 1}, {name: b, combine: [a], op: avg}]", "op \"avg\""},
		{"unknown source", "observables: [{name: b, combine: [a], op: sum}]", "unknown source"},
		{"derived value", "observables: [{name: a, value: 1}, {name: b, computed: [a], value: 2}]", "take no value"},
		{"non-scalar", "observables: [{name: a, value: [1, 2]}]", "must be a scalar"},
		{"two actions", "observables: [{name: a, value: 1}]\nsteps: [{set: a, print: a}]", "exactly one action"},
		{"no action", "observables: [{name: a, value: 1}]\nsteps: [{value: 1}]", "exactly one action"},
		{"unknown target", "observables: [{name: a, value: 1}]\nsteps: [{print: b}]", "unknown observable"},
		{"bad yaml", "observables: {", "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sum.yaml")
	if err := os.WriteFile(path, []byte(sumScenario), 0o644); err != nil {
		t.Fatal(err)
	}

	sc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sc.Name != "sum" || len(sc.Observables) != 3 || len(sc.Steps) != 5 {
		t.Errorf("loaded %+v", sc)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
