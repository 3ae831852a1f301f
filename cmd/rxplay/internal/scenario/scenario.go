// Package scenario loads and runs rxplay scenario files.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario is a parsed scenario file.
type Scenario struct {
	Name        string       `yaml:"name"`
	Observables []Observable `yaml:"observables"`
	Steps       []Step       `yaml:"steps"`
}

// Observable declares one input or derived observable.
type Observable struct {
	Name string `yaml:"name"`
	// Value is the initial value of an input observable.
	Value any `yaml:"value,omitempty"`
	// Nullable inputs start absent when Value is omitted.
	Nullable bool `yaml:"nullable,omitempty"`
	// Strict defaults to true.
	Strict *bool `yaml:"strict,omitempty"`
	// Combine lists source names; Op picks the combining function.
	Combine []string `yaml:"combine,omitempty"`
	Op      string   `yaml:"op,omitempty"`
	// Computed lists source names republished as a tuple.
	Computed []string `yaml:"computed,omitempty"`
	// Watch prints every change.
	Watch bool `yaml:"watch,omitempty"`
	// DebounceMS prints the value once changes settle for this long.
	DebounceMS int `yaml:"debounce_ms,omitempty"`
}

// Step is one scenario action. Exactly one action field is set.
type Step struct {
	Set       string `yaml:"set,omitempty"`
	Clear     string `yaml:"clear,omitempty"`
	Notify    string `yaml:"notify,omitempty"`
	Expect    string `yaml:"expect,omitempty"`
	Print     string `yaml:"print,omitempty"`
	Dispose   string `yaml:"dispose,omitempty"`
	AdvanceMS int    `yaml:"advance_ms,omitempty"`
	// Value is the operand of Set and Expect.
	Value any `yaml:"value,omitempty"`
}

// Ops lists the supported combining functions.
var Ops = []string{"sum", "product", "min", "max", "concat"}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes and validates scenario YAML.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks names, references and step shapes.
func (sc *Scenario) Validate() error {
	var errs []error
	declared := make(map[string]bool)
	for i, o := range sc.Observables {
		where := fmt.Sprintf("observables[%d]", i)
		if strings.TrimSpace(o.Name) == "" {
			errs = append(errs, fmt.Errorf("%s: name is required", where))
			continue
		}
		if declared[o.Name] {
			errs = append(errs, fmt.Errorf("%s: duplicate name %q", where, o.Name))
		}
		kinds := 0
		if len(o.Combine) > 0 {
			kinds++
			if !validOp(o.Op) {
				errs = append(errs, fmt.Errorf("%s: op %q must be one of %s", where, o.Op, strings.Join(Ops, ", ")))
			}
		}
		if len(o.Computed) > 0 {
			kinds++
		}
		if kinds > 1 {
			errs = append(errs, fmt.Errorf("%s: combine and computed are exclusive", where))
		}
		if kinds == 1 && (o.Value != nil || o.Nullable) {
			errs = append(errs, fmt.Errorf("%s: derived observables take no value", where))
		}
		if kinds == 0 && o.Value == nil && !o.Nullable {
			errs = append(errs, fmt.Errorf("%s: value is required", where))
		}
		if o.Value != nil && !isScalar(o.Value) {
			errs = append(errs, fmt.Errorf("%s: value must be a scalar, got %T", where, o.Value))
		}
		for _, ref := range append(append([]string{}, o.Combine...), o.Computed...) {
			if !declared[ref] {
				errs = append(errs, fmt.Errorf("%s: unknown source %q (sources must be declared first)", where, ref))
			}
		}
		if o.DebounceMS < 0 {
			errs = append(errs, fmt.Errorf("%s: debounce_ms must not be negative", where))
		}
		declared[o.Name] = true
	}

	for i, s := range sc.Steps {
		where := fmt.Sprintf("steps[%d]", i)
		target, actions := s.target()
		if actions != 1 {
			errs = append(errs, fmt.Errorf("%s: exactly one action is required, got %d", where, actions))
			continue
		}
		if target != "" && !declared[target] {
			errs = append(errs, fmt.Errorf("%s: unknown observable %q", where, target))
		}
		if s.Value != nil && !isScalar(s.Value) {
			errs = append(errs, fmt.Errorf("%s: value must be a scalar, got %T", where, s.Value))
		}
		if s.AdvanceMS < 0 {
			errs = append(errs, fmt.Errorf("%s: advance_ms must not be negative", where))
		}
	}
	return errors.Join(errs...)
}

// target returns the observable a step acts on and how many actions it sets.
func (s Step) target() (string, int) {
	target, actions := "", 0
	for _, name := range []string{s.Set, s.Clear, s.Notify, s.Expect, s.Print, s.Dispose} {
		if name != "" {
			target = name
			actions++
		}
	}
	if s.AdvanceMS > 0 {
		actions++
	}
	return target, actions
}

func validOp(op string) bool {
	for _, o := range Ops {
		if o == op {
			return true
		}
	}
	return false
}

func isScalar(v any) bool {
	switch v.(type) {
	case int, int64, float64, string, bool:
		return true
	}
	return false
}
