package scenario

import (
	"fmt"
	"strings"

	"github.com/go-drift/rx/pkg/core"
)

// combiner returns the combining function for op. Absent nullable values
// are skipped. Numeric ops keep integer results while every operand is an
// integer and switch to float64 otherwise.
func combiner(op string) func(values []any) any {
	switch op {
	case "concat":
		return func(values []any) any {
			var sb strings.Builder
			for _, v := range present(values) {
				sb.WriteString(fmt.Sprint(v))
			}
			return sb.String()
		}
	case "sum":
		return numeric(func(acc, x float64) float64 { return acc + x }, 0)
	case "product":
		return numeric(func(acc, x float64) float64 { return acc * x }, 1)
	case "min":
		return extreme(func(a, b float64) bool { return b < a })
	case "max":
		return extreme(func(a, b float64) bool { return b > a })
	default:
		panic(fmt.Sprintf("scenario: unknown op %q", op))
	}
}

func numeric(fold func(acc, x float64) float64, start float64) func([]any) any {
	return func(values []any) any {
		acc, ints := start, true
		for _, v := range present(values) {
			x, isInt := number(v)
			ints = ints && isInt
			acc = fold(acc, x)
		}
		return result(acc, ints)
	}
}

func extreme(better func(best, x float64) bool) func([]any) any {
	return func(values []any) any {
		vals := present(values)
		if len(vals) == 0 {
			return nil
		}
		best, ints := number(vals[0])
		for _, v := range vals[1:] {
			x, isInt := number(v)
			ints = ints && isInt
			if better(best, x) {
				best = x
			}
		}
		return result(best, ints)
	}
}

func result(x float64, ints bool) any {
	if ints {
		return int(x)
	}
	return x
}

// present unwraps nullable values and drops absent ones.
func present(values []any) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		if opt, ok := v.(core.Optional[any]); ok {
			inner, ok := opt.Get()
			if !ok {
				continue
			}
			v = inner
		}
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

// number converts a scalar to float64, panicking on non-numbers so the
// failure propagates out of the combinator.
func number(v any) (float64, bool) {
	switch v := v.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, false
	default:
		panic(fmt.Errorf("scenario: %v (%T) is not a number", v, v))
	}
}
