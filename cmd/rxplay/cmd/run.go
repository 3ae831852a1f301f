package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/go-drift/rx/cmd/rxplay/internal/scenario"
	"github.com/go-drift/rx/pkg/errors"
)

func init() {
	RegisterCommand(&Command{
		Name:  "run",
		Short: "Play scenarios and check expectations",
		Long: `Play one or more scenario files.

Each file declares input observables (optionally nullable or non-strict),
derived observables built with combine or computed, and a list of steps.
Steps run against a virtual clock: debounced callbacks only fire when an
advance_ms step moves time past their delay.

Flags:
  --verbose          Log declarations, sets and stack traces for failures
  --json             Force JSON log output even on a terminal

Exit status is non-zero when any expectation fails or a step cannot run.`,
		Usage: "rxplay run [--verbose] [--json] <scenario.yaml>...",
		Run:   runRun,
	})
}

type runOptions struct {
	verbose bool
	json    bool
}

func runRun(args []string) error {
	files, opts := parseRunArgs(args)
	if len(files) == 0 {
		return fmt.Errorf("at least one scenario file is required\n\nUsage: rxplay run [--verbose] <scenario.yaml>...")
	}

	logger := newLogger(stderr, opts)
	prev := errors.SetHandler(errors.NewLogHandler(logger, opts.verbose))
	defer errors.SetHandler(prev)

	failed := 0
	for _, path := range files {
		sc, err := scenario.Load(path)
		if err != nil {
			reportConfig("rxplay.load", err)
			return err
		}
		if sc.Name == "" {
			sc.Name = path
		}

		fmt.Fprintf(stdout, "=== %s\n", sc.Name)
		res, err := scenario.NewRunner(stdout, logger).Run(sc)
		if err != nil {
			err = fmt.Errorf("%s: %w", path, err)
			reportConfig("rxplay.run", err)
			return err
		}
		for _, f := range res.Failures {
			fmt.Fprintf(stdout, "    FAIL %s\n", f)
		}
		if res.OK() {
			fmt.Fprintf(stdout, "--- ok   %s (%d steps)\n", sc.Name, res.Steps)
		} else {
			failed++
			fmt.Fprintf(stdout, "--- FAIL %s (%d of %d steps failed)\n", sc.Name, len(res.Failures), res.Steps)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(files))
	}
	return nil
}

// reportConfig sends a scenario failure to the installed error handler.
func reportConfig(op string, err error) {
	errors.Report(&errors.Error{
		Op:         op,
		Kind:       errors.KindConfig,
		Err:        err,
		StackTrace: errors.CaptureStack(),
	})
}

func parseRunArgs(args []string) ([]string, runOptions) {
	var opts runOptions
	var files []string
	for _, arg := range args {
		switch {
		case arg == "--verbose":
			opts.verbose = true
		case arg == "--json":
			opts.json = true
		case strings.HasPrefix(arg, "--"):
			// Unknown flags are ignored.
		default:
			files = append(files, arg)
		}
	}
	return files, opts
}

// newLogger picks a text handler for terminals and JSON otherwise.
func newLogger(w *os.File, opts runOptions) *slog.Logger {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	fd := w.Fd()
	if !opts.json && (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) {
		return slog.New(slog.NewTextHandler(w, handlerOpts))
	}
	return slog.New(slog.NewJSONHandler(w, handlerOpts))
}
