package cmd

import (
	"errors"
	"fmt"

	"github.com/go-drift/rx/cmd/rxplay/internal/scenario"
	rxerrors "github.com/go-drift/rx/pkg/errors"
)

func init() {
	RegisterCommand(&Command{
		Name:  "check",
		Short: "Validate scenario files without running them",
		Long: `Parse and validate scenario files.

Reports unknown sources, unsupported ops, steps with zero or several
actions and non-scalar values. Every problem in every file is listed.`,
		Usage: "rxplay check [--json] <scenario.yaml>...",
		Run:   runCheck,
	})
}

func runCheck(args []string) error {
	files, opts := parseRunArgs(args)
	if len(files) == 0 {
		return fmt.Errorf("at least one scenario file is required\n\nUsage: rxplay check <scenario.yaml>...")
	}

	logger := newLogger(stderr, opts)
	prev := rxerrors.SetHandler(rxerrors.NewLogHandler(logger, opts.verbose))
	defer rxerrors.SetHandler(prev)

	var errs []error
	for _, path := range files {
		sc, err := scenario.Load(path)
		if err != nil {
			reportConfig("rxplay.check", err)
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(stdout, "ok   %s (%d observables, %d steps)\n", path, len(sc.Observables), len(sc.Steps))
	}
	return errors.Join(errs...)
}
