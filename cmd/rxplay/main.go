// Command rxplay replays observable scenarios described in YAML files.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/rx/cmd/rxplay/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
