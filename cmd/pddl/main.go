// pddl analyzes PDDL domains, problems, plans and happenings traces.
// It parses single files or watches a workspace and keeps every file's
// model current.
package main

import (
	"os"

	"github.com/corey/pddl/cmd/pddl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
