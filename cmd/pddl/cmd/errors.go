package cmd

import (
	"fmt"
	"strings"
)

// isDBLockError returns true if the error chain contains a bbolt lock timeout.
// bbolt returns the string "timeout" when it cannot acquire the file lock
// within the configured deadline.
func isDBLockError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "timeout")
}

// diagnoseDBLock returns guidance for a locked association store.
func diagnoseDBLock(dbPath string) string {
	return fmt.Sprintf("the association store %s is locked by another process\n"+
		"  → a running 'pddl watch' holds it; stop it first\n"+
		"  → or disable persistence for this run with store.path: \"\" in pddl.yaml", dbPath)
}
