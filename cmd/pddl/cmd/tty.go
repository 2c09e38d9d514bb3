package cmd

import "os"

// isStdoutTTY returns true if stdout is connected to a terminal.
func isStdoutTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// resolveColor determines whether to use color output based on the flag and TTY status.
// colorFlag is the --color value: "auto", "always", or "never".
func resolveColor(colorFlag string) bool {
	if os.Getenv("NO_COLOR") != "" && colorFlag != "always" {
		return false
	}
	switch colorFlag {
	case "always":
		return true
	case "never":
		return false
	default: // "auto"
		return isStdoutTTY()
	}
}
