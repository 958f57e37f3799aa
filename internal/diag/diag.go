// Package diag provides source-location-tagged diagnostics for the
// scan pipeline: fatal errors exit the process, warnings are written
// to stderr and execution continues.
package diag

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

func location(skip int) string {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "unknown:0"
	}
	fn := runtime.FuncForPC(pc)
	name := "unknown"
	if fn != nil {
		name = filepath.Base(fn.Name())
	}
	return fmt.Sprintf("%s:%d (%s)", filepath.Base(file), line, name)
}

// Warnf writes a positioned, non-fatal warning to stderr.
func Warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "warning at %s: %s\n", location(1), fmt.Sprintf(format, args...))
}

// Warn is Warnf without formatting.
func Warn(msg string) {
	fmt.Fprintf(os.Stderr, "warning at %s: %s\n", location(1), msg)
}

// Fatalf writes a positioned fatal error to stderr and exits with status 1.
func Fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error at %s: %s\n", location(1), fmt.Sprintf(format, args...))
	os.Exit(1)
}

// Fatal is Fatalf without formatting.
func Fatal(msg string) {
	fmt.Fprintf(os.Stderr, "error at %s: %s\n", location(1), msg)
	os.Exit(1)
}
