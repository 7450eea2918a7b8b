// Package debug gates verbose diagnostic logging behind an environment
// variable so ordinary runs stay quiet.
package debug

import (
	"fmt"
	"os"
)

// enabled caches the CAPIDX_DEBUG check; debug logging is off by default.
var enabled = os.Getenv("CAPIDX_DEBUG") != ""

// Logf writes a debug message to stderr when CAPIDX_DEBUG is set, and is a
// no-op otherwise.
func Logf(format string, args ...interface{}) {
	if !enabled {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}
