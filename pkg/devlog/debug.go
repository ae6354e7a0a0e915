//go:build debug

// Package devlog is a side-channel event logger: present in debug
// builds, compiled to nothing in release builds, so the real-time
// audio thread never pays for logging it doesn't need. Grounded on the
// teacher's sibling repo justyntemme-clapgo's tracker_debug.go /
// tracker_release.go split (pkg/performance), generalized from
// performance tracking to arbitrary
// named dispatch events.
package devlog

import (
	"fmt"
	"os"
	"time"
)

// Event prints name and its key/value pairs to stderr, timestamped.
// kv must come in (key, value) pairs; an odd trailing key is printed
// with a "?" placeholder value.
func Event(name string, kv ...any) {
	fmt.Fprintf(os.Stderr, "[%s] %s", time.Now().Format(time.RFC3339Nano), name)
	for i := 0; i < len(kv); i += 2 {
		key := kv[i]
		val := any("?")
		if i+1 < len(kv) {
			val = kv[i+1]
		}
		fmt.Fprintf(os.Stderr, " %v=%v", key, val)
	}
	fmt.Fprintln(os.Stderr)
}

// Enabled reports whether devlog actually writes anything. Callers can
// use this to skip building an expensive kv list in release builds.
func Enabled() bool { return true }
