//go:build !debug

package devlog

// Event is a no-op in release builds.
func Event(name string, kv ...any) {}

// Enabled always reports false outside debug builds.
func Enabled() bool { return false }
