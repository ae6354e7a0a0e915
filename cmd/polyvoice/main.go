// Command polyvoice drives the dispatcher from live MIDI or OSC input,
// or from a scripted demo performance, and can render the result either
// as audio (demo) or a live per-voice signal monitor (monitor).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
