package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"

	"github.com/anvilaudio/polyvoice/adapters/midiadapter"
)

// listenMIDICmd opens a real MIDI input port and streams decoded events
// into a Dispatcher for as long as the process runs. Listing ports only
// ever finds something once the binary is built with a side-effect
// import of a concrete gomidi driver (e.g. drivers/rtmididrv) — that
// import is left to the caller's own build since it pulls in cgo.
var listenMIDICmd = &cobra.Command{
	Use:   "listen-midi [port name]",
	Short: "Decode a live MIDI input port into dispatcher events",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ports := midi.InPorts()
		if len(args) == 0 {
			if len(ports) == 0 {
				return fmt.Errorf("listen-midi: no MIDI input ports registered (build with a gomidi driver import)")
			}
			fmt.Println("available input ports:")
			for _, p := range ports {
				fmt.Printf("  %s\n", p)
			}
			return nil
		}

		in, err := midi.FindInPort(args[0])
		if err != nil {
			return fmt.Errorf("listen-midi: %w", err)
		}

		d, _, err := buildDispatcher()
		if err != nil {
			return err
		}

		a := midiadapter.New(d)
		if err := a.Listen(in); err != nil {
			return fmt.Errorf("listen-midi: %w", err)
		}
		defer a.Close()

		fmt.Printf("listening on %q, press Ctrl+C to stop\n", args[0])
		select {}
	},
}
