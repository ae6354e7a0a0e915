package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anvilaudio/polyvoice/adapters/oscadapter"
)

var oscAddr string

var listenOSCCmd = &cobra.Command{
	Use:   "listen-osc",
	Short: "Decode a live OSC touch-control stream into dispatcher events",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, _, err := buildDispatcher()
		if err != nil {
			return err
		}

		a := oscadapter.New(d)
		fmt.Printf("listening for OSC on %s, press Ctrl+C to stop\n", oscAddr)
		if err := a.ListenAndServe(oscAddr); err != nil {
			return fmt.Errorf("listen-osc: %w", err)
		}
		return nil
	},
}

func init() {
	listenOSCCmd.Flags().StringVar(&oscAddr, "addr", defaultOSCAddr, "UDP address to bind the OSC server to")
}
