package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/anvilaudio/polyvoice/pkg/dispatch"
	"github.com/anvilaudio/polyvoice/pkg/dsp/envelope"
	"github.com/anvilaudio/polyvoice/pkg/dsp/oscillator"
	"github.com/anvilaudio/polyvoice/pkg/event"
)

const demoBlocks = 40

// demoNote scripts one note-on/note-off pair against the dispatcher's
// event queue at a given block and in-block sample offset.
type demoNote struct {
	onBlock, onSample   int
	offBlock, offSample int
	note, velocity      float64
}

var demoScript = []demoNote{
	{onBlock: 0, onSample: 0, offBlock: 20, offSample: 0, note: 60, velocity: 0.8},
	{onBlock: 2, onSample: 100, offBlock: 22, offSample: 0, note: 64, velocity: 0.7},
	{onBlock: 4, onSample: 200, offBlock: 24, offSample: 0, note: 67, velocity: 0.6},
}

// demoVoice mirrors the teacher's SynthVoice pairing of an Oscillator
// and an ADSR, but reads its frequency and gate from a dispatch.Buffers
// signal block instead of a raw MIDI note/velocity pair.
type demoVoice struct {
	osc *oscillator.Oscillator
	env *envelope.ADSR
}

func newDemoVoice(sampleRate float64) *demoVoice {
	return &demoVoice{osc: oscillator.New(sampleRate), env: envelope.New(sampleRate)}
}

func (v *demoVoice) render(buf dispatch.Buffers, frames int, mix []float64) {
	for s := 0; s < frames; s++ {
		v.env.Gate(buf.Gate[s] > 0.5)
		v.osc.SetLogPitch(buf.Pitch[s])

		sample := float64(v.osc.Sine()) * float64(v.env.Next()) * buf.Amp[s] * buf.Vel[s]
		mix[s] += sample
	}
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a scripted chord through the dispatcher and print per-block levels",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, _, err := buildDispatcher()
		if err != nil {
			return err
		}

		voices := make([]*demoVoice, defaultMaxPolyphony)
		for i := range voices {
			voices[i] = newDemoVoice(sampleRate)
		}

		bufs := make([]dispatch.Buffers, defaultMaxPolyphony)
		for i := range bufs {
			bufs[i] = dispatch.Buffers{
				Pitch: make([]float64, defaultBlockFrames), Gate: make([]float64, defaultBlockFrames),
				Amp: make([]float64, defaultBlockFrames), Vel: make([]float64, defaultBlockFrames),
				VoiceIndex: make([]float64, defaultBlockFrames), Aftertouch: make([]float64, defaultBlockFrames),
				Mod: make([]float64, defaultBlockFrames), Mod2: make([]float64, defaultBlockFrames),
				Mod3: make([]float64, defaultBlockFrames),
			}
		}
		mix := make([]float64, defaultBlockFrames)

		for block := 0; block < demoBlocks; block++ {
			for i, n := range demoScript {
				if n.onBlock == block {
					d.AddEvent(event.NoteOnEvent(1, 1000+i, n.onSample, n.note, n.velocity))
				}
				if n.offBlock == block {
					d.AddEvent(event.NoteOffEvent(1, 1000+i, n.offSample, 0))
				}
			}

			d.Process(defaultBlockFrames, bufs)

			for s := range mix {
				mix[s] = 0
			}
			for i := range voices {
				voices[i].render(bufs[i], defaultBlockFrames, mix)
			}

			peak, sumSquares := 0.0, 0.0
			for _, s := range mix {
				if a := math.Abs(s); a > peak {
					peak = a
				}
				sumSquares += s * s
			}
			rms := math.Sqrt(sumSquares / float64(defaultBlockFrames))
			fmt.Printf("block %2d: peak=%.4f rms=%.4f\n", block, peak, rms)
		}
		return nil
	},
}
