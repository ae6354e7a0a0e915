package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/anvilaudio/polyvoice/pkg/config"
	"github.com/anvilaudio/polyvoice/pkg/dispatch"
	"github.com/anvilaudio/polyvoice/pkg/event"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live per-voice signal monitor driven by the scripted demo performance",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, cfg, err := buildDispatcher()
		if err != nil {
			return err
		}
		m := newMonitorModel(d, cfg)
		_, err = tea.NewProgram(m).Run()
		return err
	},
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

var (
	monitorTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	monitorBarStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))
	monitorHelpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

type monitorModel struct {
	d      *dispatch.Dispatcher
	cfg    *config.Registry
	bufs   []dispatch.Buffers
	block  int
	voices int
}

func newMonitorModel(d *dispatch.Dispatcher, cfg *config.Registry) monitorModel {
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
	return monitorModel{d: d, cfg: cfg, bufs: bufs, voices: int(cfg.Float64(config.Voices))}
}

func (m monitorModel) Init() tea.Cmd {
	return tick()
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tickMsg:
		for i, n := range demoScript {
			if n.onBlock == m.block%demoBlocks {
				m.d.AddEvent(event.NoteOnEvent(1, 2000+i, n.onSample, n.note, n.velocity))
			}
			if n.offBlock == m.block%demoBlocks {
				m.d.AddEvent(event.NoteOffEvent(1, 2000+i, n.offSample, 0))
			}
		}
		m.d.Process(defaultBlockFrames, m.bufs)
		m.block++
		return m, tick()
	}
	return m, nil
}

func (m monitorModel) View() string {
	var b strings.Builder
	b.WriteString(monitorTitleStyle.Render("polyvoice monitor") + "\n\n")
	b.WriteString(fmt.Sprintf("block %d, polyphony %d\n\n", m.block, m.voices))

	for i := 0; i < m.voices && i < len(m.bufs); i++ {
		buf := m.bufs[i]
		last := defaultBlockFrames - 1
		gate := buf.Gate[last]
		amp := buf.Amp[last] * buf.Vel[last]
		bar := monitorBarStyle.Render(strings.Repeat("#", int(amp*30)))
		state := " "
		if gate > 0.5 {
			state = "*"
		}
		b.WriteString(fmt.Sprintf("voice %2d [%s] pitch=%+.3f amp=%.2f %s\n", i, state, buf.Pitch[last], amp, bar))
	}

	b.WriteString("\n" + monitorHelpStyle.Render("q: quit"))
	return b.String()
}
