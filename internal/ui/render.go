package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
)

// Phase identifies a stage of a rendering run.
type Phase uint8

const (
	PhaseProbe Phase = iota
	PhaseTranscode
	PhaseRender
	PhaseEncode
)

// Status is one progress update from the rendering goroutine.
type Status struct {
	Phase   Phase
	Percent float64 // 0..1, meaningful during PhaseRender
	Peak    float64 // latest column's peak amplitude, 0..1
	Detail  string  // short note shown under the status line
}

// RenderDoneMsg reports the outcome of the rendering run.
type RenderDoneMsg struct {
	Err error
}

type statusMsg Status

// spinner.Dot ticks at this rate; the spring integrates per tick.
const meterFPS = 10

// peakDecay is how much the peak-hold marker falls per tick.
const peakDecay = 0.02

// Model drives the terminal progress display for one rendering run: a
// spinner during probing and conversion, a spring-smoothed bar and a live
// peak meter while the columns render. The actual work happens in the run
// callback, started by Init on its own goroutine.
type Model struct {
	fileName string
	run      func() error
	cancel   func()
	statusCh <-chan Status

	spinner  spinner.Model
	progress progress.Model
	spring   harmonica.Spring

	status    Status
	shown     float64 // spring-smoothed display percent
	vel       float64
	meter     float64 // spring-smoothed peak deflection
	meterVel  float64
	peakHold  float64
	width     int
	err       error
	done      bool
	cancelled bool
}

// NewModel builds the progress UI. run executes the pipeline; cancel asks
// it to stop early.
func NewModel(fileName string, statusCh <-chan Status, run func() error, cancel func()) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})

	p := progress.New(
		progress.WithScaledGradient("#3200C8", "#FF4600"),
		progress.WithoutPercentage(),
	)

	return Model{
		fileName: fileName,
		run:      run,
		cancel:   cancel,
		statusCh: statusCh,
		spinner:  s,
		progress: p,
		spring:   harmonica.NewSpring(harmonica.FPS(meterFPS), 6.0, 1.0),
	}
}

// Err returns the run outcome once the program has quit.
func (m Model) Err() error { return m.err }

// Cancelled reports whether the user asked to stop.
func (m Model) Cancelled() bool { return m.cancelled }

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.waitForStatus()}
	if m.run != nil {
		run := m.run
		cmds = append(cmds, func() tea.Msg {
			return RenderDoneMsg{Err: run()}
		})
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		barWidth := msg.Width - 10
		if barWidth < 20 {
			barWidth = 20
		}
		if barWidth > 60 {
			barWidth = 60
		}
		m.progress.Width = barWidth
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		switch m.status.Phase {
		case PhaseRender:
			m.shown, m.vel = m.spring.Update(m.shown, m.vel, m.status.Percent)
			m.meter, m.meterVel = m.spring.Update(m.meter, m.meterVel, meterLevel(m.status.Peak))
			if m.meter > m.peakHold {
				m.peakHold = m.meter
			} else {
				m.peakHold -= peakDecay
				if m.peakHold < 0 {
					m.peakHold = 0
				}
			}
		case PhaseEncode:
			m.shown, m.vel = m.spring.Update(m.shown, m.vel, 1)
		}
		return m, cmd

	case statusMsg:
		m.status = Status(msg)
		return m, m.waitForStatus()

	case RenderDoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			if m.cancelled {
				return m, nil
			}
			m.cancelled = true
			if m.cancel != nil {
				// The pipeline notices the cancel and delivers
				// RenderDoneMsg, which quits.
				m.cancel()
				return m, nil
			}
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) waitForStatus() tea.Cmd {
	if m.statusCh == nil {
		return nil
	}
	statusCh := m.statusCh
	return func() tea.Msg {
		status, ok := <-statusCh
		if !ok {
			return nil
		}
		return statusMsg(status)
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(headerStyle.Render("wavescope"))
	b.WriteString(" ")
	b.WriteString(fileStyle.Render(m.fileName))
	b.WriteString("\n\n")

	switch {
	case m.cancelled:
		m.writeSpinnerLine(&b, "Cancelling...")
	case m.status.Phase == PhaseRender:
		b.WriteString("  ")
		b.WriteString(statusStyle.Render("Rendering..."))
		b.WriteString("\n  ")
		b.WriteString(m.progress.ViewAs(clamp01(m.shown)))
		b.WriteString(fmt.Sprintf("  %3.0f%%\n  ", clamp01(m.shown)*100))
		b.WriteString(renderMeter(clamp01(m.meter), clamp01(m.peakHold), m.progress.Width))
		b.WriteString("\n")
	case m.status.Phase == PhaseTranscode:
		m.writeSpinnerLine(&b, "Converting with ffmpeg...")
	case m.status.Phase == PhaseEncode:
		m.writeSpinnerLine(&b, "Encoding images...")
	default:
		m.writeSpinnerLine(&b, "Probing input...")
	}

	if m.status.Detail != "" {
		b.WriteString("  ")
		b.WriteString(helpStyle.Render(m.status.Detail))
		b.WriteString("\n")
	}

	b.WriteString("\n  ")
	b.WriteString(helpStyle.Render("q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) writeSpinnerLine(b *strings.Builder, label string) {
	b.WriteString("  ")
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(statusStyle.Render(label))
	b.WriteString("\n")
}

// meterLevel maps a peak amplitude to a 0..1 meter deflection on a dB
// scale, so quiet material still moves the meter.
func meterLevel(peak float64) float64 {
	const floor = -40.0
	if peak < 1e-6 {
		return 0
	}
	db := 20 * math.Log10(peak)
	if db < floor {
		return 0
	}
	level := (db - floor) / -floor
	if level > 1 {
		level = 1
	}
	return level
}

// renderMeter draws a horizontal level meter with a peak-hold marker.
func renderMeter(level, hold float64, width int) string {
	filled := int(level * float64(width))
	peakPos := int(hold * float64(width))
	if peakPos >= width {
		peakPos = width - 1
	}
	var b strings.Builder
	for i := 0; i < width; i++ {
		ch := "─"
		if i < filled {
			ch = "█"
		}
		style := meterLowStyle
		switch {
		case ch == "─" && i == peakPos && peakPos > 0:
			ch, style = "│", meterPeakStyle
		case i >= width*8/10:
			style = meterHighStyle
		case i >= width*6/10:
			style = meterMidStyle
		}
		b.WriteString(style.Render(ch))
	}
	return b.String()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
