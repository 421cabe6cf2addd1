// ABOUTME: TUI rendering of the waveform, cursor and markers
// ABOUTME: Columns are drawn from min/max queries over the visible edited time
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Melonix-Audio/melonix-go/internal/version"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	waveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	markerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	helpStyle = lipgloss.NewStyle().Faint(true)
)

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Closing editor...\n"
	}
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if !m.doc.Loaded() {
		b.WriteString(valueStyle.Render("  No document loaded"))
		b.WriteString("\n\n")
	} else {
		b.WriteString(m.renderWaveform())
		b.WriteString(m.renderMarkerRow())
		b.WriteString("\n")
		b.WriteString(m.renderStatus())
	}

	b.WriteString(m.renderHelp())
	return b.String()
}

// renderHeader renders title and document info
func (m Model) renderHeader() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(version.String()))
	if m.title != "" {
		b.WriteString("  ")
		b.WriteString(valueStyle.Render(m.title))
	}
	b.WriteString("\n")

	if m.doc.Loaded() {
		b.WriteString(headerStyle.Render("Rate: "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%dHz", m.doc.SampleRate())))
		b.WriteString(headerStyle.Render("  Samples: "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%d", m.doc.Len())))
		b.WriteString(headerStyle.Render("  Length: "))
		b.WriteString(valueStyle.Render(formatTime(m.doc.Duration())))
		b.WriteString("\n")
	}
	return b.String()
}

// waveRows is the waveform height in lines
func (m Model) waveRows() int {
	// header, marker row, status and help take 8 lines
	return min(max(m.height-8, 4), 24)
}

// cursorColumn returns the cursor's display column, or -1 when off screen
func (m Model) cursorColumn() int {
	return m.timeColumn(m.doc.Cursor())
}

func (m Model) timeColumn(t float64) int {
	if t < m.viewStart || t >= m.viewStart+m.viewRange {
		return -1
	}
	c := int((t - m.viewStart) / m.columnTime())
	if c >= m.columns() {
		return -1
	}
	return c
}

// renderWaveform draws one min/max bar per column
func (m Model) renderWaveform() string {
	cols := m.columns()
	rows := m.waveRows()
	step := m.columnTime()
	cursor := m.cursorColumn()

	lo := make([]float32, cols)
	hi := make([]float32, cols)
	for c := 0; c < cols; c++ {
		t0 := m.viewStart + float64(c)*step
		peak := m.doc.MinMax(m.doc.TimeToSample(t0), m.doc.TimeToSample(t0+step))
		lo[c], hi[c] = peak.Min, peak.Max
	}

	var b strings.Builder
	line := make([]rune, cols)
	for r := 0; r < rows; r++ {
		// amplitude at the middle of this row, +1 at the top
		level := float32(1 - (float64(r)+0.5)*2/float64(rows))
		for c := 0; c < cols; c++ {
			if lo[c] <= level && level <= hi[c] {
				line[c] = '█'
			} else {
				line[c] = ' '
			}
		}

		b.WriteString(" ")
		if cursor >= 0 {
			b.WriteString(waveStyle.Render(string(line[:cursor])))
			b.WriteString(cursorStyle.Render("│"))
			b.WriteString(waveStyle.Render(string(line[cursor+1:])))
		} else {
			b.WriteString(waveStyle.Render(string(line)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderMarkerRow draws a tick under each visible marker
func (m Model) renderMarkerRow() string {
	cols := m.columns()
	line := []rune(strings.Repeat(" ", cols))
	selected := -1

	for _, mk := range m.doc.Markers() {
		c := m.timeColumn(m.doc.SampleToTime(mk.Sample))
		if c < 0 || c >= cols {
			continue
		}
		line[c] = '▲'
		if mk.ID == m.selected {
			selected = c
		}
	}

	var b strings.Builder
	b.WriteString(" ")
	if selected >= 0 {
		b.WriteString(markerStyle.Render(string(line[:selected])))
		b.WriteString(selectedStyle.Render("▲"))
		b.WriteString(markerStyle.Render(string(line[selected+1:])))
	} else {
		b.WriteString(markerStyle.Render(string(line)))
	}
	b.WriteString("\n")
	return b.String()
}

// renderStatus renders cursor, selection and the last message
func (m Model) renderStatus() string {
	cursor := m.doc.Cursor()
	state := "Stopped"
	if m.doc.Playing() {
		state = "Playing"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Cursor: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%s / %s", formatTime(cursor), formatTime(m.doc.Duration()))))
	b.WriteString(headerStyle.Render("  Bend: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%+.2f st", m.doc.TimeToPitchBend(cursor))))
	b.WriteString(headerStyle.Render("  State: "))
	b.WriteString(valueStyle.Render(state))
	b.WriteString(headerStyle.Render("  Follow: "))
	b.WriteString(valueStyle.Render(onOff(m.follow)))
	b.WriteString("\n")

	if mk, ok := m.selectedMarker(); ok {
		b.WriteString(headerStyle.Render("Marker: "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("at %s  note %.1f  dTime %+.2fs  bend %+.1f st",
			formatTime(m.doc.SampleToTime(mk.Sample)), mk.Note+mk.PitchBend, mk.DTime, mk.PitchBend)))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString(valueStyle.Render(m.status))
		b.WriteString("\n")
	}
	return b.String()
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return helpStyle.Render("space:Play  ←/→:Seek  +/-:Zoom  f:Follow  m:Marker  tab:Select  [/]:Stretch  ↑/↓:Bend  x:Delete  s:Save  q:Quit") + "\n"
}

func formatTime(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Millisecond)
	return fmt.Sprintf("%d:%06.3f", int(d.Minutes()), (d % time.Minute).Seconds())
}
