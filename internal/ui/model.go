// ABOUTME: Bubbletea model for the editor TUI
// ABOUTME: Holds view state and maps keys onto document commands
package ui

import (
	"errors"
	"fmt"
	"time"

	"github.com/Melonix-Audio/melonix-go/internal/session"
	"github.com/Melonix-Audio/melonix-go/internal/viewcache"
	"github.com/Melonix-Audio/melonix-go/internal/warp"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

const (
	// nudgeColumns is how far left/right moves the cursor, in display columns
	nudgeColumns = 4
	dTimeStep    = 0.05
	bendStep     = 0.5
	minViewRange = 0.01
	refreshEvery = 50 * time.Millisecond
)

// Document is the editable session behind the TUI
type Document interface {
	Loaded() bool
	Path() string
	SampleRate() int
	Len() int

	Cursor() float64
	Duration() float64
	Playing() bool
	Markers() []warp.Marker

	SampleToTime(sample int) float64
	TimeToSample(t float64) int
	TimeToPitchBend(t float64) float64
	MinMax(start, end int) viewcache.Peak

	TogglePlay() (bool, error)
	SetCursor(t float64) error
	AddMarkerAt(t, note float64) (uuid.UUID, error)
	MoveMarker(id uuid.UUID, dTime, pitchBend float64) error
	RemoveMarker(id uuid.UUID) error
	SaveFile(path string) (string, error)
}

// Model represents the TUI state
type Model struct {
	doc   Document
	title string

	// Visible window in edited seconds
	viewStart float64
	viewRange float64
	follow    bool

	selected uuid.UUID
	status   string
	quitting bool

	// Dimensions
	width  int
	height int
}

type tickMsg time.Time

// NewModel creates a model showing the whole document
func NewModel(doc Document, title string) Model {
	m := Model{
		doc:    doc,
		title:  title,
		follow: true,
	}
	m.viewRange = m.fullRange()
	return m
}

// fullRange is the edited time of the whole document
func (m Model) fullRange() float64 {
	if d := m.doc.Duration(); d > 0 {
		return d
	}
	return 1
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tickEvery()
}

func tickEvery() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		m.followCursor()
		return m, tickEvery()
	}

	return m, nil
}

// columns is the waveform width in characters
func (m Model) columns() int {
	return max(m.width-2, 1)
}

// columnTime is the edited time covered by one display column
func (m Model) columnTime() float64 {
	return m.viewRange / float64(m.columns())
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case " ":
		playing, err := m.doc.TogglePlay()
		if m.report(err) {
			if playing {
				m.status = "Playing"
			} else {
				m.status = "Stopped"
			}
		}
	case "left":
		m.nudge(-nudgeColumns)
	case "right":
		m.nudge(nudgeColumns)
	case "home":
		m.report(m.doc.SetCursor(0))
	case "+", "=":
		m.zoom(0.5)
	case "-":
		m.zoom(2)
	case "f":
		m.follow = !m.follow
		m.status = fmt.Sprintf("Follow %s", onOff(m.follow))
	case "m":
		id, err := m.doc.AddMarkerAt(m.doc.Cursor(), 0)
		if m.report(err) {
			m.selected = id
			m.status = "Marker added"
		}
	case "tab":
		m.selectNext()
	case "[":
		m.adjustSelected(-dTimeStep, 0)
	case "]":
		m.adjustSelected(dTimeStep, 0)
	case "up":
		m.adjustSelected(0, bendStep)
	case "down":
		m.adjustSelected(0, -bendStep)
	case "x", "delete":
		if m.selected == uuid.Nil {
			m.status = "No marker selected"
			break
		}
		if m.report(m.doc.RemoveMarker(m.selected)) {
			m.selected = uuid.Nil
			m.status = "Marker removed"
		}
	case "s":
		path := m.doc.Path()
		if path == "" {
			path = "untitled"
		}
		saved, err := m.doc.SaveFile(path)
		if m.report(err) {
			m.status = "Saved " + saved
		}
	}

	return m, nil
}

// report stores err in the status line and reports whether it was nil
func (m *Model) report(err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, session.ErrNoDocument):
		m.status = "No document loaded"
	case errors.Is(err, session.ErrMarkerNotFound):
		m.selected = uuid.Nil
		m.status = "Marker no longer exists"
	default:
		m.status = err.Error()
	}
	return false
}

func (m *Model) nudge(cols int) {
	m.report(m.doc.SetCursor(m.doc.Cursor() + float64(cols)*m.columnTime()))
}

func (m *Model) zoom(factor float64) {
	center := m.viewStart + m.viewRange/2
	m.viewRange = min(max(m.viewRange*factor, minViewRange), m.fullRange())
	m.viewStart = max(center-m.viewRange/2, 0)
	m.status = fmt.Sprintf("Zoom %.2fs", m.viewRange)
}

// followCursor scrolls so the cursor stays visible while following
func (m *Model) followCursor() {
	if !m.follow {
		return
	}
	cursor := m.doc.Cursor()
	if cursor < m.viewStart || cursor >= m.viewStart+m.viewRange {
		m.viewStart = max(cursor-m.viewRange*0.1, 0)
	}
}

// selectNext cycles the selection through markers in order
func (m *Model) selectNext() {
	markers := m.doc.Markers()
	if len(markers) == 0 {
		m.selected = uuid.Nil
		m.status = "No markers"
		return
	}

	next := 0
	for i, mk := range markers {
		if mk.ID == m.selected {
			next = (i + 1) % len(markers)
			break
		}
	}
	m.selected = markers[next].ID
	m.status = fmt.Sprintf("Marker %d/%d", next+1, len(markers))
}

func (m *Model) selectedMarker() (warp.Marker, bool) {
	for _, mk := range m.doc.Markers() {
		if mk.ID == m.selected {
			return mk, true
		}
	}
	return warp.Marker{}, false
}

// adjustSelected offsets the selected marker's stretch and bend
func (m *Model) adjustSelected(dTime, bend float64) {
	mk, ok := m.selectedMarker()
	if !ok {
		m.selected = uuid.Nil
		m.status = "No marker selected"
		return
	}
	if m.report(m.doc.MoveMarker(mk.ID, mk.DTime+dTime, mk.PitchBend+bend)) {
		m.status = fmt.Sprintf("dTime %+.2fs  bend %+.1f st", mk.DTime+dTime, mk.PitchBend+bend)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
