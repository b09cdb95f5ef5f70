package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/orrery-cli/orrery/internal/model"
)

// BuildFunc recomputes the scene for a snapshot. The browser never
// mutates a scene in place: every year or mode change rebuilds it from
// scratch.
type BuildFunc func(year int, mode model.FilterMode) *model.Scene

// BrowserModel is the Bubble Tea model for the interactive timeline
// browser.
type BrowserModel struct {
	build BuildFunc

	year    int
	minYear int
	maxYear int
	mode    model.FilterMode

	scene        *model.Scene
	cursor       int
	windowWidth  int
	windowHeight int
	quitting     bool
}

// BrowserOption is a functional option for configuring BrowserModel.
type BrowserOption func(*BrowserModel)

// WithYearRange bounds timeline navigation.
func WithYearRange(minYear, maxYear int) BrowserOption {
	return func(m *BrowserModel) {
		m.minYear = minYear
		m.maxYear = maxYear
	}
}

// NewBrowserModel creates a browser positioned at the given snapshot.
func NewBrowserModel(build BuildFunc, year int, mode model.FilterMode, opts ...BrowserOption) BrowserModel {
	m := BrowserModel{
		build:        build,
		year:         year,
		minYear:      year,
		maxYear:      year,
		mode:         mode,
		windowWidth:  80,
		windowHeight: 24,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.clampYear()
	m.scene = build(m.year, m.mode)
	return m
}

func (m *BrowserModel) clampYear() {
	if m.year < m.minYear {
		m.year = m.minYear
	}
	if m.year > m.maxYear {
		m.year = m.maxYear
	}
}

// rebuild recomputes the scene for the current snapshot and clamps the
// cursor into the new object list.
func (m *BrowserModel) rebuild() {
	m.scene = m.build(m.year, m.mode)
	if n := len(m.scene.Objects); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Year returns the currently displayed snapshot year.
func (m BrowserModel) Year() int { return m.year }

// Mode returns the currently displayed filter mode.
func (m BrowserModel) Mode() model.FilterMode { return m.mode }

// Scene returns the currently displayed scene.
func (m BrowserModel) Scene() *model.Scene { return m.scene }

// Init implements tea.Model
func (m BrowserModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input
func (m BrowserModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "left", "h":
		if m.year > m.minYear {
			m.year--
			m.rebuild()
		}
		return m, nil

	case "right", "l":
		if m.year < m.maxYear {
			m.year++
			m.rebuild()
		}
		return m, nil

	case "m", "tab":
		if m.mode == model.ModeAll {
			m.mode = model.ModeActive
		} else {
			m.mode = model.ModeAll
		}
		m.rebuild()
		return m, nil

	case "g", "home":
		m.cursor = 0
		return m, nil

	case "G", "end":
		if n := len(m.scene.Objects); n > 0 {
			m.cursor = n - 1
		}
		return m, nil

	case "j", "down":
		if m.cursor < len(m.scene.Objects)-1 {
			m.cursor++
		}
		return m, nil

	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	}

	return m, nil
}
