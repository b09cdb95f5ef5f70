package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// ProgressModel is the Bubble Tea model for the pipeline progress
// display shown while data is acquired.
type ProgressModel struct {
	tasks          []Task
	spinner        spinner.Model
	progress       progress.Model
	events         <-chan Event
	done           bool
	windowWidth    int
	windowHeight   int
	rateLimited    bool
	rateLimitReset time.Time
}

// doneMsg signals that all events have been processed.
type doneMsg struct{}

// DefaultTasks returns the task list for the scene pipeline.
func DefaultTasks() []Task {
	return []Task{
		NewTask(TaskFetch, "Fetching repositories"),
		NewTask(TaskEnrich, "Measuring exact counts"),
		NewTask(TaskBuild, "Building scene"),
	}
}

// NewProgressModel creates a new pipeline progress model.
func NewProgressModel(events <-chan Event) ProgressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot

	p := progress.New(
		progress.WithScaledGradient("#60a5fa", "#1e3a8a"),
		progress.WithWidth(25),
		progress.WithoutPercentage(),
	)

	return ProgressModel{
		tasks:    DefaultTasks(),
		spinner:  s,
		progress: p,
		events:   events,
	}
}

// Init initializes the model.
func (m ProgressModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		waitForEvent(m.events),
	)
}

// Update handles messages.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case TaskEvent:
		var cmd tea.Cmd
		m, cmd = m.updateTask(msg)
		return m, tea.Batch(cmd, waitForEvent(m.events))

	case RateLimitEvent:
		m.rateLimited = msg.Limited
		m.rateLimitReset = msg.ResetAt
		return m, waitForEvent(m.events)

	case DoneEvent:
		m.done = true
		return m, tea.Quit

	case doneMsg:
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

// updateTask updates a task based on a TaskEvent.
func (m ProgressModel) updateTask(e TaskEvent) (ProgressModel, tea.Cmd) {
	var cmd tea.Cmd
	for i := range m.tasks {
		if m.tasks[i].ID == e.Task {
			m.tasks[i].Status = e.Status
			if e.Message != "" {
				m.tasks[i].Message = e.Message
			}
			if e.Count > 0 {
				m.tasks[i].Count = e.Count
			}
			if e.Progress > 0 {
				m.tasks[i].Progress = e.Progress
				cmd = m.progress.SetPercent(e.Progress)
			}
			if e.Error != nil {
				m.tasks[i].Error = e.Error
			}
			break
		}
	}
	return m, cmd
}

// View renders the model.
func (m ProgressModel) View() string {
	var s string

	for _, task := range m.tasks {
		s += task.View(m.spinner.View(), m.progress) + "\n"
	}

	if m.rateLimited {
		duration := time.Until(m.rateLimitReset).Round(time.Second)
		if duration > 0 {
			s += warnStyle.Render(fmt.Sprintf("\n  Rate limited - using cached or demo data (resets in %s)\n", duration))
		} else {
			s += warnStyle.Render("\n  Rate limited - using cached or demo data\n")
		}
	}

	if !m.done {
		s += footerStyle.Render("\n  Press Ctrl+C to cancel")
	}
	s += "\n"

	return s
}

// waitForEvent creates a command that waits for the next event.
func waitForEvent(events <-chan Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return doneMsg{}
		}
		return event
	}
}
