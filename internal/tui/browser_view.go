package tui

import (
	"fmt"
	"strings"

	"github.com/orrery-cli/orrery/internal/format"
	"github.com/orrery-cli/orrery/internal/model"
)

// Column widths for the browser table.
const (
	browserColName   = 22
	browserColAge    = 6
	browserColSize   = 10
	browserColCommit = 9
	browserColOrbit  = 7
	browserColRadius = 7
)

// View implements tea.Model
func (m BrowserModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.tableView())
	b.WriteString(m.footerView())

	return b.String()
}

func (m BrowserModel) headerView() string {
	mode := "all repos"
	if m.mode == model.ModeActive {
		mode = "active only"
	}

	timeline := fmt.Sprintf("%d", m.year)
	switch {
	case m.year <= m.minYear:
		timeline = timeline + " →"
	case m.year >= m.maxYear:
		timeline = "← " + timeline
	default:
		timeline = "← " + timeline + " →"
	}

	return fmt.Sprintf("  %s  %s",
		yearStyle.Render(timeline),
		dimStyle.Render(mode))
}

func (m BrowserModel) tableView() string {
	if len(m.scene.Objects) == 0 {
		return dimStyle.Render("\n  no repositories visible at this snapshot\n")
	}

	var b strings.Builder

	b.WriteString("  " + headerStyle.Render(fmt.Sprintf("%s %s %s %s %s %s",
		format.PadRight("BODY", browserColName),
		format.PadRight("AGE", browserColAge),
		format.PadLeft("SIZE", browserColSize),
		format.PadLeft("COMMITS", browserColCommit),
		format.PadLeft("ORBIT", browserColOrbit),
		format.PadLeft("RADIUS", browserColRadius))) + "\n")

	// Keep the cursor row on screen when the list outgrows the window.
	visible := m.windowHeight - 6
	if visible < 3 {
		visible = 3
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := start + visible
	if end > len(m.scene.Objects) {
		end = len(m.scene.Objects)
	}

	for i := start; i < end; i++ {
		b.WriteString(m.rowView(i))
	}

	return b.String()
}

func (m BrowserModel) rowView(i int) string {
	obj := &m.scene.Objects[i]
	r := obj.Record

	commits := format.FormatCount(r.TotalCommits)
	if r.CountProvenance != model.ProvenanceMeasured {
		commits = estimateStyle.Render(commits + format.EstimateSuffix)
	}

	line := fmt.Sprintf("%s %s %s %s %s %s",
		format.PadRight(format.Truncate(r.Name, browserColName), browserColName),
		format.PadRight(format.FormatAge(r.DaysSinceCreation), browserColAge),
		format.PadLeft(format.FormatSizeKB(r.SizeKB), browserColSize),
		format.PadLeft(commits, browserColCommit),
		format.PadLeft(fmt.Sprintf("%.1f", obj.Visual.OrbitalRadius), browserColOrbit),
		format.PadLeft(fmt.Sprintf("%.2f", obj.Visual.Radius), browserColRadius))

	if i == m.cursor {
		return "  " + selectedStyle.Render(format.StripAnsi(line)) + "\n"
	}
	return "  " + line + "\n"
}

func (m BrowserModel) footerView() string {
	s := m.scene.Stats

	stats := fmt.Sprintf("  %s repos · %s commits · %s stars · %s forks · sun %.1f",
		format.FormatCount(s.TotalRepos),
		format.FormatCount(s.TotalCommits),
		format.FormatCount(s.TotalStars),
		format.FormatCount(s.TotalForks),
		m.scene.SunRadius)

	help := "  ←/→ year · m mode · j/k move · q quit"

	return "\n" + dimStyle.Render(stats) + "\n" + footerStyle.Render(help) + "\n"
}
