package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/orrery-cli/orrery/internal/format"
	"github.com/orrery-cli/orrery/internal/model"
)

// TableFormatter renders the scene as a terminal table, one row per
// body, ordered by orbital radius.
type TableFormatter struct {
	// NoHyperlinks disables OSC 8 links even on a terminal.
	NoHyperlinks bool
}

// hyperlink creates a clickable terminal hyperlink using OSC 8
// Format: \033]8;;URL\033\\TEXT\033]8;;\033\\
func (f *TableFormatter) hyperlink(text, url string) string {
	if f.NoHyperlinks || !term.IsTerminal(int(os.Stdout.Fd())) {
		return text
	}
	return fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", url, text)
}

// Column widths
const (
	colName   = 24
	colAge    = 6
	colSize   = 10
	colCommit = 9
	colBranch = 4
	colIssues = 7
	colOrbit  = 7
	colRadius = 7
	colMarks  = 5
)

// Format outputs the scene as a table with an aggregate footer.
func (f *TableFormatter) Format(scene *model.Scene, w io.Writer) error {
	if len(scene.Objects) == 0 {
		fmt.Fprintf(w, "No repositories visible in %d (%s mode).\n",
			scene.Snapshot.Year(), scene.Snapshot.Mode)
		return nil
	}

	fmt.Fprintf(w, "%s  %s  %s  %s  %s  %s  %s  %s  %s\n",
		format.PadRight("BODY", colName),
		format.PadRight("AGE", colAge),
		format.PadLeft("SIZE", colSize),
		format.PadLeft("COMMITS", colCommit),
		format.PadLeft("BR", colBranch),
		format.PadLeft("ISS/PR", colIssues),
		format.PadLeft("ORBIT", colOrbit),
		format.PadLeft("RADIUS", colRadius),
		"MARKS")
	fmt.Fprintln(w, strings.Repeat("-",
		colName+colAge+colSize+colCommit+colBranch+colIssues+colOrbit+colRadius+colMarks+16))

	for i := range scene.Objects {
		f.formatRow(&scene.Objects[i], w)
	}

	f.formatFooter(scene, w)
	return nil
}

func (f *TableFormatter) formatRow(obj *model.SceneObject, w io.Writer) {
	r := obj.Record
	v := &obj.Visual

	name := format.Truncate(r.Name, colName)
	nameWidth := format.DisplayWidth(name)
	linked := f.hyperlink(name, "https://github.com/"+r.FullName())
	linked += strings.Repeat(" ", maxInt(0, colName-nameWidth))

	suffix := format.CountSuffix(r.CountProvenance == model.ProvenanceMeasured)
	commits := format.FormatCount(r.TotalCommits) + suffix
	issuePR := fmt.Sprintf("%d/%d%s", r.OpenIssues, r.OpenPRs, suffix)

	var marks []string
	if r.IsFork {
		marks = append(marks, format.ForkIcon)
	}
	if v.HasRings {
		marks = append(marks, format.RingIcon)
	}
	if r.HasRecentCommits {
		marks = append(marks, color.YellowString(format.ActiveIcon))
	}

	fmt.Fprintf(w, "%s  %s  %s  %s  %s  %s  %s  %s  %s\n",
		linked,
		format.PadRight(format.FormatAge(r.DaysSinceCreation), colAge),
		format.PadLeft(format.FormatSizeKB(r.SizeKB), colSize),
		format.PadLeft(commits, colCommit),
		format.PadLeft(fmt.Sprintf("%d", r.BranchCount), colBranch),
		format.PadLeft(issuePR, colIssues),
		format.PadLeft(fmt.Sprintf("%.1f", v.OrbitalRadius), colOrbit),
		format.PadLeft(fmt.Sprintf("%.2f", v.Radius), colRadius),
		strings.Join(marks, " "),
	)
}

func (f *TableFormatter) formatFooter(scene *model.Scene, w io.Writer) {
	s := scene.Stats

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s  %s repos · %s commits · %s stars · %s forks · sun %.1f\n",
		color.New(color.Bold).Sprintf("%d/%s", scene.Snapshot.Year(), scene.Snapshot.Mode),
		format.FormatCount(s.TotalRepos),
		format.FormatCount(s.TotalCommits),
		format.FormatCount(s.TotalStars),
		format.FormatCount(s.TotalForks),
		scene.SunRadius,
	)

	rl := scene.RateLimit
	if rl.Limit > 0 {
		line := fmt.Sprintf("rate limit: %d/%d remaining", rl.Remaining, rl.Limit)
		if rl.Exhausted() {
			line = color.RedString(line + " (exhausted, resets " + rl.ResetAt.Format("15:04 MST") + ")")
		}
		fmt.Fprintln(w, line)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
