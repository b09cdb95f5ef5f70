package output

import (
	"fmt"
	"io"

	"github.com/orrery-cli/orrery/internal/format"
	"github.com/orrery-cli/orrery/internal/model"
)

// MarkdownFormatter renders the scene as a Markdown report.
type MarkdownFormatter struct{}

// Format outputs the scene as Markdown.
func (f *MarkdownFormatter) Format(scene *model.Scene, w io.Writer) error {
	fmt.Fprintf(w, "# Orrery · %d (%s)\n\n", scene.Snapshot.Year(), scene.Snapshot.Mode)

	if len(scene.Objects) == 0 {
		fmt.Fprintln(w, "No repositories visible at this snapshot.")
		return nil
	}

	s := scene.Stats
	fmt.Fprintf(w, "%s repositories · %s commits · %s stars · %s forks · sun radius %.1f\n\n",
		format.FormatCount(s.TotalRepos),
		format.FormatCount(s.TotalCommits),
		format.FormatCount(s.TotalStars),
		format.FormatCount(s.TotalForks),
		scene.SunRadius)

	fmt.Fprintln(w, "| Body | Age | Size | Commits | Branches | Issues/PRs | Orbit | Radius | Rings |")
	fmt.Fprintln(w, "|------|-----|------|---------|----------|------------|-------|--------|-------|")

	for i := range scene.Objects {
		r := scene.Objects[i].Record
		v := &scene.Objects[i].Visual

		suffix := format.CountSuffix(r.CountProvenance == model.ProvenanceMeasured)
		rings := ""
		if v.HasRings {
			rings = "yes"
		}

		fmt.Fprintf(w, "| [%s](https://github.com/%s) | %s | %s | %s%s | %d | %d/%d%s | %.1f | %.2f | %s |\n",
			r.Name, r.FullName(),
			format.FormatAge(r.DaysSinceCreation),
			format.FormatSizeKB(r.SizeKB),
			format.FormatCount(r.TotalCommits), suffix,
			r.BranchCount,
			r.OpenIssues, r.OpenPRs, suffix,
			v.OrbitalRadius, v.Radius,
			rings)
	}

	return nil
}
