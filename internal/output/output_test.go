package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/orrery-cli/orrery/internal/model"
)

func testScene() *model.Scene {
	created := time.Date(2019, 4, 1, 0, 0, 0, 0, time.UTC)
	repo := &model.Repository{
		Name:              "nebula",
		Owner:             "octocat",
		SizeKB:            680,
		TotalCommits:      420,
		BranchCount:       4,
		OpenPRs:           2,
		OpenIssues:        9,
		Stars:             1200,
		Forks:             34,
		CreatedAt:         created,
		DaysSinceCreation: 2100,
		CountProvenance:   model.ProvenanceMeasured,
	}

	return &model.Scene{
		Objects: []model.SceneObject{{
			Record: repo,
			Visual: model.VisualParameters{
				Radius:        4.2,
				Mass:          16.0,
				OrbitalRadius: 52.3,
				OrbitalSpeed:  0.31,
				HasRings:      true,
				Variant:       3,
			},
		}},
		SunRadius: 12.5,
		Stats: model.SceneStats{
			TotalRepos:   1,
			TotalCommits: 420,
			TotalStars:   1200,
			TotalForks:   34,
		},
		Snapshot:  model.SnapshotContext{Date: time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC), Mode: model.ModeAll},
		RateLimit: model.RateLimit{Remaining: 42, Limit: 60},
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Error("json format should produce a JSONFormatter")
	}
	if _, ok := NewFormatter(FormatMarkdown).(*MarkdownFormatter); !ok {
		t.Error("markdown format should produce a MarkdownFormatter")
	}
	if _, ok := NewFormatter("bogus").(*TableFormatter); !ok {
		t.Error("unknown format should fall back to the table")
	}
}

func TestFormatValid(t *testing.T) {
	for _, f := range []Format{FormatTable, FormatJSON, FormatMarkdown} {
		if !f.Valid() {
			t.Errorf("%q should be valid", f)
		}
	}
	if Format("xml").Valid() {
		t.Error("xml should not be valid")
	}
}

func TestJSONFormatterShape(t *testing.T) {
	var buf bytes.Buffer
	f := &JSONFormatter{}
	if err := f.Format(testScene(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var doc struct {
		User     string `json:"user"`
		Snapshot struct {
			Year int    `json:"year"`
			Mode string `json:"mode"`
		} `json:"snapshot"`
		SunRadius float64 `json:"sunRadius"`
		Objects   []struct {
			Record struct {
				Name string `json:"name"`
			} `json:"record"`
			VisualParameters struct {
				OrbitalRadius float64 `json:"orbitalRadius"`
				HasRings      bool    `json:"hasRings"`
			} `json:"visualParameters"`
		} `json:"objects"`
		Stats struct {
			TotalCommits int `json:"totalCommits"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if doc.User != "octocat" {
		t.Errorf("user = %q, want octocat", doc.User)
	}
	if doc.Snapshot.Year != 2024 || doc.Snapshot.Mode != "all" {
		t.Errorf("snapshot = %+v", doc.Snapshot)
	}
	if doc.SunRadius != 12.5 {
		t.Errorf("sunRadius = %v, want 12.5", doc.SunRadius)
	}
	if len(doc.Objects) != 1 {
		t.Fatalf("objects = %d, want 1", len(doc.Objects))
	}
	if doc.Objects[0].Record.Name != "nebula" {
		t.Errorf("record name = %q", doc.Objects[0].Record.Name)
	}
	if doc.Objects[0].VisualParameters.OrbitalRadius != 52.3 || !doc.Objects[0].VisualParameters.HasRings {
		t.Errorf("visual = %+v", doc.Objects[0].VisualParameters)
	}
	if doc.Stats.TotalCommits != 420 {
		t.Errorf("stats commits = %d, want 420", doc.Stats.TotalCommits)
	}
}

func TestTableFormatter(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = old }()

	var buf bytes.Buffer
	f := &TableFormatter{NoHyperlinks: true}
	if err := f.Format(testScene(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"BODY", "COMMITS", "ORBIT",
		"nebula",
		"680 KB",
		"420",  // measured, so no tilde
		"52.3", // orbital radius
		"1 repos",
		"1.2k stars",
		"rate limit: 42/60 remaining",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "420~") {
		t.Error("measured counts must not carry the estimate marker")
	}
}

func TestTableFormatterEstimatedMarker(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = old }()

	scene := testScene()
	scene.Objects[0].Record.CountProvenance = model.ProvenanceEstimated

	var buf bytes.Buffer
	f := &TableFormatter{NoHyperlinks: true}
	if err := f.Format(scene, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), "420~") {
		t.Errorf("estimated counts should carry the ~ marker:\n%s", buf.String())
	}
}

func TestTableFormatterEmptyScene(t *testing.T) {
	scene := testScene()
	scene.Objects = nil

	var buf bytes.Buffer
	f := &TableFormatter{NoHyperlinks: true}
	if err := f.Format(scene, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), "No repositories visible") {
		t.Errorf("empty scene output = %q", buf.String())
	}
}

func TestMarkdownFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := &MarkdownFormatter{}
	if err := f.Format(testScene(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Orrery · 2024 (all)",
		"| Body | Age |",
		"[nebula](https://github.com/octocat/nebula)",
		"| 52.3 |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q:\n%s", want, out)
		}
	}
}
