package snapshot

import (
	"testing"
	"time"

	"github.com/orrery-cli/orrery/internal/model"
)

func date(year int) time.Time {
	return time.Date(year, time.June, 15, 12, 0, 0, 0, time.UTC)
}

func testRecords() []model.Repository {
	return []model.Repository{
		{Name: "ancient", Owner: "u", CreatedAt: date(2015), PushedAt: date(2016)},
		{Name: "steady", Owner: "u", CreatedAt: date(2019), PushedAt: date(2021)},
		{Name: "fresh", Owner: "u", CreatedAt: date(2023), PushedAt: date(2023)},
		{Name: "undated", Owner: "u"},
	}
}

func names(records []model.Repository) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func TestFilterModeAll(t *testing.T) {
	m := NewManager()

	tests := []struct {
		year int
		want []string
	}{
		{2014, nil},
		{2015, []string{"ancient"}},
		{2021, []string{"ancient", "steady"}},
		{2023, []string{"ancient", "steady", "fresh"}},
	}

	for _, tt := range tests {
		got := m.Filter(testRecords(), tt.year, model.ModeAll)
		if len(got) != len(tt.want) {
			t.Errorf("Filter(year=%d, all) returned %v, want %v", tt.year, names(got), tt.want)
			continue
		}
		for i, name := range tt.want {
			if got[i].Name != name {
				t.Errorf("Filter(year=%d, all)[%d] = %s, want %s", tt.year, i, got[i].Name, name)
			}
		}
	}
}

func TestFilterModeActiveIsExactYear(t *testing.T) {
	m := NewManager()

	got := m.Filter(testRecords(), 2021, model.ModeActive)
	if len(got) != 1 || got[0].Name != "steady" {
		t.Errorf("Filter(2021, active) = %v, want [steady]", names(got))
	}

	// Pushed before the snapshot year does not count: exact match only.
	got = m.Filter(testRecords(), 2022, model.ModeActive)
	if len(got) != 0 {
		t.Errorf("Filter(2022, active) = %v, want empty", names(got))
	}
}

func TestRecordsMissingDatesAreExcluded(t *testing.T) {
	m := NewManager()

	for _, mode := range []model.FilterMode{model.ModeAll, model.ModeActive} {
		got := m.Filter(testRecords(), 2030, mode)
		for _, r := range got {
			if r.Name == "undated" {
				t.Errorf("mode %s: record without dates must be excluded", mode)
			}
		}
	}
}

func TestLastCommitYearMemoized(t *testing.T) {
	m := NewManager()
	r := model.Repository{Name: "steady", Owner: "u", PushedAt: date(2021)}

	year, ok := m.LastCommitYear(&r)
	if !ok || year != 2021 {
		t.Fatalf("LastCommitYear = %d, %v; want 2021, true", year, ok)
	}

	// Mutating the record after the first lookup must not change the
	// memoized answer within the session.
	r.PushedAt = date(1999)
	year, ok = m.LastCommitYear(&r)
	if !ok || year != 2021 {
		t.Errorf("memoized LastCommitYear = %d, want 2021", year)
	}
}

func TestApplyRecomputesAgeAtSnapshot(t *testing.T) {
	m := NewManager()
	records := []model.Repository{
		{Name: "ancient", Owner: "u", CreatedAt: date(2015), PushedAt: date(2016), DaysSinceCreation: 99999},
	}

	snap := Context(2020, model.ModeAll)
	got := m.Apply(records, snap)
	if len(got) != 1 {
		t.Fatalf("Apply returned %d records, want 1", len(got))
	}

	wantDays := int(snap.Date.Sub(date(2015)).Hours() / 24)
	if got[0].DaysSinceCreation != wantDays {
		t.Errorf("age at snapshot = %d days, want %d", got[0].DaysSinceCreation, wantDays)
	}

	// The input slice must stay untouched.
	if records[0].DaysSinceCreation != 99999 {
		t.Error("Apply mutated its input")
	}
}

func TestApplyRederivesRecencyAtSnapshot(t *testing.T) {
	m := NewManager()
	yearEnd := Context(2020, model.ModeAll).Date
	records := []model.Repository{
		// Pushed ten days before the snapshot instant: recent in 2020.
		{Name: "busy", Owner: "u", CreatedAt: date(2015), PushedAt: yearEnd.AddDate(0, 0, -10)},
		// Pushed mid-year: dormant by year end despite the fetch-time flag.
		{Name: "idle", Owner: "u", CreatedAt: date(2015), PushedAt: date(2020), HasRecentCommits: true},
	}

	got := m.Apply(records, Context(2020, model.ModeAll))
	if len(got) != 2 {
		t.Fatalf("Apply returned %d records, want 2", len(got))
	}
	if !got[0].HasRecentCommits {
		t.Error("busy: HasRecentCommits = false, want true at 2020 year end")
	}
	if got[1].HasRecentCommits {
		t.Error("idle: HasRecentCommits = true, want false at 2020 year end")
	}
}

func TestContextYear(t *testing.T) {
	snap := Context(2021, model.ModeAll)
	if snap.Year() != 2021 {
		t.Errorf("Year() = %d, want 2021", snap.Year())
	}
	if snap.Mode != model.ModeAll {
		t.Errorf("Mode = %s, want all", snap.Mode)
	}
}
