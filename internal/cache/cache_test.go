package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/orrery-cli/orrery/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStoreAt(t.TempDir(), time.Hour, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewStoreAt: %v", err)
	}
	return s
}

func TestDetailRoundTrip(t *testing.T) {
	s := newTestStore(t)

	want := DetailFields{
		TotalCommits: 321,
		BranchCount:  4,
		OpenPRs:      2,
		OpenIssues:   7,
	}

	if err := s.SetDetail("octocat", "hello-world", want); err != nil {
		t.Fatalf("SetDetail: %v", err)
	}

	got, ok := s.GetDetail("octocat", "hello-world")
	if !ok {
		t.Fatal("GetDetail: expected hit, got absent")
	}
	if got != want {
		t.Errorf("GetDetail = %+v, want %+v", got, want)
	}
}

func TestDetailExpiresAfterTTL(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetDetail("octocat", "hello-world", DetailFields{TotalCommits: 1}); err != nil {
		t.Fatalf("SetDetail: %v", err)
	}

	// Advance the clock past the 24h detail TTL.
	s.SetClock(func() time.Time { return time.Now().Add(25 * time.Hour) })

	if _, ok := s.GetDetail("octocat", "hello-world"); ok {
		t.Error("expected expired entry to be absent")
	}

	// The expired read must have evicted the file: a fresh clock still
	// sees nothing.
	s.SetClock(time.Now)
	if _, ok := s.GetDetail("octocat", "hello-world"); ok {
		t.Error("expected expired entry to be deleted, not merely hidden")
	}
}

func TestBasicRoundTripAndExpiry(t *testing.T) {
	s := newTestStore(t)

	repos := []model.Repository{
		{Name: "alpha", Owner: "octocat", Stars: 12},
		{Name: "beta", Owner: "octocat", SizeKB: 1000},
	}

	if err := s.SetBasic("octocat", repos); err != nil {
		t.Fatalf("SetBasic: %v", err)
	}

	got, ok := s.GetBasic("octocat")
	if !ok {
		t.Fatal("GetBasic: expected hit, got absent")
	}
	if len(got) != 2 || got[0].Name != "alpha" || got[1].SizeKB != 1000 {
		t.Errorf("GetBasic returned unexpected records: %+v", got)
	}

	// Past the 1h basic TTL the list is absent.
	s.SetClock(func() time.Time { return time.Now().Add(2 * time.Hour) })
	if _, ok := s.GetBasic("octocat"); ok {
		t.Error("expected expired basic list to be absent")
	}
}

func TestGetAllDetail(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetDetail("octocat", "alpha", DetailFields{TotalCommits: 10}); err != nil {
		t.Fatalf("SetDetail: %v", err)
	}
	if err := s.SetDetail("octocat", "beta", DetailFields{TotalCommits: 20}); err != nil {
		t.Fatalf("SetDetail: %v", err)
	}
	// Another user's entry must not leak into octocat's map.
	if err := s.SetDetail("hubber", "gamma", DetailFields{TotalCommits: 30}); err != nil {
		t.Fatalf("SetDetail: %v", err)
	}

	all := s.GetAllDetail("octocat")
	if len(all) != 2 {
		t.Fatalf("GetAllDetail returned %d entries, want 2", len(all))
	}
	if all["alpha"].TotalCommits != 10 || all["beta"].TotalCommits != 20 {
		t.Errorf("GetAllDetail returned unexpected map: %+v", all)
	}
}

func TestLastWriteWins(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetDetail("octocat", "alpha", DetailFields{TotalCommits: 1}); err != nil {
		t.Fatalf("SetDetail: %v", err)
	}
	if err := s.SetDetail("octocat", "alpha", DetailFields{TotalCommits: 2}); err != nil {
		t.Fatalf("SetDetail: %v", err)
	}

	got, ok := s.GetDetail("octocat", "alpha")
	if !ok || got.TotalCommits != 2 {
		t.Errorf("expected the second write to win, got %+v (ok=%v)", got, ok)
	}
}

func TestStats(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetBasic("octocat", []model.Repository{{Name: "alpha"}}); err != nil {
		t.Fatalf("SetBasic: %v", err)
	}
	if err := s.SetDetail("octocat", "alpha", DetailFields{}); err != nil {
		t.Fatalf("SetDetail: %v", err)
	}

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.BasicTotal != 1 || stats.BasicValid != 1 {
		t.Errorf("basic stats = %d/%d, want 1/1", stats.BasicValid, stats.BasicTotal)
	}
	if stats.DetailTotal != 1 || stats.DetailValid != 1 {
		t.Errorf("detail stats = %d/%d, want 1/1", stats.DetailValid, stats.DetailTotal)
	}
}

func TestWriteFailureEvictsOnlyExpiredEntries(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStoreAt(dir, time.Hour, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewStoreAt: %v", err)
	}

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	s.SetClock(func() time.Time { return clock })

	// One entry written two hours before "now" (past the 1h TTL) and
	// one written at "now".
	if err := s.SetBasic("stale", []model.Repository{{Name: "old"}}); err != nil {
		t.Fatalf("SetBasic stale: %v", err)
	}
	clock = base.Add(2 * time.Hour)
	if err := s.SetBasic("fresh", []model.Repository{{Name: "new"}}); err != nil {
		t.Fatalf("SetBasic fresh: %v", err)
	}

	// A directory squatting on the target path makes the rename fail.
	if err := os.Mkdir(filepath.Join(dir, "detail_u_blocked.json"), 0700); err != nil {
		t.Fatal(err)
	}
	if err := s.SetDetail("u", "blocked", DetailFields{TotalCommits: 1}); err == nil {
		t.Fatal("SetDetail: expected a write failure")
	}

	if _, err := os.Stat(filepath.Join(dir, "basic_stale.json")); !os.IsNotExist(err) {
		t.Error("expired entry should be evicted after a write failure")
	}
	if repos, ok := s.GetBasic("fresh"); !ok || len(repos) != 1 || repos[0].Name != "new" {
		t.Error("fresh entry must survive the eviction pass")
	}
}

func TestClear(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetDetail("octocat", "alpha", DetailFields{}); err != nil {
		t.Fatalf("SetDetail: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := s.GetDetail("octocat", "alpha"); ok {
		t.Error("expected cleared cache to be empty")
	}
}
