package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/orrery-cli/orrery/internal/cache"
	"github.com/orrery-cli/orrery/internal/constants"
	"github.com/orrery-cli/orrery/internal/ghclient"
	"github.com/orrery-cli/orrery/internal/model"
	"github.com/orrery-cli/orrery/internal/schedule"
)

// enrichGate lets a test stall one enrichment call: the call signals
// entered and then waits until release is closed.
type enrichGate struct {
	entered chan struct{}
	release chan struct{}
}

type mockFetcher struct {
	mu sync.Mutex

	repos   []model.Repository
	listErr error

	commits  map[string]int
	branches map[string]int
	issues   map[string]int
	prs      map[string]int
	forkPRs  map[string]int

	detailErr error

	rateLimit model.RateLimit
	observed  bool

	listCalls   int
	detailCalls int

	// gate stalls the next CountCommits call; consumed on use.
	gate *enrichGate
}

func (m *mockFetcher) ListRepositories(_ context.Context, _ string) ([]model.Repository, model.RateLimit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.rateLimit, m.listErr
	}
	m.observed = true
	out := make([]model.Repository, len(m.repos))
	copy(out, m.repos)
	return out, m.rateLimit, nil
}

func (m *mockFetcher) count(table map[string]int, repo string, fallback int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detailCalls++
	if m.detailErr != nil {
		return 0, m.detailErr
	}
	if n, ok := table[repo]; ok {
		return n, nil
	}
	return fallback, nil
}

func (m *mockFetcher) CountCommits(_ context.Context, _, repo string) (int, error) {
	m.mu.Lock()
	gate := m.gate
	m.gate = nil
	m.mu.Unlock()
	if gate != nil {
		gate.entered <- struct{}{}
		<-gate.release
	}
	return m.count(m.commits, repo, 10)
}

func (m *mockFetcher) CountBranches(_ context.Context, _, repo string) (int, error) {
	return m.count(m.branches, repo, 1)
}

func (m *mockFetcher) OpenIssuesAndPRs(_ context.Context, _, repo string) (int, int, error) {
	issues, err := m.count(m.issues, repo, 0)
	if err != nil {
		return 0, 0, err
	}
	m.mu.Lock()
	prs := m.prs[repo]
	m.mu.Unlock()
	return prs, issues, nil
}

func (m *mockFetcher) ForkPRsToParent(_ context.Context, _, _, parentRepo, _ string) (int, error) {
	return m.count(m.forkPRs, parentRepo, 0)
}

func (m *mockFetcher) RateLimit() model.RateLimit {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rateLimit
}

func (m *mockFetcher) RateLimitObserved() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.observed
}

var _ ghclient.Fetcher = (*mockFetcher)(nil)

func testRepo(name string, year int) model.Repository {
	created := time.Date(year, 3, 1, 0, 0, 0, 0, time.UTC)
	return model.Repository{
		Name:            name,
		Owner:           "octocat",
		SizeKB:          100,
		TotalCommits:    5,
		BranchCount:     1,
		CreatedAt:       created,
		UpdatedAt:       created,
		PushedAt:        created,
		CountProvenance: model.ProvenanceEstimated,
	}
}

func testStore(t *testing.T) *cache.Store {
	t.Helper()
	store, err := cache.NewStoreAt(t.TempDir(), time.Hour, 24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func testScheduler() *schedule.Scheduler {
	return schedule.New(schedule.Config{
		BatchSize:       constants.EnrichBatchSize,
		SafetyThreshold: constants.BudgetSafetyThreshold,
		InterBatchDelay: time.Millisecond,
	})
}

func TestFetchRepositoriesEnrichesAndCaches(t *testing.T) {
	fetcher := &mockFetcher{
		repos: []model.Repository{
			testRepo("alpha", 2018),
			testRepo("beta", 2020),
		},
		commits:   map[string]int{"alpha": 120, "beta": 45},
		branches:  map[string]int{"alpha": 3, "beta": 2},
		issues:    map[string]int{"alpha": 7},
		prs:       map[string]int{"alpha": 2},
		rateLimit: model.RateLimit{Remaining: 5000, Limit: 5000},
	}
	store := testStore(t)
	svc := New(fetcher, store, testScheduler())

	result, err := svc.FetchRepositories(context.Background(), "octocat", Options{Year: 2024, Mode: model.ModeAll})
	if err != nil {
		t.Fatalf("FetchRepositories() error = %v", err)
	}

	if result.FromCache {
		t.Error("first fetch should not come from cache")
	}
	if len(result.Repositories) != 2 {
		t.Fatalf("visible repos = %d, want 2", len(result.Repositories))
	}

	byName := map[string]model.Repository{}
	for _, r := range result.Repositories {
		byName[r.Name] = r
	}

	alpha := byName["alpha"]
	if alpha.TotalCommits != 120 || alpha.BranchCount != 3 || alpha.OpenIssues != 7 || alpha.OpenPRs != 2 {
		t.Errorf("alpha counts = %d/%d/%d/%d, want 120/3/7/2",
			alpha.TotalCommits, alpha.BranchCount, alpha.OpenIssues, alpha.OpenPRs)
	}
	if alpha.CountProvenance != model.ProvenanceMeasured {
		t.Errorf("alpha provenance = %v, want measured", alpha.CountProvenance)
	}

	d, ok := store.GetDetail("octocat", "alpha")
	if !ok {
		t.Fatal("detail entry for alpha not written back")
	}
	if d.TotalCommits != 120 {
		t.Errorf("cached commits = %d, want 120", d.TotalCommits)
	}
}

func TestFetchRepositoriesSecondPassServedFromCache(t *testing.T) {
	fetcher := &mockFetcher{
		repos:     []model.Repository{testRepo("alpha", 2018)},
		commits:   map[string]int{"alpha": 50},
		rateLimit: model.RateLimit{Remaining: 5000, Limit: 5000},
	}
	store := testStore(t)
	svc := New(fetcher, store, testScheduler())

	opts := Options{Year: 2024, Mode: model.ModeAll}
	if _, err := svc.FetchRepositories(context.Background(), "octocat", opts); err != nil {
		t.Fatalf("first fetch: %v", err)
	}

	firstDetailCalls := fetcher.detailCalls

	result, err := svc.FetchRepositories(context.Background(), "octocat", opts)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}

	if !result.FromCache {
		t.Error("second fetch should be served from the basic cache")
	}
	if fetcher.listCalls != 1 {
		t.Errorf("list calls = %d, want 1", fetcher.listCalls)
	}
	if fetcher.detailCalls != firstDetailCalls {
		t.Errorf("detail calls grew from %d to %d on a fully cached pass",
			firstDetailCalls, fetcher.detailCalls)
	}
	if result.Repositories[0].TotalCommits != 50 {
		t.Errorf("cached commits = %d, want 50", result.Repositories[0].TotalCommits)
	}
	if result.Repositories[0].CountProvenance != model.ProvenanceMeasured {
		t.Error("cached detail should report measured provenance")
	}
}

func TestFetchRepositoriesForksReverifiedDespiteCache(t *testing.T) {
	fork := testRepo("spoon", 2019)
	fork.IsFork = true
	fork.Parent = &model.ParentRef{Owner: "upstream", Name: "knife"}

	fetcher := &mockFetcher{
		repos:     []model.Repository{fork},
		forkPRs:   map[string]int{"knife": 4},
		rateLimit: model.RateLimit{Remaining: 5000, Limit: 5000},
	}
	store := testStore(t)
	svc := New(fetcher, store, testScheduler())

	opts := Options{Year: 2024, Mode: model.ModeAll}
	if _, err := svc.FetchRepositories(context.Background(), "octocat", opts); err != nil {
		t.Fatalf("first fetch: %v", err)
	}

	calls := fetcher.detailCalls
	result, err := svc.FetchRepositories(context.Background(), "octocat", opts)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}

	if fetcher.detailCalls <= calls {
		t.Error("fork should be re-enriched even with a fresh detail cache entry")
	}
	if result.Repositories[0].OpenPRs != 4 {
		t.Errorf("fork OpenPRs = %d, want 4 (fork-to-parent count)", result.Repositories[0].OpenPRs)
	}
}

func TestFetchRepositoriesRateLimitedListSurfaces(t *testing.T) {
	fetcher := &mockFetcher{listErr: ghclient.ErrRateLimited}
	svc := New(fetcher, testStore(t), testScheduler())

	_, err := svc.FetchRepositories(context.Background(), "octocat", Options{Year: 2024})
	if !errors.Is(err, ghclient.ErrRateLimited) {
		t.Errorf("error = %v, want ErrRateLimited", err)
	}
}

func TestFetchRepositoriesUnknownUserSurfaces(t *testing.T) {
	fetcher := &mockFetcher{listErr: ghclient.ErrUserNotFound}
	svc := New(fetcher, testStore(t), testScheduler())

	_, err := svc.FetchRepositories(context.Background(), "no-such-user", Options{Year: 2024})
	if !errors.Is(err, ghclient.ErrUserNotFound) {
		t.Errorf("error = %v, want ErrUserNotFound", err)
	}
}

func TestFetchRepositoriesDetailErrorsKeepEstimates(t *testing.T) {
	r := testRepo("alpha", 2018)
	r.TotalCommits = 42

	fetcher := &mockFetcher{
		repos:     []model.Repository{r},
		detailErr: errors.New("boom"),
		rateLimit: model.RateLimit{Remaining: 5000, Limit: 5000},
	}
	store := testStore(t)
	svc := New(fetcher, store, testScheduler())

	result, err := svc.FetchRepositories(context.Background(), "octocat", Options{Year: 2024, Mode: model.ModeAll})
	if err != nil {
		t.Fatalf("FetchRepositories() error = %v", err)
	}

	got := result.Repositories[0]
	if got.TotalCommits != 42 {
		t.Errorf("commits = %d, want estimate 42 retained", got.TotalCommits)
	}
	if got.CountProvenance != model.ProvenanceEstimated {
		t.Error("failed enrichment must not upgrade provenance")
	}
	if result.Enrichment.Failed != 1 {
		t.Errorf("Enrichment.Failed = %d, want 1", result.Enrichment.Failed)
	}
	if _, ok := store.GetDetail("octocat", "alpha"); ok {
		t.Error("failed enrichment must not write a detail entry")
	}
}

func TestFetchRepositoriesConservativeBudgetOnCacheHit(t *testing.T) {
	store := testStore(t)
	if err := store.SetBasic("octocat", []model.Repository{testRepo("alpha", 2018)}); err != nil {
		t.Fatal(err)
	}

	// No list call ever happens, so the fetcher never observes real
	// headers and the budget must fall back to the conservative value.
	fetcher := &mockFetcher{commits: map[string]int{"alpha": 9}}
	svc := New(fetcher, store, testScheduler())

	result, err := svc.FetchRepositories(context.Background(), "octocat", Options{Year: 2024, Mode: model.ModeAll})
	if err != nil {
		t.Fatalf("FetchRepositories() error = %v", err)
	}

	if !result.FromCache {
		t.Error("expected cache hit")
	}
	if result.RateLimit.Remaining != constants.ConservativeRemaining {
		t.Errorf("remaining = %d, want conservative %d",
			result.RateLimit.Remaining, constants.ConservativeRemaining)
	}
	if fetcher.listCalls != 0 {
		t.Errorf("list calls = %d, want 0", fetcher.listCalls)
	}
}

func TestFetchRepositoriesActiveModeFiltersButEnrichesVisibleOnly(t *testing.T) {
	active := testRepo("alpha", 2018)
	active.PushedAt = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	dormant := testRepo("beta", 2018)

	fetcher := &mockFetcher{
		repos:     []model.Repository{active, dormant},
		commits:   map[string]int{"alpha": 77, "beta": 33},
		rateLimit: model.RateLimit{Remaining: 5000, Limit: 5000},
	}
	store := testStore(t)
	svc := New(fetcher, store, testScheduler())

	result, err := svc.FetchRepositories(context.Background(), "octocat", Options{Year: 2024, Mode: model.ModeActive})
	if err != nil {
		t.Fatalf("FetchRepositories() error = %v", err)
	}

	if len(result.Repositories) != 1 || result.Repositories[0].Name != "alpha" {
		t.Fatalf("visible = %v, want only alpha", result.Repositories)
	}
	if len(result.AllRepositories) != 2 {
		t.Errorf("AllRepositories = %d, want 2", len(result.AllRepositories))
	}
	if _, ok := store.GetDetail("octocat", "beta"); ok {
		t.Error("dormant repo outside the snapshot should not be enriched")
	}
}

func TestFetchRepositoriesNilStore(t *testing.T) {
	fetcher := &mockFetcher{
		repos:     []model.Repository{testRepo("alpha", 2018)},
		commits:   map[string]int{"alpha": 11},
		rateLimit: model.RateLimit{Remaining: 5000, Limit: 5000},
	}
	svc := New(fetcher, nil, testScheduler())

	result, err := svc.FetchRepositories(context.Background(), "octocat", Options{Year: 2024, Mode: model.ModeAll})
	if err != nil {
		t.Fatalf("FetchRepositories() error = %v", err)
	}
	if result.Repositories[0].TotalCommits != 11 {
		t.Errorf("commits = %d, want 11", result.Repositories[0].TotalCommits)
	}
}

func TestFetchRepositoriesSnapshotAgeRecomputed(t *testing.T) {
	fetcher := &mockFetcher{
		repos:     []model.Repository{testRepo("alpha", 2018)},
		rateLimit: model.RateLimit{Remaining: 5000, Limit: 5000},
	}
	svc := New(fetcher, testStore(t), testScheduler())

	result, err := svc.FetchRepositories(context.Background(), "octocat", Options{Year: 2020, Mode: model.ModeAll})
	if err != nil {
		t.Fatalf("FetchRepositories() error = %v", err)
	}

	// 2018-03-01 to 2020-12-31 is just over 1036 days.
	got := result.Repositories[0].DaysSinceCreation
	if got < 1035 || got > 1037 {
		t.Errorf("DaysSinceCreation = %d, want ~1036 relative to the snapshot", got)
	}
}

func TestFetchRepositoriesExcludedReposDropped(t *testing.T) {
	fetcher := &mockFetcher{
		repos: []model.Repository{
			testRepo("alpha", 2018),
			testRepo("scratch", 2020),
		},
		commits:   map[string]int{"alpha": 120, "scratch": 9},
		rateLimit: model.RateLimit{Remaining: 5000, Limit: 5000},
	}
	store := testStore(t)
	svc := New(fetcher, store, testScheduler())

	result, err := svc.FetchRepositories(context.Background(), "octocat", Options{
		Year: 2024,
		Mode: model.ModeAll,
		Exclude: func(fullName string) bool {
			return fullName == "octocat/scratch"
		},
	})
	if err != nil {
		t.Fatalf("FetchRepositories() error = %v", err)
	}

	if len(result.AllRepositories) != 1 || result.AllRepositories[0].Name != "alpha" {
		t.Fatalf("AllRepositories = %v, want only alpha", result.AllRepositories)
	}
	if len(result.Repositories) != 1 || result.Repositories[0].Name != "alpha" {
		t.Fatalf("visible = %v, want only alpha", result.Repositories)
	}
	// No budget spent on the excluded record.
	if _, ok := store.GetDetail("octocat", "scratch"); ok {
		t.Error("excluded repo must not be enriched or cached")
	}
}

func TestFetchRepositoriesStalePassDropsWriteBack(t *testing.T) {
	gate := &enrichGate{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	fetcher := &mockFetcher{
		repos:     []model.Repository{testRepo("alpha", 2018)},
		commits:   map[string]int{"alpha": 111},
		rateLimit: model.RateLimit{Remaining: 5000, Limit: 5000},
		gate:      gate,
	}
	store := testStore(t)
	svc := New(fetcher, store, testScheduler())
	opts := Options{Year: 2024, Mode: model.ModeAll}

	// First pass stalls inside enrichment, after it cached the basic
	// list but before any detail write.
	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.FetchRepositories(context.Background(), "octocat", opts)
		firstDone <- err
	}()
	<-gate.entered

	// A second pass starts and completes while the first is stalled.
	if _, err := svc.FetchRepositories(context.Background(), "octocat", opts); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	d, ok := store.GetDetail("octocat", "alpha")
	if !ok || d.TotalCommits != 111 {
		t.Fatalf("second pass detail = %+v (ok=%v), want commits 111", d, ok)
	}

	// Unblock the first pass with a different measurement. If its
	// write-back were not dropped as stale, it would clobber the entry.
	fetcher.mu.Lock()
	fetcher.commits["alpha"] = 999
	fetcher.mu.Unlock()
	close(gate.release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first fetch: %v", err)
	}

	d, ok = store.GetDetail("octocat", "alpha")
	if !ok || d.TotalCommits != 111 {
		t.Errorf("cached commits = %d (ok=%v), want 111 from the newer pass", d.TotalCommits, ok)
	}
}
