package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/orrery-cli/orrery/config"
	"github.com/orrery-cli/orrery/internal/cache"
	"github.com/orrery-cli/orrery/internal/demo"
	"github.com/orrery-cli/orrery/internal/ghclient"
	"github.com/orrery-cli/orrery/internal/log"
	"github.com/orrery-cli/orrery/internal/mapping"
	"github.com/orrery-cli/orrery/internal/model"
	"github.com/orrery-cli/orrery/internal/output"
	"github.com/orrery-cli/orrery/internal/schedule"
	"github.com/orrery-cli/orrery/internal/service"
	"github.com/orrery-cli/orrery/internal/snapshot"
	"github.com/orrery-cli/orrery/internal/tui"
)

// sceneRuntime bundles TUI-related state threaded through the scene command.
type sceneRuntime struct {
	useTUI  bool
	events  chan tui.Event
	tuiDone chan error
}

// startTUI initializes and starts the progress TUI goroutine if enabled.
func (rt *sceneRuntime) startTUI() {
	if !rt.useTUI {
		return
	}
	rt.events = make(chan tui.Event, 100)
	rt.tuiDone = make(chan error, 1)
	go func() {
		rt.tuiDone <- tui.Run(rt.events)
	}()
}

// close closes the event channel and waits for the TUI to finish.
func (rt *sceneRuntime) close() {
	if rt.events == nil {
		return
	}
	close(rt.events)
	rt.events = nil
	if rt.tuiDone != nil {
		<-rt.tuiDone
	}
}

// sendEvent sends a task event to the TUI channel if it exists.
func (rt *sceneRuntime) sendEvent(task tui.TaskID, status tui.TaskStatus, opts ...tui.TaskEventOption) {
	if rt.events == nil {
		return
	}
	tui.SendTaskEvent(rt.events, task, status, opts...)
}

// NewCmdScene creates the scene command.
func NewCmdScene(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scene [user]",
		Short: "Build the solar-system scene for a user (same as root orrery)",
		Long: `Fetches the user's public repositories, enriches them with exact
counts within the API rate budget, and maps them onto scene parameters.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.User = args[0]
			}
			return runScene(cmd, opts)
		},
	}

	addSceneFlags(cmd, opts)
	return cmd
}

// addSceneFlags adds the scene-specific flags to a command.
func addSceneFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVarP(&opts.User, "user", "u", "", "GitHub user whose repositories form the scene")
	cmd.Flags().IntVarP(&opts.Year, "year", "y", 0, "Snapshot year (default: current year)")
	cmd.Flags().StringVarP(&opts.Mode, "mode", "m", "all", "Temporal filter mode (all, active)")
	cmd.Flags().StringVarP(&opts.Format, "output", "o", "", "Output format (table, json, markdown)")
	cmd.Flags().BoolVar(&opts.Demo, "demo", false, "Use the built-in demo dataset, no API calls")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "Bypass the on-disk cache")
	cmd.Flags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")

	// TUI flag with tri-state: nil = auto, true = force, false = disable
	cmd.Flags().Var(newTUIFlag(opts), "tui", "Enable/disable interactive timeline browser (default: auto-detect)")

	// Profiling flags
	cmd.Flags().StringVar(&opts.CPUProfile, "cpuprofile", "", "Write CPU profile to file")
	cmd.Flags().StringVar(&opts.MemProfile, "memprofile", "", "Write memory profile to file")
	cmd.Flags().StringVar(&opts.Trace, "trace", "", "Write execution trace to file")
}

// sceneData is everything acquisition produces for rendering.
type sceneData struct {
	user      string
	records   []model.Repository
	rateLimit model.RateLimit
	demo      bool
}

func runScene(cmd *cobra.Command, opts *Options) error {
	ctx := cmd.Context()

	profiler := newProfiler(opts.CPUProfile, opts.MemProfile, opts.Trace)
	if err := profiler.Start(); err != nil {
		return err
	}
	defer profiler.Stop()

	useTUI := shouldUseTUI(opts)

	// Suppress logs during TUI to avoid interleaving with the display
	if useTUI {
		log.Initialize(opts.Verbosity, io.Discard)
	} else {
		log.Initialize(opts.Verbosity, os.Stderr)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	settings, err := cfg.GetSettings()
	if err != nil {
		return err
	}

	mode, err := parseMode(opts.Mode)
	if err != nil {
		return err
	}
	year := opts.Year
	if year == 0 {
		year = time.Now().UTC().Year()
	}

	format := output.Format(opts.Format)
	if format == "" {
		format = output.Format(settings.DefaultFormat)
	}
	if !format.Valid() {
		return fmt.Errorf("invalid output format %q (use table, json, or markdown)", format)
	}

	rt := &sceneRuntime{useTUI: useTUI}
	rt.startTUI()

	data, err := acquire(ctx, cfg, settings, opts, year, mode, rt)
	if err != nil {
		rt.close()
		return err
	}

	rt.sendEvent(tui.TaskBuild, tui.StatusRunning)
	build := sceneBuilder(data, settings)
	rt.sendEvent(tui.TaskBuild, tui.StatusComplete)
	rt.close()

	// In a TTY with table output, open the interactive timeline browser.
	if useTUI && format == output.FormatTable {
		minYear, maxYear := yearBounds(data.records)
		return tui.RunBrowser(build, year, mode, tui.WithYearRange(minYear, maxYear))
	}

	return output.NewFormatter(format).Format(build(year, mode), os.Stdout)
}

// acquire resolves the user and fetches the repository records, falling
// back to the demo dataset when the rate budget is exhausted.
func acquire(ctx context.Context, cfg *config.Config, settings config.Settings, opts *Options, year int, mode model.FilterMode, rt *sceneRuntime) (*sceneData, error) {
	if opts.Demo {
		rt.sendEvent(tui.TaskFetch, tui.StatusComplete, tui.WithCount(len(demo.Repositories())))
		rt.sendEvent(tui.TaskEnrich, tui.StatusSkipped)
		return &sceneData{user: demo.User, records: demo.Repositories(), demo: true}, nil
	}

	user := opts.User
	if user == "" {
		user = settings.DefaultUser
	}
	if user == "" {
		return nil, errors.New("no user given: pass --user, set default_user in the config, or use --demo")
	}

	client := ghclient.NewClient(ctx, cfg.GetGitHubToken())

	var store cache.Storer
	if !opts.NoCache {
		s, err := cache.NewStoreAt(cacheDir(), settings.BasicTTL, settings.DetailTTL)
		if err != nil {
			log.Warn("failed to initialize cache", "error", err)
		} else {
			store = s
		}
	}

	sched := schedule.New(schedule.Config{
		BatchSize:       settings.BatchSize,
		SafetyThreshold: settings.SafetyThreshold,
		InterBatchDelay: settings.BatchDelay,
	})

	svc := service.New(client, store, sched)

	rt.sendEvent(tui.TaskFetch, tui.StatusRunning)
	result, err := svc.FetchRepositories(ctx, user, service.Options{
		Year:    year,
		Mode:    mode,
		Exclude: cfg.IsRepoExcluded,
	})
	if err != nil {
		if errors.Is(err, ghclient.ErrRateLimited) {
			// Degrade to the built-in dataset rather than failing.
			log.Warn("rate limited, falling back to demo dataset", "user", user)
			rl := client.RateLimit()
			rt.sendEvent(tui.TaskFetch, tui.StatusError, tui.WithError(err))
			tui.SendEvent(rt.events, tui.RateLimitEvent{Limited: true, ResetAt: rl.ResetAt})
			return &sceneData{user: demo.User, records: demo.Repositories(), rateLimit: rl, demo: true}, nil
		}
		if errors.Is(err, ghclient.ErrUserNotFound) {
			rt.sendEvent(tui.TaskFetch, tui.StatusError, tui.WithError(err))
			return nil, fmt.Errorf("user %q not found on GitHub", user)
		}
		return nil, err
	}

	rt.sendEvent(tui.TaskFetch, tui.StatusComplete, tui.WithCount(len(result.AllRepositories)))
	if e := result.Enrichment; e.Processed+e.Failed+e.Skipped > 0 {
		rt.sendEvent(tui.TaskEnrich, tui.StatusComplete,
			tui.WithMessage(fmt.Sprintf("%d measured, %d skipped", e.Processed, e.Skipped)))
	} else {
		rt.sendEvent(tui.TaskEnrich, tui.StatusSkipped)
	}
	if result.RateLimit.Exhausted() {
		tui.SendEvent(rt.events, tui.RateLimitEvent{Limited: true, ResetAt: result.RateLimit.ResetAt})
	}

	return &sceneData{
		user:      user,
		records:   result.AllRepositories,
		rateLimit: result.RateLimit,
	}, nil
}

// sceneBuilder returns the recompute function shared by the one-shot
// render and the timeline browser. Every call filters and maps the full
// record set from scratch.
func sceneBuilder(data *sceneData, settings config.Settings) tui.BuildFunc {
	params := mapping.Params{
		Mode:              mapping.OrbitMode(settings.OrbitMode),
		OrbitBase:         settings.OrbitBase,
		OrbitAgeFactor:    settings.OrbitAgeFactor,
		MinSpacing:        mapping.DefaultParams().MinSpacing,
		SpacingMultiplier: settings.SpacingMultiplier,
		MaxEccentricity:   settings.MaxEccentricity,
		Variants:          settings.PlanetVariants,
	}
	snaps := snapshot.NewManager()

	return func(year int, mode model.FilterMode) *model.Scene {
		snap := snapshot.Context(year, mode)
		visible := snaps.Apply(data.records, snap)
		scene := mapping.BuildScene(visible, snap, params)
		scene.RateLimit = data.rateLimit
		return &scene
	}
}

// yearBounds returns the navigable timeline range: from the earliest
// repository creation year through the current year.
func yearBounds(records []model.Repository) (minYear, maxYear int) {
	maxYear = time.Now().UTC().Year()
	minYear = maxYear
	for i := range records {
		if c := records[i].CreatedAt; !c.IsZero() && c.Year() < minYear {
			minYear = c.Year()
		}
	}
	return minYear, maxYear
}

func parseMode(s string) (model.FilterMode, error) {
	switch s {
	case "", "all":
		return model.ModeAll, nil
	case "active":
		return model.ModeActive, nil
	default:
		return "", fmt.Errorf("invalid mode %q (use all or active)", s)
	}
}

// cacheDir returns the on-disk cache location.
func cacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".orrery-cache"
	}
	return filepath.Join(dir, "orrery")
}
