package cmd

// Options holds the shared command-line options for the orrery CLI.
type Options struct {
	User      string // GitHub user whose repositories form the scene
	Year      int    // Snapshot year (0 = current year)
	Mode      string // Temporal filter mode: all, active
	Format    string // Output format: table, json, markdown
	Verbosity int
	Demo      bool  // Use the built-in demo dataset, no API calls
	NoCache   bool  // Bypass the on-disk cache
	TUI       *bool // nil = auto-detect, true = force TUI, false = disable TUI

	// Profiling options
	CPUProfile string // Write CPU profile to file
	MemProfile string // Write memory profile to file
	Trace      string // Write execution trace to file
}

// Option is a functional option for configuring Options.
type Option func(*Options)

// NewOptions creates a new Options with defaults and applies any provided options.
func NewOptions(opts ...Option) *Options {
	o := &Options{
		Mode: "all",
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithUser sets the GitHub user.
func WithUser(user string) Option {
	return func(o *Options) {
		o.User = user
	}
}

// WithYear sets the snapshot year.
func WithYear(year int) Option {
	return func(o *Options) {
		o.Year = year
	}
}

// WithMode sets the temporal filter mode (all, active).
func WithMode(mode string) Option {
	return func(o *Options) {
		o.Mode = mode
	}
}

// WithFormat sets the output format (table, json, markdown).
func WithFormat(format string) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithVerbosity sets the verbosity level.
func WithVerbosity(v int) Option {
	return func(o *Options) {
		o.Verbosity = v
	}
}

// WithDemo enables the built-in demo dataset.
func WithDemo(demo bool) Option {
	return func(o *Options) {
		o.Demo = demo
	}
}

// WithNoCache bypasses the on-disk cache.
func WithNoCache(noCache bool) Option {
	return func(o *Options) {
		o.NoCache = noCache
	}
}

// WithTUI controls TUI mode (nil = auto-detect, true = force, false = disable).
func WithTUI(tui *bool) Option {
	return func(o *Options) {
		o.TUI = tui
	}
}

// WithCPUProfile sets the CPU profile output file.
func WithCPUProfile(path string) Option {
	return func(o *Options) {
		o.CPUProfile = path
	}
}

// WithMemProfile sets the memory profile output file.
func WithMemProfile(path string) Option {
	return func(o *Options) {
		o.MemProfile = path
	}
}

// WithTrace sets the execution trace output file.
func WithTrace(path string) Option {
	return func(o *Options) {
		o.Trace = path
	}
}
