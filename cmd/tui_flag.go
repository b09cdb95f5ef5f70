package cmd

import (
	"fmt"

	"github.com/orrery-cli/orrery/internal/tui"
)

// tuiFlag is a pflag.Value with three states: forced on, forced off,
// or auto-detected from the terminal.
type tuiFlag struct {
	opts *Options
}

func newTUIFlag(opts *Options) *tuiFlag {
	return &tuiFlag{opts: opts}
}

func (f *tuiFlag) String() string {
	if f.opts.TUI == nil {
		return "auto"
	}
	if *f.opts.TUI {
		return "true"
	}
	return "false"
}

func (f *tuiFlag) Set(s string) error {
	switch s {
	case "true", "1", "yes":
		v := true
		f.opts.TUI = &v
	case "false", "0", "no":
		v := false
		f.opts.TUI = &v
	case "auto":
		f.opts.TUI = nil
	default:
		return fmt.Errorf("--tui accepts true, false, or auto (got %q)", s)
	}
	return nil
}

func (f *tuiFlag) Type() string {
	return "bool"
}

func (f *tuiFlag) IsBoolFlag() bool {
	return true
}

// shouldUseTUI resolves the tri-state flag against the environment.
func shouldUseTUI(opts *Options) bool {
	// Verbose runs log to stderr, which the TUI would overwrite.
	if opts.Verbosity > 0 {
		return false
	}
	if opts.TUI != nil {
		return *opts.TUI
	}
	return tui.ShouldUseTUI()
}
