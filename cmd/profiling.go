package cmd

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

// profiler manages optional CPU, memory, and execution-trace profiles.
// Empty paths disable the corresponding profile.
type profiler struct {
	cpuPath   string
	memPath   string
	tracePath string

	cpuFile   *os.File
	traceFile *os.File
}

func newProfiler(cpuPath, memPath, tracePath string) *profiler {
	return &profiler{
		cpuPath:   cpuPath,
		memPath:   memPath,
		tracePath: tracePath,
	}
}

// Start begins CPU profiling and execution tracing if configured.
func (p *profiler) Start() error {
	if p.cpuPath != "" {
		f, err := os.Create(p.cpuPath)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		p.cpuFile = f
	}

	if p.tracePath != "" {
		f, err := os.Create(p.tracePath)
		if err != nil {
			p.stopCPU()
			return fmt.Errorf("could not create trace: %w", err)
		}
		if err := trace.Start(f); err != nil {
			f.Close()
			p.stopCPU()
			return fmt.Errorf("could not start trace: %w", err)
		}
		p.traceFile = f
	}

	return nil
}

// Stop ends all profiling and writes the memory profile if configured.
func (p *profiler) Stop() {
	if p.traceFile != nil {
		trace.Stop()
		p.traceFile.Close()
		p.traceFile = nil
	}

	p.stopCPU()

	if p.memPath != "" {
		f, err := os.Create(p.memPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not create memory profile: %v\n", err)
			return
		}
		defer f.Close()
		runtime.GC() // up-to-date allocation statistics
		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "could not write memory profile: %v\n", err)
		}
	}
}

func (p *profiler) stopCPU() {
	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		p.cpuFile.Close()
		p.cpuFile = nil
	}
}
