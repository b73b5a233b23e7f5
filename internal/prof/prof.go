// Package prof wraps runtime profiling behind a single start/stop session.
package prof

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
)

// Options selects which profiles a session records. Empty paths disable the
// corresponding profile.
type Options struct {
	CPUPath string
	MemPath string
}

// Session is an active profiling run. Stop must be called exactly once.
type Session struct {
	cpuFile *os.File
	memPath string
}

// Start begins profiling per the options. A zero Options returns a session
// whose Stop is a no-op.
func Start(opts Options) (*Session, error) {
	s := &Session{memPath: opts.MemPath}
	if opts.CPUPath != "" {
		f, err := os.Create(opts.CPUPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to start CPU profile: %w", err)
		}
		s.cpuFile = f
	}
	return s, nil
}

// Stop finalizes the session: the CPU profile is flushed and the heap
// profile, when requested, is captured after a forced GC.
func (s *Session) Stop() error {
	if s.cpuFile != nil {
		pprof.StopCPUProfile()
		if err := s.cpuFile.Close(); err != nil {
			return fmt.Errorf("failed to close CPU profile: %w", err)
		}
		s.cpuFile = nil
	}
	if s.memPath != "" {
		f, err := os.Create(s.memPath)
		if err != nil {
			return fmt.Errorf("failed to create heap profile: %w", err)
		}
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write heap profile: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close heap profile: %w", err)
		}
		s.memPath = ""
	}
	return nil
}
