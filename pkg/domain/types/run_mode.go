package types

import "fmt"

// RunMode is the typed decision of the incremental execution policy. It is
// produced in one place before dispatch rather than inferred from ambient
// "last run" timestamps.
type RunMode string

const (
	// RunModeSkip means the last run is too recent and no work is performed
	RunModeSkip RunMode = "SKIP"
	// RunModeIncremental means prior state is loaded and only the new window is processed
	RunModeIncremental RunMode = "INCREMENTAL"
	// RunModeFull means all state is recomputed from scratch
	RunModeFull RunMode = "FULL"
)

// AllRunModes returns all valid run modes
func AllRunModes() []RunMode {
	return []RunMode{
		RunModeSkip,
		RunModeIncremental,
		RunModeFull,
	}
}

// IsValid checks if the run mode is valid
func (m RunMode) IsValid() bool {
	switch m {
	case RunModeSkip,
		RunModeIncremental,
		RunModeFull:
		return true
	default:
		return false
	}
}

// String returns the string representation of the run mode
func (m RunMode) String() string {
	return string(m)
}

// ParseRunMode parses a string into a RunMode
func ParseRunMode(s string) (RunMode, error) {
	mode := RunMode(s)
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid run mode: %s", s)
	}
	return mode, nil
}
