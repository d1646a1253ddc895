// Package diagnostics defines the flat, leveled message type the pipeline
// attaches to a file's result, and the outcome/summary types the Runner
// aggregates across a batch.
package diagnostics

import "fmt"

// Level is the severity of a Diagnostic.
type Level int

const (
	// Info is a non-actionable observation.
	Info Level = iota
	// Warning is a soft policy skip or recoverable condition.
	Warning
	// Error is a hard failure for this file.
	Error
)

func (l Level) String() string {
	switch l {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is a single leveled message attached to a file's processing.
type Diagnostic struct {
	Level   Level
	Message string
}

// Outcome is the aggregate per-file result category exposed to callers.
type Outcome int

const (
	// Unchanged means the file needed no modification (or was skipped).
	Unchanged Outcome = iota
	// WouldChange means a dry run found a change that apply mode would make.
	WouldChange
	// Changed means apply mode wrote a change.
	Changed
	// ErrorOutcome means processing failed for this file.
	ErrorOutcome
)

func (o Outcome) String() string {
	switch o {
	case Unchanged:
		return "UNCHANGED"
	case WouldChange:
		return "WOULD_CHANGE"
	case Changed:
		return "CHANGED"
	case ErrorOutcome:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FileReport is one file's outcome plus its diagnostics and optional diff,
// the shape the CLI/plugin layers consume.
type FileReport struct {
	Path        string
	Outcome     Outcome
	Diagnostics []Diagnostic
	Diff        string
	Written     bool
}

// RunResult is the aggregate returned to callers after a batch completes.
type RunResult struct {
	Files    []FileReport
	Unchanged int
	WouldChange int
	Changed   int
	Skipped   int
	Failed    int
	Written   int
}

// Summarize builds a RunResult from a slice of FileReports, tallying
// counts by Outcome.
func Summarize(files []FileReport) RunResult {
	rr := RunResult{Files: files}
	for _, f := range files {
		switch f.Outcome {
		case Unchanged:
			rr.Unchanged++
		case WouldChange:
			rr.WouldChange++
		case Changed:
			rr.Changed++
		case ErrorOutcome:
			rr.Failed++
		}
		if f.Written {
			rr.Written++
		}
	}
	return rr
}

// DiagnosticTotals counts diagnostics by level across the whole run.
func (rr RunResult) DiagnosticTotals() map[Level]int {
	totals := make(map[Level]int, 3)
	for _, f := range rr.Files {
		for _, d := range f.Diagnostics {
			totals[d.Level]++
		}
	}
	return totals
}

// Errorf appends a formatted Error-level diagnostic.
func Errorf(ds []Diagnostic, format string, args ...any) []Diagnostic {
	return append(ds, Diagnostic{Level: Error, Message: fmt.Sprintf(format, args...)})
}

// Warnf appends a formatted Warning-level diagnostic.
func Warnf(ds []Diagnostic, format string, args ...any) []Diagnostic {
	return append(ds, Diagnostic{Level: Warning, Message: fmt.Sprintf(format, args...)})
}

// Infof appends a formatted Info-level diagnostic.
func Infof(ds []Diagnostic, format string, args ...any) []Diagnostic {
	return append(ds, Diagnostic{Level: Info, Message: fmt.Sprintf(format, args...)})
}
