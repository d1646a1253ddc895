package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"os"

	atomicfile "github.com/natefinch/atomic"
)

// Sink commits a file's updated content somewhere: the original path (in
// place or atomically), stdout, or nowhere at all (a dry run).
type Sink interface {
	Write(path string, content []byte, mode os.FileMode) error
}

// NullSink discards content; backs dry-run and "would change" reporting.
type NullSink struct{}

// Write implements Sink.
func (NullSink) Write(string, []byte, os.FileMode) error { return nil }

// StdoutSink writes every file's content to w, prefixed by nothing — used
// by "topmark fix --stdout" to stream rewritten files without touching
// disk.
type StdoutSink struct {
	W io.Writer
}

// Write implements Sink.
func (s StdoutSink) Write(_ string, content []byte, _ os.FileMode) error {
	_, err := s.W.Write(content)
	return err
}

// InplaceFileSink truncates and rewrites path directly — faster than
// AtomicFileSink but leaves a torn file on a crash mid-write.
type InplaceFileSink struct{}

// Write implements Sink.
func (InplaceFileSink) Write(path string, content []byte, mode os.FileMode) error {
	if err := os.WriteFile(path, content, mode); err != nil {
		return fmt.Errorf("inplace write %s: %w", path, err)
	}
	return nil
}

// AtomicFileSink commits via a hidden temp file in the same directory,
// fsynced and renamed over path — the default WriteStrategy, never
// leaving a partially-written file visible under the original name.
type AtomicFileSink struct{}

// Write implements Sink.
func (AtomicFileSink) Write(path string, content []byte, mode os.FileMode) error {
	if err := atomicfile.WriteFile(path, bytes.NewReader(content)); err != nil {
		return fmt.Errorf("atomic write %s: %w", path, err)
	}
	return os.Chmod(path, mode)
}
