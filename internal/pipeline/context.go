// Package pipeline implements TopMark's core: the per-file processing
// pipeline — Resolver, Sniffer, Reader, Scanner, Builder, Renderer,
// Comparer, Stripper, Planner, Patcher, Writer — driven by a Runner,
// sharing a mutable ProcessingContext per file. Steps gate themselves on
// prior statuses; any step may request a terminal halt.
package pipeline

import (
	"github.com/topmark-tools/topmark/internal/config"
	"github.com/topmark-tools/topmark/internal/diagnostics"
	"github.com/topmark-tools/topmark/internal/filetype"
	"github.com/topmark-tools/topmark/internal/policy"
	"github.com/topmark-tools/topmark/internal/processor"
)

// ResolveStatus is the outcome of the Resolver step.
type ResolveStatus int

const (
	ResolveUnresolved ResolveStatus = iota
	Resolved
	TypeResolvedHeadersUnsupported
	TypeResolvedNoProcessorRegistered
	Unsupported
)

// ContentStatus is the outcome of the Sniffer/Reader steps.
type ContentStatus int

const (
	ContentPending ContentStatus = iota
	ContentOK
	ContentNotFound
	ContentNoReadPermission
	ContentEmpty
	ContentBinary
	ContentUnicodeDecodeError
	ContentSkippedMixedLineEndings
	ContentSkippedPolicyBOMBeforeShebang
)

// HeaderStatus is the outcome of the Scanner step.
type HeaderStatus int

const (
	HeaderMissing HeaderStatus = iota
	HeaderDetected
	HeaderEmpty
	HeaderMalformed
	HeaderMalformedAllFields
	HeaderMalformedSomeFields
)

// CompareStatus is the outcome of the Comparer step.
type CompareStatus int

const (
	ComparePending CompareStatus = iota
	CompareUnchanged
	CompareChanged
	CompareSkipped
)

// Intent is the Planner's decided action.
type Intent int

const (
	IntentNone Intent = iota
	IntentInserted
	IntentReplaced
	IntentRemoved
	IntentSkippedUnchanged
	IntentSkippedReflow
	IntentSkippedPolicy
	IntentFailed
)

func (i Intent) String() string {
	switch i {
	case IntentInserted:
		return "INSERTED"
	case IntentReplaced:
		return "REPLACED"
	case IntentRemoved:
		return "REMOVED"
	case IntentSkippedUnchanged:
		return "SKIPPED_UNCHANGED"
	case IntentSkippedReflow:
		return "SKIPPED_REFLOW"
	case IntentSkippedPolicy:
		return "SKIPPED_POLICY"
	case IntentFailed:
		return "FAILED"
	default:
		return "NONE"
	}
}

// WriteStatus is the outcome of the Writer step.
type WriteStatus int

const (
	WriteNotAttempted WriteStatus = iota
	WriteOK
	WriteFailed
	WriteSkippedPolicy
)

// Views bundles the heavy, derived-artifact caches a ProcessingContext
// accumulates as it flows through the pipeline.
type Views struct {
	Image []string // original lines, keepends

	HeaderFound   bool
	HeaderSpan    processor.Span
	HeaderLines   []string
	HeaderBlock   string
	HeaderMapping map[string]string

	Build map[string]string // expected field map

	RenderLines []string // expected header, comment-wrapped, no outer spacing
	RenderBlock string

	UpdatedLines []string // post-change lines (insert/replace/remove applied)

	Diff string
}

// Release drops the heaviest cached artifacts, for callers that want to
// free memory after a file completes.
func (v *Views) Release() {
	v.Image = nil
	v.HeaderLines = nil
	v.UpdatedLines = nil
	v.Diff = ""
}

// Context is the per-file mutable state threaded through the pipeline. A
// Context is never shared across files or goroutines.
type Context struct {
	Path   string
	Cfg    config.Config
	Policy policy.Policy

	FileType  *filetype.FileType
	Processor processor.Processor

	Resolve ResolveStatus
	Content ContentStatus
	Header  HeaderStatus
	Compare CompareStatus
	Intent  Intent
	Write   WriteStatus

	LeadingBOM      bool
	HasShebang      bool
	NewlineHist     map[string]int
	DominantNewline string
	DominanceRatio  float64
	MixedNewlines   bool
	NewlineStyle    string
	EndsWithNewline bool

	PreInsertOK     bool
	PreInsertReason string

	Diagnostics []diagnostics.Diagnostic

	Halt       bool
	HaltReason string

	DryRun bool

	Views Views
}

// NewContext returns a fresh Context for path.
func NewContext(path string, cfg config.Config, dryRun bool) *Context {
	return &Context{Path: path, Cfg: cfg, DryRun: dryRun}
}

// HaltWith sets the terminal halt flag with a reason; steps after the
// current one are skipped by the Runner.
func (c *Context) HaltWith(reason string) {
	c.Halt = true
	c.HaltReason = reason
}

func (c *Context) errorf(format string, args ...any) {
	c.Diagnostics = diagnostics.Errorf(c.Diagnostics, format, args...)
}

func (c *Context) warnf(format string, args ...any) {
	c.Diagnostics = diagnostics.Warnf(c.Diagnostics, format, args...)
}

func (c *Context) infof(format string, args ...any) {
	c.Diagnostics = diagnostics.Infof(c.Diagnostics, format, args...)
}

// Outcome computes the aggregate Outcome from the context's final
// statuses.
func (c *Context) Outcome() diagnostics.Outcome {
	if c.Write == WriteFailed || hardError(c.Content) || c.Resolve == Unsupported && c.Intent == IntentFailed {
		return diagnostics.ErrorOutcome
	}
	switch c.Intent {
	case IntentInserted, IntentReplaced, IntentRemoved:
		if c.DryRun {
			return diagnostics.WouldChange
		}
		if c.Write == WriteOK {
			return diagnostics.Changed
		}
		return diagnostics.ErrorOutcome
	case IntentFailed:
		return diagnostics.ErrorOutcome
	default:
		return diagnostics.Unchanged
	}
}

func hardError(cs ContentStatus) bool {
	switch cs {
	case ContentNotFound, ContentNoReadPermission, ContentUnicodeDecodeError:
		return true
	default:
		return false
	}
}

// Report converts the context into a diagnostics.FileReport.
func (c *Context) Report() diagnostics.FileReport {
	return diagnostics.FileReport{
		Path:        c.Path,
		Outcome:     c.Outcome(),
		Diagnostics: c.Diagnostics,
		Diff:        c.Views.Diff,
		Written:     c.Write == WriteOK,
	}
}
