// Package processor implements TopMark's per-family HeaderProcessors: the
// comment-syntax-aware placement, detection, rendering, and stripping
// behavior bound to a FileType. Three families are supported — line
// comment, block comment, and XML/HTML char-offset. Dispatch is via the
// Processor interface rather than an inheritance tree; families share
// helpers through free functions.
package processor

import (
	"regexp"
	"strings"

	"github.com/topmark-tools/topmark/internal/filetype"
)

// Directive constants: the exact strings a stripped, whitespace-trimmed
// header line must equal to be recognized as a boundary marker.
const (
	DirectiveStart = "topmark:header:start"
	DirectiveEnd   = "topmark:header:end"
)

// NoLineAnchor is the sentinel line index returned by InsertionLineIndex
// for processors whose placement is computed by character offset instead
// (the XML/HTML family).
const NoLineAnchor = -1

// Span is an inclusive line-index range, (start, end).
type Span struct {
	Start int
	End   int
}

// Len reports the number of lines covered by the span, inclusive.
func (s Span) Len() int { return s.End - s.Start + 1 }

// Family identifies which of the three comment-placement strategies a
// Processor implements.
type Family int

const (
	// LineComment wraps each header line with a per-line prefix/suffix
	// (e.g. "# ", "// ").
	LineComment Family = iota
	// BlockComment wraps the whole header in a block prefix/suffix
	// (e.g. "/*" ... "*/") with each inner line optionally prefixed.
	BlockComment
	// XMLCharOffset places the header inside an HTML/XML comment at a
	// byte offset computed after any prolog/DOCTYPE, rather than at a
	// fixed line index.
	XMLCharOffset
)

// Processor binds comment syntax and placement behavior to a FileType. A
// single Processor instance may be shared by many FileTypes (e.g. the same
// "#"-line processor serves Python, shell, and YAML).
type Processor interface {
	// Family reports which placement strategy this processor implements.
	Family() Family

	// CommentWrap renders inner (already-built, syntax-agnostic) lines —
	// the directive/blank/field lines a Builder/Renderer produced — into
	// final comment-syntax-wrapped lines, applying headerIndent as a
	// preserved prefix (used when replacing an already-indented header).
	CommentWrap(inner []string, headerIndent string) []string

	// InsertionLineIndex returns the line index at which a header should
	// be inserted for the line/block families. It returns NoLineAnchor
	// for the XML family, which is anchored by character offset instead.
	InsertionLineIndex(lines []string, hp filetype.HeaderPolicy) int

	// InsertionCharOffset returns the byte offset at which a header
	// should be inserted for the XML family. ok is false for the
	// line/block families, which are anchored by line index instead.
	InsertionCharOffset(text string, hp filetype.HeaderPolicy) (offset int, ok bool)

	// ScanCandidates returns the header-shaped spans in lines whose start
	// lies within the HeaderPolicy scan window around the insertion
	// anchor, in file order; the caller takes the first one.
	ScanCandidates(lines []string, hp filetype.HeaderPolicy) []Span

	// Strip removes the header at span from lines, returning the updated
	// slice. It performs only the minimal family-specific cleanup (e.g.
	// absorbing a tightly-wrapped block suffix); blank-line spacer
	// cleanup adjacent to the span is the Stripper step's job.
	Strip(lines []string, span Span) []string

	// PayloadLines returns the affix-stripped inner content lines lying
	// strictly between the start/end directive lines within span —
	// excluding the directives themselves and any block wrapper lines —
	// ready for ParseFieldLine.
	PayloadLines(lines []string, span Span) []string
}

// stripAffixes removes prefix/suffix and surrounding whitespace from a
// single line, returning the trimmed payload. The trailing/leading
// whitespace baked into prefix/suffix (there so a directive line keeps a
// single space of separation — see registry.hashLine) is trimmed off
// before matching, since a blank spacer line has that whitespace itself
// trimmed away by the renderer and would otherwise fail to match at all.
func stripAffixes(line, prefix, suffix string) string {
	s := strings.TrimRight(line, "\r\n")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, strings.TrimSpace(prefix))
	s = strings.TrimSuffix(s, strings.TrimSpace(suffix))
	return strings.TrimSpace(s)
}

// isDirectiveLine reports whether line, once affixes are stripped, equals
// want exactly.
func isDirectiveLine(line, prefix, suffix, want string) bool {
	return stripAffixes(line, prefix, suffix) == want
}

// withinWindow reports whether idx lies in [anchor-before, anchor+after].
func withinWindow(idx, anchor, before, after int) bool {
	if anchor < 0 {
		return true
	}
	return idx >= anchor-before && idx <= anchor+after
}

// ParseFieldLine splits a "key : value" payload line (affixes already
// stripped) into its key/value pair. ok is false for blank spacer lines or
// lines that don't contain the "key:value" separator.
func ParseFieldLine(payload string) (key, value string, ok bool) {
	if strings.TrimSpace(payload) == "" {
		return "", "", false
	}
	idx := strings.Index(payload, ":")
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(payload[:idx])
	value = strings.TrimSpace(payload[idx+1:])
	if key == "" {
		return "", "", false
	}
	return key, value, true
}

// defaultEncodingLineRegex matches a Python-style "coding:" declaration
// comment, the one built-in encoding-line convention TopMark recognizes
// out of the box; FileTypes may override via HeaderPolicy.EncodingLineRegex.
var defaultEncodingLineRegex = regexp.MustCompile(`coding[:=]\s*[-\w.]+`)

// DefaultEncodingLineRegex returns the shared default encoding-line
// pattern used when a FileType's HeaderPolicy leaves EncodingLineRegex nil.
func DefaultEncodingLineRegex() *regexp.Regexp { return defaultEncodingLineRegex }
