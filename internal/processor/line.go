package processor

import (
	"strings"

	"github.com/topmark-tools/topmark/internal/filetype"
)

// LineCommentProcessor implements the line-comment family (e.g. "# ...",
// "// ..."). Each header line is independently prefixed/suffixed.
type LineCommentProcessor struct {
	LinePrefix string
	LineSuffix string
	LineIndent string // inserted after LinePrefix, before content
}

var _ Processor = (*LineCommentProcessor)(nil)

// Family implements Processor.
func (p *LineCommentProcessor) Family() Family { return LineComment }

// CommentWrap implements Processor.
func (p *LineCommentProcessor) CommentWrap(inner []string, headerIndent string) []string {
	out := make([]string, 0, len(inner))
	for _, line := range inner {
		out = append(out, wrapLine(line, p.LinePrefix, p.LineSuffix, p.LineIndent, headerIndent))
	}
	return out
}

// wrapLine prefixes/suffixes a single inner content line. Directive lines
// (the exact start/end marker strings) are never given the extra
// LineIndent, so they sit one space after the comment prefix regardless of
// the field-line indent/alignment width.
func wrapLine(line, linePrefix, lineSuffix, lineIndent, headerIndent string) string {
	isDirective := line == DirectiveStart || line == DirectiveEnd
	var b strings.Builder
	b.WriteString(headerIndent)
	b.WriteString(linePrefix)
	if line != "" {
		if !isDirective {
			b.WriteString(lineIndent)
		}
		b.WriteString(line)
	}
	b.WriteString(lineSuffix)
	return strings.TrimRight(b.String(), " ")
}

// InsertionLineIndex implements Processor: shebang-aware. After a leading
// shebang line it skips one encoding-line comment, then consumes one
// existing blank line.
func (p *LineCommentProcessor) InsertionLineIndex(lines []string, hp filetype.HeaderPolicy) int {
	idx := 0
	if hp.SupportsShebang && len(lines) > 0 && strings.HasPrefix(lines[0], "#!") {
		idx = 1
		encRe := hp.EncodingLineRegex
		if encRe == nil {
			encRe = DefaultEncodingLineRegex()
		}
		if idx < len(lines) && encRe.MatchString(lines[idx]) {
			idx++
		}
		if idx < len(lines) && strings.TrimSpace(lines[idx]) == "" {
			idx++
		}
	}
	return idx
}

// InsertionCharOffset implements Processor; unused by this family.
func (p *LineCommentProcessor) InsertionCharOffset(string, filetype.HeaderPolicy) (int, bool) {
	return 0, false
}

// ScanCandidates implements Processor.
func (p *LineCommentProcessor) ScanCandidates(lines []string, hp filetype.HeaderPolicy) []Span {
	anchor := p.InsertionLineIndex(lines, hp)
	var spans []Span
	for i := 0; i < len(lines); i++ {
		if !isDirectiveLine(lines[i], p.LinePrefix, p.LineSuffix, DirectiveStart) {
			continue
		}
		for j := i + 1; j < len(lines); j++ {
			if isDirectiveLine(lines[j], p.LinePrefix, p.LineSuffix, DirectiveEnd) {
				if withinWindow(i, anchor, hp.ScanWindowBefore, hp.ScanWindowAfter) {
					spans = append(spans, Span{Start: i, End: j})
				}
				break
			}
		}
	}
	return spans
}

// Strip implements Processor.
func (p *LineCommentProcessor) Strip(lines []string, span Span) []string {
	out := make([]string, 0, len(lines)-span.Len())
	out = append(out, lines[:span.Start]...)
	out = append(out, lines[span.End+1:]...)
	return out
}

// PayloadLines implements Processor. The line family never wraps the
// directives in anything beyond the comment prefix/suffix, so the span
// bounds are exactly the directive lines themselves.
func (p *LineCommentProcessor) PayloadLines(lines []string, span Span) []string {
	if span.End <= span.Start+1 {
		return nil
	}
	out := make([]string, 0, span.End-span.Start-1)
	for i := span.Start + 1; i < span.End; i++ {
		out = append(out, stripAffixes(lines[i], p.LinePrefix, p.LineSuffix))
	}
	return out
}
