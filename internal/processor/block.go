package processor

import (
	"strings"

	"github.com/topmark-tools/topmark/internal/filetype"
)

// BlockCommentProcessor implements the block-comment family (e.g.
// "/* ... */"). The BlockPrefix/BlockSuffix sit on their own lines; each
// inner line is still wrapped with LinePrefix/LineSuffix (often "" / ""
// or " * " for a classic Javadoc-style block).
type BlockCommentProcessor struct {
	BlockPrefix string
	BlockSuffix string
	LinePrefix  string
	LineSuffix  string
	LineIndent  string
}

var _ Processor = (*BlockCommentProcessor)(nil)

// Family implements Processor.
func (p *BlockCommentProcessor) Family() Family { return BlockComment }

// CommentWrap implements Processor.
func (p *BlockCommentProcessor) CommentWrap(inner []string, headerIndent string) []string {
	out := make([]string, 0, len(inner)+2)
	if p.BlockPrefix != "" {
		out = append(out, headerIndent+p.BlockPrefix)
	}
	for _, line := range inner {
		out = append(out, wrapLine(line, p.LinePrefix, p.LineSuffix, p.LineIndent, headerIndent))
	}
	if p.BlockSuffix != "" {
		out = append(out, headerIndent+p.BlockSuffix)
	}
	return out
}

// InsertionLineIndex implements Processor. Block-comment FileTypes rarely
// support shebangs; when they do, a leading shebang line is skipped.
// Encoding lines and blank lines are not skipped by this family.
func (p *BlockCommentProcessor) InsertionLineIndex(lines []string, hp filetype.HeaderPolicy) int {
	idx := 0
	if hp.SupportsShebang && len(lines) > 0 && strings.HasPrefix(lines[0], "#!") {
		idx = 1
	}
	return idx
}

// InsertionCharOffset implements Processor; unused by this family.
func (p *BlockCommentProcessor) InsertionCharOffset(string, filetype.HeaderPolicy) (int, bool) {
	return 0, false
}

// ScanCandidates implements Processor. The scanner tolerates directive
// lines that appear without the inner LinePrefix: a line
// equal to the directive after stripping LinePrefix/LineSuffix OR after
// stripping nothing at all both count. When the directive lines are
// tightly wrapped by BlockPrefix/BlockSuffix (only blank lines between),
// the span expands to include the wrapper lines.
func (p *BlockCommentProcessor) ScanCandidates(lines []string, hp filetype.HeaderPolicy) []Span {
	anchor := p.InsertionLineIndex(lines, hp)
	var spans []Span
	for i := 0; i < len(lines); i++ {
		if !p.isDirective(lines[i], DirectiveStart) {
			continue
		}
		for j := i + 1; j < len(lines); j++ {
			if p.isDirective(lines[j], DirectiveEnd) {
				start, end := p.expandToBlockWrapper(lines, i, j)
				if withinWindow(start, anchor, hp.ScanWindowBefore, hp.ScanWindowAfter) {
					spans = append(spans, Span{Start: start, End: end})
				}
				break
			}
		}
	}
	return spans
}

func (p *BlockCommentProcessor) isDirective(line, want string) bool {
	if isDirectiveLine(line, p.LinePrefix, p.LineSuffix, want) {
		return true
	}
	return strings.TrimSpace(strings.TrimRight(line, "\r\n")) == want
}

// expandToBlockWrapper widens [start,end] to cover an immediately
// preceding BlockPrefix line and immediately following BlockSuffix line,
// tolerating only blank lines in between.
func (p *BlockCommentProcessor) expandToBlockWrapper(lines []string, start, end int) (int, int) {
	newStart, newEnd := start, end
	if p.BlockPrefix != "" {
		i := start - 1
		for i >= 0 && strings.TrimSpace(lines[i]) == "" {
			i--
		}
		if i >= 0 && strings.TrimSpace(strings.TrimRight(lines[i], "\r\n")) == p.BlockPrefix {
			newStart = i
		}
	}
	if p.BlockSuffix != "" {
		j := end + 1
		for j < len(lines) && strings.TrimSpace(lines[j]) == "" {
			j++
		}
		if j < len(lines) && strings.TrimSpace(strings.TrimRight(lines[j], "\r\n")) == p.BlockSuffix {
			newEnd = j
		}
	}
	return newStart, newEnd
}

// Strip implements Processor.
func (p *BlockCommentProcessor) Strip(lines []string, span Span) []string {
	out := make([]string, 0, len(lines)-span.Len())
	out = append(out, lines[:span.Start]...)
	out = append(out, lines[span.End+1:]...)
	return out
}

// PayloadLines implements Processor. span may have been widened by
// expandToBlockWrapper to include the BlockPrefix/BlockSuffix lines, so
// the directive lines are relocated within the span rather than assumed
// to sit at span.Start/span.End.
func (p *BlockCommentProcessor) PayloadLines(lines []string, span Span) []string {
	dStart, dEnd := -1, -1
	for i := span.Start; i <= span.End; i++ {
		if p.isDirective(lines[i], DirectiveStart) {
			dStart = i
			break
		}
	}
	if dStart < 0 {
		return nil
	}
	for j := dStart + 1; j <= span.End; j++ {
		if p.isDirective(lines[j], DirectiveEnd) {
			dEnd = j
			break
		}
	}
	if dEnd < 0 || dEnd <= dStart+1 {
		return nil
	}
	out := make([]string, 0, dEnd-dStart-1)
	for i := dStart + 1; i < dEnd; i++ {
		out = append(out, stripAffixes(lines[i], p.LinePrefix, p.LineSuffix))
	}
	return out
}
