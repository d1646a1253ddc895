package processor

import (
	"strings"

	"github.com/topmark-tools/topmark/internal/filetype"
)

// MarkdownProcessor renders headers as HTML comments ("<!-- ... -->") like
// XMLProcessor, but additionally refuses to recognize a directive-shaped
// line as a header boundary when it falls inside a fenced code block.
type MarkdownProcessor struct {
	block BlockCommentProcessor
}

// NewMarkdownProcessor returns a MarkdownProcessor.
func NewMarkdownProcessor() *MarkdownProcessor {
	return &MarkdownProcessor{block: BlockCommentProcessor{BlockPrefix: "<!--", BlockSuffix: "-->"}}
}

var _ Processor = (*MarkdownProcessor)(nil)

// Family implements Processor.
func (p *MarkdownProcessor) Family() Family { return BlockComment }

// CommentWrap implements Processor.
func (p *MarkdownProcessor) CommentWrap(inner []string, headerIndent string) []string {
	return p.block.CommentWrap(inner, headerIndent)
}

// InsertionLineIndex implements Processor: Markdown headers are inserted
// at the very top of the file; shebangs are not a Markdown concept.
func (p *MarkdownProcessor) InsertionLineIndex(lines []string, hp filetype.HeaderPolicy) int {
	return p.block.InsertionLineIndex(lines, hp)
}

// InsertionCharOffset implements Processor; unused by this family.
func (p *MarkdownProcessor) InsertionCharOffset(string, filetype.HeaderPolicy) (int, bool) {
	return 0, false
}

// ScanCandidates implements Processor, rejecting spans whose start line
// lies inside an open fenced code block.
func (p *MarkdownProcessor) ScanCandidates(lines []string, hp filetype.HeaderPolicy) []Span {
	fenced := fencedLines(lines)
	candidates := p.block.ScanCandidates(lines, hp)
	out := candidates[:0]
	for _, c := range candidates {
		if !fenced[c.Start] {
			out = append(out, c)
		}
	}
	return out
}

// Strip implements Processor.
func (p *MarkdownProcessor) Strip(lines []string, span Span) []string {
	return p.block.Strip(lines, span)
}

// PayloadLines implements Processor.
func (p *MarkdownProcessor) PayloadLines(lines []string, span Span) []string {
	return p.block.PayloadLines(lines, span)
}

// fencedLines marks each line index that falls inside an open ``` or ~~~
// fenced code block, using a simple odd/even toggle (nested or
// language-aware fence parsing is intentionally out of scope).
func fencedLines(lines []string) []bool {
	marks := make([]bool, len(lines))
	open := false
	for i, line := range lines {
		t := strings.TrimSpace(line)
		isFence := strings.HasPrefix(t, "```") || strings.HasPrefix(t, "~~~")
		if isFence {
			marks[i] = open
			open = !open
			continue
		}
		marks[i] = open
	}
	return marks
}
