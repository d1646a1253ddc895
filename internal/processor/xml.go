package processor

import (
	"regexp"
	"strings"

	"github.com/topmark-tools/topmark/internal/filetype"
)

// xmlPrologRe matches a leading "<?xml ... ?>" declaration.
var xmlPrologRe = regexp.MustCompile(`(?s)^<\?xml\b.*?\?>`)

// xmlDoctypeRe matches a leading "<!DOCTYPE ...>" block, including a
// multi-line internal subset delimited by "[" ... "]".
var xmlDoctypeRe = regexp.MustCompile(`(?is)^<!DOCTYPE(\s+[^\[>]*(\[.*?\])?)?\s*>`)

// XMLProcessor implements the XML/HTML char-offset family: placement is
// computed as a byte offset after any BOM, leading whitespace, XML
// prolog, and DOCTYPE, rather than a line index. Scanning
// an already-inserted header reuses the block-comment family's line-based
// logic with "<!--"/"-->" wrappers, since once inserted the header is an
// ordinary HTML comment.
type XMLProcessor struct {
	block BlockCommentProcessor
}

// NewXMLProcessor returns an XMLProcessor rendering headers as HTML
// comments ("<!-- ... -->").
func NewXMLProcessor() *XMLProcessor {
	return &XMLProcessor{block: BlockCommentProcessor{BlockPrefix: "<!--", BlockSuffix: "-->"}}
}

var _ Processor = (*XMLProcessor)(nil)

// Family implements Processor.
func (p *XMLProcessor) Family() Family { return XMLCharOffset }

// CommentWrap implements Processor.
func (p *XMLProcessor) CommentWrap(inner []string, headerIndent string) []string {
	return p.block.CommentWrap(inner, headerIndent)
}

// InsertionLineIndex implements Processor; the XML family is anchored by
// character offset, so this always returns NoLineAnchor.
func (p *XMLProcessor) InsertionLineIndex([]string, filetype.HeaderPolicy) int {
	return NoLineAnchor
}

// InsertionCharOffset implements Processor: returns the byte offset right
// after any leading BOM, ASCII whitespace, XML prolog, and DOCTYPE.
func (p *XMLProcessor) InsertionCharOffset(text string, _ filetype.HeaderPolicy) (int, bool) {
	offset, _ := p.declarationEnd(text)
	return offset, true
}

// declarationEnd returns the byte offset right after any leading BOM, ASCII
// whitespace, XML prolog, and DOCTYPE (each declaration together with the
// ASCII whitespace that follows it), and whether a prolog or DOCTYPE was
// actually present (as opposed to the offset being produced by leading
// whitespace alone).
func (p *XMLProcessor) declarationEnd(text string) (offset int, declared bool) {
	s := text

	const bom = "\xEF\xBB\xBF"
	if strings.HasPrefix(s, bom) {
		offset += len(bom)
		s = s[len(bom):]
	}

	for len(s) > 0 && isXMLSpace(s[0]) {
		offset++
		s = s[1:]
	}

	if loc := xmlPrologRe.FindStringIndex(s); loc != nil {
		offset += loc[1]
		s = s[loc[1]:]
		declared = true
		for len(s) > 0 && isXMLSpace(s[0]) {
			offset++
			s = s[1:]
		}
	}

	if loc := xmlDoctypeRe.FindStringIndex(s); loc != nil {
		offset += loc[1]
		s = s[loc[1]:]
		declared = true
		for len(s) > 0 && isXMLSpace(s[0]) {
			offset++
			s = s[1:]
		}
	}

	return offset, declared
}

// isXMLSpace reports whether b is ASCII whitespace recognized between XML
// declarations.
func isXMLSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// ReflowRisk reports whether inserting a header at InsertionCharOffset's
// result would glom it onto the same physical line as a preceding XML
// prolog or DOCTYPE declaration — i.e. the declaration's end is not already
// at the start of its own line. Callers gate this on the allow_reflow
// policy: when false, the insertion should be skipped rather than risk
// splicing a header into the middle of a line.
func (p *XMLProcessor) ReflowRisk(text string) bool {
	offset, declared := p.declarationEnd(text)
	if !declared || offset == 0 || offset >= len(text) {
		return false
	}
	return text[offset-1] != '\n'
}

// ScanCandidates implements Processor by reusing the block-comment scan
// logic over the HTML comment wrapper, with the scan window centred on the
// line where the InsertionCharOffset position falls (the line after any
// prolog or DOCTYPE) rather than on line 0. No fenced-code-block guard
// applies here; that guard belongs to MarkdownProcessor.
func (p *XMLProcessor) ScanCandidates(lines []string, hp filetype.HeaderPolicy) []Span {
	offset, _ := p.declarationEnd(strings.Join(lines, ""))
	anchor, pos := 0, 0
	for anchor < len(lines) && pos+len(lines[anchor]) <= offset {
		pos += len(lines[anchor])
		anchor++
	}
	// The block scan anchors at line 0; shift its window onto anchor.
	shifted := hp
	shifted.ScanWindowBefore -= anchor
	shifted.ScanWindowAfter += anchor
	return p.block.ScanCandidates(lines, shifted)
}

// Strip implements Processor.
func (p *XMLProcessor) Strip(lines []string, span Span) []string {
	return p.block.Strip(lines, span)
}

// PayloadLines implements Processor.
func (p *XMLProcessor) PayloadLines(lines []string, span Span) []string {
	return p.block.PayloadLines(lines, span)
}

// PrologDoctypeLen returns the byte length of text's leading BOM + ASCII
// whitespace + XML prolog + DOCTYPE, i.e. InsertionCharOffset's result
// without the "ok" wrapper, for callers that already know the family.
func (p *XMLProcessor) PrologDoctypeLen(text string) int {
	n, _ := p.InsertionCharOffset(text, filetype.HeaderPolicy{})
	return n
}
