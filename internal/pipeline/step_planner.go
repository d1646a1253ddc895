package pipeline

import "github.com/topmark-tools/topmark/internal/processor"

// plan is the Planner step: turn the Comparer's verdict
// into a concrete Intent, respecting AddOnly/UpdateOnly and a FileType's
// PreInsertCheck, and materialize Views.UpdatedLines for that Intent. It
// is the alternative to the Stripper step — "topmark check"/"fix"/"diff"
// drive the pipeline through Planner; "topmark strip" drives it through
// Stripper instead.
func plan(ctx *Context) {
	if ctx.Halt {
		return
	}
	if ctx.Content != ContentOK && ctx.Content != ContentEmpty {
		return
	}

	hasExpected := len(ctx.Views.RenderLines) > 0

	switch {
	case !ctx.Views.HeaderFound && !hasExpected:
		ctx.Intent = IntentNone

	case !ctx.Views.HeaderFound && hasExpected:
		if ctx.Policy.UpdateOnly {
			ctx.Intent = IntentSkippedPolicy
			ctx.infof("%s: header missing but update_only forbids insertion", ctx.Path)
			return
		}
		if ctx.FileType.PreInsertCheck != nil {
			if ok, reason := ctx.FileType.PreInsertCheck(ctx.Views.Image); !ok {
				ctx.Intent = IntentSkippedPolicy
				ctx.infof("%s: insertion refused: %s", ctx.Path, reason)
				return
			}
		}
		lines, skippedReflow := insertHeader(ctx)
		if skippedReflow {
			ctx.Intent = IntentSkippedReflow
			ctx.infof("%s: insertion would reflow a physical line; allow_reflow is false", ctx.Path)
			return
		}
		ctx.Views.UpdatedLines = lines
		ctx.Intent = IntentInserted

	case ctx.Views.HeaderFound && !hasExpected:
		if ctx.Policy.AddOnly {
			ctx.Intent = IntentSkippedPolicy
			ctx.infof("%s: header present but add_only forbids removal", ctx.Path)
			return
		}
		ctx.Views.UpdatedLines = stripHeader(ctx)
		ctx.Intent = IntentRemoved

	default: // HeaderFound && hasExpected
		if ctx.Compare == CompareUnchanged {
			ctx.Intent = IntentSkippedUnchanged
			return
		}
		if ctx.Policy.AddOnly {
			ctx.Intent = IntentSkippedPolicy
			ctx.infof("%s: header differs but add_only forbids replacement", ctx.Path)
			return
		}
		ctx.Views.UpdatedLines = replaceHeader(ctx)
		ctx.Intent = IntentReplaced
	}
}

// reflowRiskDetector is implemented by char-offset processors (XML/HTML)
// whose insertion point can land mid-line, after a prolog or DOCTYPE
// declaration that isn't already followed by a line break.
type reflowRiskDetector interface {
	ReflowRisk(text string) bool
}

// insertHeader materializes Views.UpdatedLines with a freshly rendered
// header inserted at the processor's anchor point. skippedReflow is true
// when the char-offset family's insertion point would glom the header onto
// the same physical line as a preceding declaration and allow_reflow is
// false; callers must not use lines in that case.
func insertHeader(ctx *Context) (lines []string, skippedReflow bool) {
	hp := ctx.FileType.Header
	block := withTerminator(ctx.Views.RenderLines, ctx.NewlineStyle)

	if idx := ctx.Processor.InsertionLineIndex(ctx.Views.Image, hp); idx != processor.NoLineAnchor {
		if hp.PreHeaderBlankAfterBlock && idx > 0 && !isBlankLine(ctx.Views.Image[idx-1]) {
			block = append([]string{ctx.NewlineStyle}, block...)
		}
		return spliceLines(ctx.Views.Image, idx, block, hp.EnsureBlankAfterHeader, ctx.NewlineStyle), false
	}

	text := JoinLines(ctx.Views.Image)
	offset, _ := ctx.Processor.InsertionCharOffset(text, hp)

	if rd, ok := ctx.Processor.(reflowRiskDetector); ok && rd.ReflowRisk(text) {
		if !ctx.Policy.AllowReflow {
			return nil, true
		}
		block = append([]string{ctx.NewlineStyle}, block...)
	}

	blockText := JoinLines(block)
	if hp.EnsureBlankAfterHeader && !startsWithBlankLine(ctx.Views.Image, charOffsetToLineIndex(ctx.Views.Image, offset)) {
		blockText += ctx.NewlineStyle
	}
	newText := text[:offset] + blockText + text[offset:]
	return SplitKeepEnds(newText), false
}

// replaceHeader materializes Views.UpdatedLines with the existing header
// span swapped for the freshly rendered one.
func replaceHeader(ctx *Context) []string {
	block := withTerminator(ctx.Views.RenderLines, ctx.NewlineStyle)
	span := ctx.Views.HeaderSpan
	if span.End == len(ctx.Views.Image)-1 && !ctx.EndsWithNewline && len(block) > 0 {
		last := len(block) - 1
		content, _ := StripTerminator(block[last])
		block[last] = content
	}
	out := make([]string, 0, len(ctx.Views.Image)-span.Len()+len(block))
	out = append(out, ctx.Views.Image[:span.Start]...)
	out = append(out, block...)
	out = append(out, ctx.Views.Image[span.End+1:]...)
	return out
}

// spliceLines inserts block at line index idx, adding a blank spacer line
// after it when ensureBlank is set and one isn't already present.
func spliceLines(lines []string, idx int, block []string, ensureBlank bool, style string) []string {
	out := make([]string, 0, len(lines)+len(block)+1)
	out = append(out, lines[:idx]...)
	out = append(out, block...)
	if ensureBlank && !(idx < len(lines) && isBlankLine(lines[idx])) {
		out = append(out, style)
	}
	out = append(out, lines[idx:]...)
	return out
}

func isBlankLine(line string) bool {
	content, _ := StripTerminator(line)
	return content == ""
}

func startsWithBlankLine(lines []string, idx int) bool {
	return idx < len(lines) && isBlankLine(lines[idx])
}

// charOffsetToLineIndex maps a byte offset back to the index of the line
// it falls at the start of (used only to check for an existing blank
// spacer line right after an XML-family insertion point).
func charOffsetToLineIndex(lines []string, offset int) int {
	pos := 0
	for i, l := range lines {
		if pos == offset {
			return i
		}
		pos += len(l)
	}
	return len(lines)
}
