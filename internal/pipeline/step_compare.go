package pipeline

import "strings"

// compare is the Comparer step: decide whether the
// rendered header differs from what's on disk (or from nothing, if no
// header was found), so the Planner can turn that into an Intent without
// re-deriving the diff itself.
func compare(ctx *Context) {
	if ctx.Halt {
		return
	}
	if ctx.Content != ContentOK && ctx.Content != ContentEmpty {
		return
	}

	if len(ctx.Views.RenderLines) == 0 {
		// Nothing to render (empty field map and policy forbids an empty
		// header). A found header is always a change (removal candidate);
		// no header found is a no-op.
		if ctx.Views.HeaderFound {
			ctx.Compare = CompareChanged
		} else {
			ctx.Compare = CompareUnchanged
		}
		return
	}

	if !ctx.Views.HeaderFound {
		ctx.Compare = CompareChanged
		return
	}

	existing := normalizeForCompare(ctx.Views.HeaderLines)
	expected := normalizeForCompare(ctx.Views.RenderLines)
	if existing == expected {
		ctx.Compare = CompareUnchanged
		return
	}
	ctx.Compare = CompareChanged
}

// normalizeForCompare strips line terminators before comparing, so a
// line-ending-only difference (already handled by the Writer preserving
// NewlineStyle) never registers as a content change.
func normalizeForCompare(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		content, _ := StripTerminator(l)
		b.WriteString(content)
		b.WriteByte('\n')
	}
	return b.String()
}
