package pipeline

// strip is the Stripper step: unconditionally remove a
// detected header, independent of any rendered-field comparison. It backs
// the "topmark strip" command path, which runs Resolver/Sniffer/Reader/
// Scanner/Stripper — skipping Builder/Renderer/Comparer/Planner entirely,
// since there is nothing to compare against.
func strip(ctx *Context) {
	if ctx.Halt {
		return
	}
	if ctx.Content != ContentOK {
		return
	}
	if !ctx.Views.HeaderFound {
		ctx.Intent = IntentNone
		return
	}
	if ctx.Policy.AddOnly {
		ctx.Intent = IntentSkippedPolicy
		ctx.infof("%s: add_only forbids strip", ctx.Path)
		return
	}
	ctx.Views.UpdatedLines = stripHeader(ctx)
	ctx.Intent = IntentRemoved
}

// stripHeader removes the header at Views.HeaderSpan via the processor,
// then applies the two blank-line cleanups the processors deliberately
// leave to this step: trimming exactly one leading blank line when the
// header sat at the very top of the file, and collapsing exactly one
// trailing spacer line that EnsureBlankAfterHeader would have introduced
// after it.
func stripHeader(ctx *Context) []string {
	span := ctx.Views.HeaderSpan
	out := ctx.Processor.Strip(ctx.Views.Image, span)

	if span.Start == 0 && len(out) > 0 && isBlankLine(out[0]) {
		out = out[1:]
	}

	if ctx.FileType.Header.EnsureBlankAfterHeader && span.Start < len(out) && isBlankLine(out[span.Start]) {
		out = append(out[:span.Start], out[span.Start+1:]...)
	}

	return out
}
