package pipeline

import (
	"strings"

	"github.com/topmark-tools/topmark/internal/processor"
)

// scan is the Scanner step: locate an existing header's
// bounds using the bound Processor, then parse its payload into a field
// map. The first candidate (in file order) within the processor's scan
// window wins; anything outside the window is left alone (it's not "this
// file's header").
func scan(ctx *Context) {
	if ctx.Halt {
		return
	}
	if ctx.Content != ContentOK {
		ctx.Header = HeaderMissing
		return
	}

	candidates := ctx.Processor.ScanCandidates(ctx.Views.Image, ctx.FileType.Header)
	if len(candidates) == 0 {
		ctx.Header = HeaderMissing
		return
	}

	span := candidates[0]
	ctx.Views.HeaderFound = true
	ctx.Views.HeaderSpan = span
	ctx.Views.HeaderLines = append([]string(nil), ctx.Views.Image[span.Start:span.End+1]...)
	ctx.Views.HeaderBlock = JoinLines(ctx.Views.HeaderLines)

	payload := ctx.Processor.PayloadLines(ctx.Views.Image, span)
	if len(payload) == 0 {
		ctx.Header = HeaderEmpty
		ctx.Views.HeaderMapping = map[string]string{}
		return
	}

	mapping := make(map[string]string, len(payload))
	malformed := 0
	fieldLines := 0
	for _, line := range payload {
		if strings.TrimSpace(line) == "" {
			continue // blank spacer line, not a field
		}
		fieldLines++
		key, value, ok := processor.ParseFieldLine(line)
		if !ok {
			malformed++
			continue
		}
		mapping[key] = value
	}
	ctx.Views.HeaderMapping = mapping

	switch {
	case fieldLines == 0:
		ctx.Header = HeaderEmpty
	case len(mapping) == 0:
		ctx.Header = HeaderMalformedAllFields
	case malformed == 0:
		ctx.Header = HeaderDetected
	case malformed == fieldLines:
		ctx.Header = HeaderMalformedAllFields
	default:
		ctx.Header = HeaderMalformedSomeFields
	}
}
