package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/topmark-tools/topmark/internal/config"
	"github.com/topmark-tools/topmark/internal/processor"
)

// render is the Renderer step: turn the Builder's expected
// field map into syntax-agnostic inner lines (directive markers, blank
// spacer, field lines), then hand them to the bound Processor for
// comment-syntax wrapping. Inner-line construction is shared across
// formats; only the field-line shape varies with Cfg.HeaderFormat.
func render(ctx *Context) {
	if ctx.Halt {
		return
	}
	if ctx.Content != ContentOK && ctx.Content != ContentEmpty {
		return
	}
	if ctx.Content == ContentEmpty && !ctx.Policy.AllowHeaderInEmptyFiles {
		return
	}

	if len(ctx.Views.Build) == 0 && !ctx.Policy.RenderEmptyHeaderNoField {
		ctx.Views.RenderLines = nil
		ctx.Views.RenderBlock = ""
		return
	}

	var inner []string
	if ctx.Cfg.HeaderFormat == config.JSON {
		inner = renderJSONInner(ctx.Views.Build)
	} else {
		inner = renderFieldInner(ctx.Cfg.HeaderFields, ctx.Views.Build, ctx.Cfg.AlignFields)
	}

	headerIndent := leadingIndent(ctx)

	var wrapped []string
	if ctx.Cfg.HeaderFormat == config.Plain {
		wrapped = make([]string, len(inner))
		for i, l := range inner {
			wrapped[i] = headerIndent + l
		}
	} else {
		wrapped = ctx.Processor.CommentWrap(inner, headerIndent)
	}

	ctx.Views.RenderLines = wrapped
	ctx.Views.RenderBlock = JoinLines(withTerminator(wrapped, ctx.NewlineStyle))
}

// renderFieldInner builds the directive-wrapped "key : value" inner lines
// for the Native/Plain formats. A blank spacer line flanks the field
// block on both sides).
func renderFieldInner(declared []string, fields map[string]string, align bool) []string {
	names := orderedFieldNames(declared, fields)

	width := 0
	if align {
		for _, n := range names {
			if len(n) > width {
				width = len(n)
			}
		}
	}

	lines := make([]string, 0, len(names)+4)
	lines = append(lines, processor.DirectiveStart, "")
	for _, n := range names {
		if align {
			lines = append(lines, fmt.Sprintf("%-*s : %s", width, n, fields[n]))
		} else {
			lines = append(lines, fmt.Sprintf("%s : %s", n, fields[n]))
		}
	}
	lines = append(lines, "", processor.DirectiveEnd)
	return lines
}

// renderJSONInner builds a single-line JSON payload between the directive
// markers, for Cfg.HeaderFormat == config.JSON.
func renderJSONInner(fields map[string]string) []string {
	b, err := json.Marshal(fields)
	if err != nil {
		// fields is always map[string]string; Marshal cannot fail here.
		b = []byte("{}")
	}
	return []string{processor.DirectiveStart, string(b), processor.DirectiveEnd}
}

// leadingIndent preserves the indentation of an already-inserted header
// being replaced in place; a freshly inserted header gets none.
func leadingIndent(ctx *Context) string {
	if !ctx.Views.HeaderFound {
		return ""
	}
	span := ctx.Views.HeaderSpan
	if span.Start < 0 || span.Start >= len(ctx.Views.Image) {
		return ""
	}
	line := ctx.Views.Image[span.Start]
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return line[:i]
}

// withTerminator appends style to every line, matching the rest of the
// file's line terminator.
func withTerminator(lines []string, style string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l + style
	}
	return out
}
