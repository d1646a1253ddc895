package pipeline

import (
	"os"
	"strings"
)

// read is the Reader step: decodes the file to lines with
// keepends, consults policy for the Sniffer's soft states (mixed newlines,
// BOM-before-shebang), and strips a leading BOM in memory. The Reader
// never mutates the file on disk.
func read(ctx *Context) {
	if ctx.Halt {
		return
	}

	if ctx.Content == ContentEmpty {
		ctx.Views.Image = []string{}
		ctx.NewlineStyle = ctx.Cfg.DefaultNewline
		ctx.EndsWithNewline = false
		return
	}

	if ctx.MixedNewlines && !ctx.Policy.IgnoreMixedLineEndings {
		ctx.Content = ContentSkippedMixedLineEndings
		ctx.warnf("%s: mixed line endings (%v); skipped by policy", ctx.Path, ctx.NewlineHist)
		ctx.HaltWith("reader: mixed line endings")
		return
	}
	if ctx.LeadingBOM && ctx.HasShebang && !ctx.Policy.IgnoreBOMBeforeShebang {
		ctx.Content = ContentSkippedPolicyBOMBeforeShebang
		ctx.warnf("%s: BOM precedes shebang; skipped by policy", ctx.Path)
		ctx.HaltWith("reader: bom before shebang")
		return
	}

	data, err := os.ReadFile(ctx.Path)
	if err != nil {
		ctx.Content = ContentNoReadPermission
		ctx.errorf("%s: %v", ctx.Path, err)
		ctx.HaltWith("reader: read failed")
		return
	}

	text := string(data)
	if ctx.LeadingBOM {
		text = strings.TrimPrefix(text, "\xEF\xBB\xBF")
	}
	if text == "" {
		// A file containing only a BOM is treated as empty.
		ctx.Content = ContentEmpty
		ctx.Views.Image = []string{}
		ctx.NewlineStyle = ctx.Cfg.DefaultNewline
		ctx.EndsWithNewline = false
		return
	}

	lines := SplitKeepEnds(text)
	ctx.Views.Image = lines

	_, term := StripTerminator(lines[len(lines)-1])
	ctx.EndsWithNewline = term != ""

	if ctx.DominantNewline != "" {
		ctx.NewlineStyle = ctx.DominantNewline
	} else {
		ctx.NewlineStyle = ctx.Cfg.DefaultNewline
	}

	ctx.Content = ContentOK
}
