package pipeline

import "os"

const defaultFileMode = 0o644

// write is the Writer step: commit Views.UpdatedLines
// through the configured Sink. It is the only step allowed to touch the
// filesystem for output; a dry run returns before reaching the Sink, and a
// "--stdout" run uses a Sink that never touches disk.
func write(ctx *Context, sink Sink) {
	if ctx.Halt {
		return
	}
	switch ctx.Intent {
	case IntentInserted, IntentReplaced, IntentRemoved:
	default:
		return
	}
	if !ctx.Cfg.ApplyChanges || ctx.DryRun {
		ctx.Write = WriteNotAttempted
		return
	}

	mode := os.FileMode(defaultFileMode)
	if info, err := os.Stat(ctx.Path); err == nil {
		mode = info.Mode().Perm()
	}

	content := []byte(finalText(ctx))
	if err := sink.Write(ctx.Path, content, mode); err != nil {
		ctx.Write = WriteFailed
		ctx.errorf("%s: %v", ctx.Path, err)
		ctx.HaltWith("writer: write failed")
		return
	}
	ctx.Write = WriteOK
}

// finalText joins Views.UpdatedLines and re-attaches a leading BOM iff
// the original file had one and the first content line is not a shebang.
func finalText(ctx *Context) string {
	text := JoinLines(ctx.Views.UpdatedLines)
	if ctx.LeadingBOM && !ctx.HasShebang {
		text = "\xEF\xBB\xBF" + text
	}
	return text
}
