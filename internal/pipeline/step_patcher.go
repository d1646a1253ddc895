package pipeline

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// diffLabel formats a path the way conventional unified-diff tooling
// (git diff, patch -p1) expects its a/ and b/ labels.
func diffLabel(prefix, path string) string { return prefix + "/" + path }

// patch is the Patcher step: render a unified diff between
// the original and updated file images, byte-for-byte including line
// terminators, for "topmark diff" and for the change summary check/fix
// print alongside each file's outcome.
func patch(ctx *Context) {
	if ctx.Halt {
		return
	}
	switch ctx.Intent {
	case IntentInserted, IntentReplaced, IntentRemoved:
	default:
		return
	}

	diff := difflib.UnifiedDiff{
		A:        ctx.Views.Image,
		B:        ctx.Views.UpdatedLines,
		FromFile: diffLabel("a", ctx.Path),
		ToFile:   diffLabel("b", ctx.Path),
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		ctx.errorf("%s: %v", ctx.Path, fmt.Errorf("diff: %w", err))
		return
	}
	ctx.Views.Diff = text
}
