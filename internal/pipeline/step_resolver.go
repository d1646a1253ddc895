package pipeline

import (
	"os"

	"github.com/topmark-tools/topmark/internal/filetype"
	"github.com/topmark-tools/topmark/internal/policy"
	"github.com/topmark-tools/topmark/internal/processor"
)

const resolverSampleSize = 512

// resolve is the Resolver step: select a FileType and its
// bound Processor for ctx.Path, and resolve the effective Policy for that
// type. Content matchers get their own small peek read, independent of
// the Sniffer step that follows — real content matchers are expected to
// be cheap, and their errors are swallowed as non-match.
func resolve(ctx *Context, types *filetype.Registry, procs *processor.Registry) {
	sample := peek(ctx.Path, resolverSampleSize)

	ft, _, _ := types.Resolve(ctx.Path, sample)
	if ft == nil {
		ctx.Resolve = Unsupported
		ctx.infof("%s: no matching file type", ctx.Path)
		ctx.HaltWith("resolver: unsupported file type")
		return
	}
	ctx.FileType = ft

	if ft.SkipProcessing {
		ctx.Resolve = TypeResolvedHeadersUnsupported
		ctx.infof("%s: recognized as %s but header processing is disabled for this type", ctx.Path, ft.Name)
		ctx.HaltWith("resolver: headers unsupported for type")
		return
	}

	proc, ok := procs.Lookup(ft.Name)
	if !ok {
		ctx.Resolve = TypeResolvedNoProcessorRegistered
		ctx.warnf("%s: file type %q matched but no processor is registered", ctx.Path, ft.Name)
		ctx.HaltWith("resolver: no processor registered")
		return
	}
	ctx.Processor = proc

	typeOverlay := policy.MutablePolicy{}
	for _, to := range ctx.Cfg.TypeOverlays {
		if to.TypeName == ft.Name {
			typeOverlay = to.Overlay
			break
		}
	}
	combined := policy.LayerOverlay(typeOverlay, ft.PolicyOverlay)

	p, err := policy.Resolve(ctx.Cfg.GlobalPolicy, combined)
	if err != nil {
		ctx.errorf("%s: %v", ctx.Path, err)
		ctx.HaltWith("resolver: illegal policy")
		ctx.Intent = IntentFailed
		return
	}
	ctx.Policy = p

	ctx.Resolve = Resolved
}

// peek reads up to n bytes from path, returning nil on any error (e.g.
// the file doesn't exist yet in a dry scan) rather than propagating it —
// the Sniffer step is the canonical place existence/permission errors
// surface.
func peek(path string, n int) []byte {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	buf := make([]byte, n)
	read, _ := f.Read(buf)
	return buf[:read]
}
