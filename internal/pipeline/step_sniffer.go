package pipeline

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"unicode/utf8"
)

const sniffSampleSize = 8192

// sniff is the Sniffer step: a cheap byte-level pre-read
// that never loads the full file image. It short-circuits on the first
// hard failure (existence/permission, binary content, undecodable UTF-8)
// and otherwise records the facts (BOM, shebang, newline histogram) that
// later steps gate on.
func sniff(ctx *Context) {
	if ctx.Halt {
		return
	}
	info, err := os.Stat(ctx.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			ctx.Content = ContentNotFound
		} else if errors.Is(err, fs.ErrPermission) {
			ctx.Content = ContentNoReadPermission
		} else {
			ctx.Content = ContentNotFound
		}
		ctx.errorf("%s: %v", ctx.Path, err)
		ctx.HaltWith("sniffer: stat failed")
		return
	}
	if info.IsDir() {
		ctx.Content = ContentNotFound
		ctx.errorf("%s: is a directory", ctx.Path)
		ctx.HaltWith("sniffer: path is a directory")
		return
	}
	if info.Size() == 0 {
		ctx.Content = ContentEmpty
		ctx.NewlineStyle = ctx.Cfg.DefaultNewline
		return
	}

	f, err := os.Open(ctx.Path)
	if err != nil {
		ctx.Content = ContentNoReadPermission
		ctx.errorf("%s: %v", ctx.Path, err)
		ctx.HaltWith("sniffer: no read permission")
		return
	}
	defer f.Close()

	buf := make([]byte, sniffSampleSize)
	n, _ := f.Read(buf)
	sample := buf[:n]

	if bytes.IndexByte(sample, 0) >= 0 {
		ctx.Content = ContentBinary
		ctx.errorf("%s: binary content detected", ctx.Path)
		ctx.HaltWith("sniffer: binary")
		return
	}
	if !utf8.Valid(sample) && n < int(info.Size()) {
		// A sample cut mid-rune at the boundary is not itself evidence of
		// invalid UTF-8; only flag when the sample is the whole file.
	} else if !utf8.Valid(sample) {
		ctx.Content = ContentUnicodeDecodeError
		ctx.errorf("%s: invalid UTF-8", ctx.Path)
		ctx.HaltWith("sniffer: unicode decode error")
		return
	}

	bom := bytes.HasPrefix(sample, []byte{0xEF, 0xBB, 0xBF})
	ctx.LeadingBOM = bom
	rest := sample
	if bom {
		rest = sample[3:]
	}
	ctx.HasShebang = bytes.HasPrefix(rest, []byte("#!"))

	hist := newlineHistogram(sample)
	ctx.NewlineHist = hist
	dominant, ratio, mixed := analyzeNewlines(hist)
	ctx.DominantNewline = dominant
	ctx.DominanceRatio = ratio
	ctx.MixedNewlines = mixed

	ctx.Content = ContentOK
}
