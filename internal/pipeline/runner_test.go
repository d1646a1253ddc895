package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/topmark-tools/topmark/internal/config"
	"github.com/topmark-tools/topmark/internal/registry"
)

// newTestPipeline wires a real AtomicFileSink (via the nil-sink default)
// rather than NullSink, since TestProcessFile_MarkdownIdempotent depends
// on the first pass's write actually landing on disk before the second
// pass rescans the file.
func newTestPipeline(t *testing.T, cfg config.Config) *Pipeline {
	t.Helper()
	types, procs := registry.Builtins()
	return NewPipeline(types, procs, cfg, nil)
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// TestProcessFile_PythonInsertion exercises inserting a header into a
// Python file with no prior header.
func TestProcessFile_PythonInsertion(t *testing.T) {
	path := writeTemp(t, "x.py", "print('hi')\n")

	cfg := config.Default()
	cfg.HeaderFields = []string{"file", "project", "license"}
	cfg.FieldValues = map[string]string{"project": "TopMark", "license": "MIT"}
	cfg.ApplyChanges = true

	pl := newTestPipeline(t, cfg)
	fc := pl.ProcessFile(path, OpCheckOrFix, false)

	if fc.Intent != IntentInserted {
		t.Fatalf("expected IntentInserted, got %v (diagnostics: %v)", fc.Intent, fc.Diagnostics)
	}

	want := "# topmark:header:start\n" +
		"#\n" +
		"#   file    : x.py\n" +
		"#   project : TopMark\n" +
		"#   license : MIT\n" +
		"#\n" +
		"# topmark:header:end\n" +
		"\n" +
		"print('hi')\n"
	got := JoinLines(fc.Views.UpdatedLines)
	if got != want {
		t.Fatalf("unexpected output:\n got: %q\nwant: %q", got, want)
	}
}

// TestProcessFile_PythonShebang exercises insertion into a Python file
// that starts with a shebang and an encoding declaration.
func TestProcessFile_PythonShebang(t *testing.T) {
	path := writeTemp(t, "y.py", "#!/usr/bin/env python3\n# coding: utf-8\nprint(1)\n")

	cfg := config.Default()
	cfg.HeaderFields = []string{"file"}
	cfg.ApplyChanges = true

	pl := newTestPipeline(t, cfg)
	fc := pl.ProcessFile(path, OpCheckOrFix, false)

	if fc.Intent != IntentInserted {
		t.Fatalf("expected IntentInserted, got %v (diagnostics: %v)", fc.Intent, fc.Diagnostics)
	}
	lines := fc.Views.UpdatedLines
	if got, _ := StripTerminator(lines[0]); got != "#!/usr/bin/env python3" {
		t.Fatalf("expected shebang at line 0, got %q", lines[0])
	}
	if got, _ := StripTerminator(lines[1]); got != "# coding: utf-8" {
		t.Fatalf("expected encoding line at 1, got %q", lines[1])
	}
	if got, _ := StripTerminator(lines[2]); got != "" {
		t.Fatalf("expected blank line at 2, got %q", lines[2])
	}
	if got, _ := StripTerminator(lines[3]); got != "# topmark:header:start" {
		t.Fatalf("expected header start at 3, got %q", lines[3])
	}
}

// TestProcessFile_MarkdownIdempotent exercises running the pipeline twice
// over the same Markdown file: the second run must be a no-op, byte for
// byte.
func TestProcessFile_MarkdownIdempotent(t *testing.T) {
	path := writeTemp(t, "README.md", "# Title\n\nBody\n")

	cfg := config.Default()
	cfg.HeaderFields = []string{"file"}
	cfg.ApplyChanges = true

	pl := newTestPipeline(t, cfg)

	first := pl.ProcessFile(path, OpCheckOrFix, false)
	if first.Intent != IntentInserted {
		t.Fatalf("first pass: expected IntentInserted, got %v", first.Intent)
	}
	if first.Write != WriteOK {
		t.Fatalf("first pass: expected WriteOK, got %v", first.Write)
	}

	second := pl.ProcessFile(path, OpCheckOrFix, false)
	if second.Intent != IntentSkippedUnchanged {
		t.Fatalf("second pass: expected IntentSkippedUnchanged, got %v (diagnostics: %v)", second.Intent, second.Diagnostics)
	}

	if !strings.Contains(JoinLines(first.Views.UpdatedLines), "<!--") {
		t.Fatalf("expected Markdown header to use HTML comment wrapper, got %q", JoinLines(first.Views.UpdatedLines))
	}
}

// TestProcessFile_StripPreservesShebang exercises stripping a header from
// a shell script without disturbing its shebang line.
func TestProcessFile_StripPreservesShebang(t *testing.T) {
	content := "#!/bin/sh\n" +
		"# topmark:header:start\n" +
		"#   file : run.sh\n" +
		"# topmark:header:end\n" +
		"echo hi\n"
	path := writeTemp(t, "run.sh", content)

	cfg := config.Default()
	cfg.ApplyChanges = true

	pl := newTestPipeline(t, cfg)
	fc := pl.ProcessFile(path, OpStrip, false)

	if fc.Intent != IntentRemoved {
		t.Fatalf("expected IntentRemoved, got %v (diagnostics: %v)", fc.Intent, fc.Diagnostics)
	}
	want := "#!/bin/sh\necho hi\n"
	got := JoinLines(fc.Views.UpdatedLines)
	if got != want {
		t.Fatalf("unexpected strip output:\n got: %q\nwant: %q", got, want)
	}
}

// TestProcessFile_CRLFRoundTrip exercises replacing a header in a file
// whose line endings are CRLF throughout.
func TestProcessFile_CRLFRoundTrip(t *testing.T) {
	content := "#!/usr/bin/env python3\r\n" +
		"# topmark:header:start\r\n" +
		"#   file : old.py\r\n" +
		"# topmark:header:end\r\n" +
		"\r\n" +
		"print(1)\r\n"
	path := writeTemp(t, "old.py", content)

	cfg := config.Default()
	cfg.HeaderFields = []string{"file"}
	cfg.ApplyChanges = true

	pl := newTestPipeline(t, cfg)
	fc := pl.ProcessFile(path, OpCheckOrFix, false)

	if fc.Intent != IntentReplaced {
		t.Fatalf("expected IntentReplaced, got %v (diagnostics: %v)", fc.Intent, fc.Diagnostics)
	}
	for _, l := range fc.Views.UpdatedLines[:len(fc.Views.UpdatedLines)-1] {
		if !strings.HasSuffix(l, "\r\n") {
			t.Fatalf("expected every non-final line to retain CRLF, got %q", l)
		}
	}
}

// TestProcessFile_StripTrimsLeadingBlank exercises the round trip of
// inserting a header into a file with no prior header, then stripping it
// back out: the spacer line the insertion added must not survive the
// strip.
func TestProcessFile_StripTrimsLeadingBlank(t *testing.T) {
	path := writeTemp(t, "z.py", "print('hi')\n")

	cfg := config.Default()
	cfg.HeaderFields = []string{"file"}
	cfg.ApplyChanges = true

	pl := newTestPipeline(t, cfg)

	inserted := pl.ProcessFile(path, OpCheckOrFix, false)
	if inserted.Intent != IntentInserted {
		t.Fatalf("insert pass: expected IntentInserted, got %v", inserted.Intent)
	}

	stripped := pl.ProcessFile(path, OpStrip, false)
	if stripped.Intent != IntentRemoved {
		t.Fatalf("strip pass: expected IntentRemoved, got %v (diagnostics: %v)", stripped.Intent, stripped.Diagnostics)
	}
	if got := JoinLines(stripped.Views.UpdatedLines); got != "print('hi')\n" {
		t.Fatalf("expected strip to round-trip to the original content, got %q", got)
	}
}

// TestProcessFile_BuilderPreservesUnlistedFieldValue exercises that a
// header field named in Cfg.HeaderFields but absent from Cfg.FieldValues
// keeps whatever value the Scanner already found, instead of being reset
// to empty on every run.
func TestProcessFile_BuilderPreservesUnlistedFieldValue(t *testing.T) {
	content := "# topmark:header:start\n" +
		"#\n" +
		"#   file    : keep.py\n" +
		"#   created : 2024-01-01\n" +
		"#\n" +
		"# topmark:header:end\n" +
		"\n" +
		"x = 1\n"
	path := writeTemp(t, "keep.py", content)

	cfg := config.Default()
	cfg.HeaderFields = []string{"file", "created"}
	cfg.ApplyChanges = true

	pl := newTestPipeline(t, cfg)
	fc := pl.ProcessFile(path, OpCheckOrFix, false)

	if fc.Intent != IntentSkippedUnchanged {
		t.Fatalf("expected IntentSkippedUnchanged (created preserved), got %v (diagnostics: %v)", fc.Intent, fc.Diagnostics)
	}
}

// TestProcessFile_XMLReflowBlockedByPolicy exercises that inserting a
// header into an XML document whose prolog and root element share a
// physical line is refused when allow_reflow is false.
func TestProcessFile_XMLReflowBlockedByPolicy(t *testing.T) {
	path := writeTemp(t, "one.xml", `<?xml version="1.0"?><root/>`)

	cfg := config.Default()
	cfg.HeaderFields = []string{"file"}
	cfg.ApplyChanges = true

	pl := newTestPipeline(t, cfg)
	fc := pl.ProcessFile(path, OpCheckOrFix, false)

	if fc.Intent != IntentSkippedReflow {
		t.Fatalf("expected IntentSkippedReflow, got %v (diagnostics: %v)", fc.Intent, fc.Diagnostics)
	}
	if fc.Write == WriteOK {
		t.Fatalf("expected no write when insertion is skipped for reflow risk")
	}
}

// TestProcessFile_XMLReflowAllowedByPolicy exercises the same prolog/body
// same-line XML document with allow_reflow enabled: insertion proceeds and
// the declaration and header land on separate lines.
func TestProcessFile_XMLReflowAllowedByPolicy(t *testing.T) {
	path := writeTemp(t, "one.xml", `<?xml version="1.0"?><root/>`)

	allow := true
	cfg := config.Default()
	cfg.HeaderFields = []string{"file"}
	cfg.ApplyChanges = true
	cfg.GlobalPolicy.AllowReflow = &allow

	pl := newTestPipeline(t, cfg)
	fc := pl.ProcessFile(path, OpCheckOrFix, false)

	if fc.Intent != IntentInserted {
		t.Fatalf("expected IntentInserted, got %v (diagnostics: %v)", fc.Intent, fc.Diagnostics)
	}
	got := JoinLines(fc.Views.UpdatedLines)
	if !strings.HasPrefix(got, "<?xml version=\"1.0\"?>\n") {
		t.Fatalf("expected the prolog to end its own line before the header, got %q", got)
	}
	if !strings.Contains(got, "<root/>") {
		t.Fatalf("expected the root element to survive the insertion, got %q", got)
	}
}

// TestProcessFile_ReplaceNoTrailingNewline exercises replacing a header
// that sits at the very end of a file with no final newline: the
// replacement must not introduce one.
func TestProcessFile_ReplaceNoTrailingNewline(t *testing.T) {
	content := "# topmark:header:start\n" +
		"#   file : old.py\n" +
		"# topmark:header:end"
	path := writeTemp(t, "old.py", content)

	cfg := config.Default()
	cfg.HeaderFields = []string{"file"}
	cfg.FieldValues = map[string]string{"file": "new.py"}
	cfg.ApplyChanges = true

	pl := newTestPipeline(t, cfg)
	fc := pl.ProcessFile(path, OpCheckOrFix, false)

	if fc.Intent != IntentReplaced {
		t.Fatalf("expected IntentReplaced, got %v (diagnostics: %v)", fc.Intent, fc.Diagnostics)
	}
	got := JoinLines(fc.Views.UpdatedLines)
	if strings.HasSuffix(got, "\n") {
		t.Fatalf("expected no trailing newline to be introduced, got %q", got)
	}
}

// TestRunMany_ConcurrentDeterminism exercises the requirement that batch
// results sort deterministically regardless of goroutine completion
// order.
func TestRunMany_ConcurrentDeterminism(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"c.py", "a.py", "b.py"} {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("x = 1\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		paths = append(paths, p)
	}

	cfg := config.Default()
	cfg.HeaderFields = []string{"file"}
	cfg.ApplyChanges = true

	pl := newTestPipeline(t, cfg)
	result, err := pl.RunMany(context.Background(), paths, OpCheckOrFix, false, 4)
	if err != nil {
		t.Fatalf("RunMany: %v", err)
	}
	if len(result.Files) != 3 {
		t.Fatalf("expected 3 file reports, got %d", len(result.Files))
	}
	for i := 1; i < len(result.Files); i++ {
		if result.Files[i-1].Path > result.Files[i].Path {
			t.Fatalf("expected sorted paths, got %v", result.Files)
		}
	}
	if result.Changed != 3 {
		t.Fatalf("expected all 3 files changed, got %d", result.Changed)
	}
}
