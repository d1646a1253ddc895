package processor

import (
	"reflect"
	"testing"

	"github.com/topmark-tools/topmark/internal/filetype"
)

func TestLineCommentProcessor_RenderAndScanRoundTrip(t *testing.T) {
	p := &LineCommentProcessor{LinePrefix: "# ", LineIndent: "  "}
	inner := []string{DirectiveStart, "", "file : x.py", "", DirectiveEnd}
	wrapped := p.CommentWrap(inner, "")
	want := []string{
		"# topmark:header:start",
		"#",
		"#   file : x.py",
		"#",
		"# topmark:header:end",
	}
	if !reflect.DeepEqual(wrapped, want) {
		t.Fatalf("CommentWrap = %#v, want %#v", wrapped, want)
	}

	body := []string{"print('hi')"}
	lines := append(append([]string{}, wrapped...), body...)
	spans := p.ScanCandidates(lines, filetype.HeaderPolicy{ScanWindowBefore: 0, ScanWindowAfter: 0})
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Start != 0 || spans[0].End != 4 {
		t.Fatalf("unexpected span: %+v", spans[0])
	}
	stripped := p.Strip(lines, spans[0])
	if !reflect.DeepEqual(stripped, body) {
		t.Fatalf("Strip = %#v, want %#v", stripped, body)
	}
}

func TestLineCommentProcessor_ShebangInsertionIndex(t *testing.T) {
	p := &LineCommentProcessor{LinePrefix: "# "}
	lines := []string{"#!/usr/bin/env python3", "# coding: utf-8", "print(1)"}
	hp := filetype.HeaderPolicy{SupportsShebang: true}
	idx := p.InsertionLineIndex(lines, hp)
	if idx != 2 {
		t.Fatalf("expected insertion at line 2 (after shebang+encoding), got %d", idx)
	}
}

func TestBlockCommentProcessor_WrapAndExpand(t *testing.T) {
	p := &BlockCommentProcessor{BlockPrefix: "/*", BlockSuffix: "*/", LinePrefix: " * ", LineIndent: "  "}
	inner := []string{DirectiveStart, "", "file : x.c", "", DirectiveEnd}
	wrapped := p.CommentWrap(inner, "")
	want := []string{
		"/*",
		" * topmark:header:start",
		" *",
		" *   file : x.c",
		" *",
		" * topmark:header:end",
		"*/",
	}
	if !reflect.DeepEqual(wrapped, want) {
		t.Fatalf("CommentWrap = %#v, want %#v", wrapped, want)
	}
	spans := p.ScanCandidates(wrapped, filetype.HeaderPolicy{})
	if len(spans) != 1 || spans[0].Start != 0 || spans[0].End != 6 {
		t.Fatalf("expected full block span, got %#v", spans)
	}
}

func TestXMLProcessor_InsertionCharOffset(t *testing.T) {
	p := NewXMLProcessor()
	text := `<?xml version="1.0"?>` + "\n" + "<root/>\n"
	off, ok := p.InsertionCharOffset(text, filetype.HeaderPolicy{})
	if !ok {
		t.Fatalf("expected ok=true")
	}
	want := len(`<?xml version="1.0"?>`) + 1 // prolog + the single newline consumed as leading whitespace
	if off != want {
		t.Fatalf("offset = %d, want %d", off, want)
	}
}

func TestMarkdownProcessor_IgnoresFencedDirectives(t *testing.T) {
	p := NewMarkdownProcessor()
	lines := []string{
		"# Title",
		"",
		"```",
		"<!--",
		"topmark:header:start",
		"topmark:header:end",
		"-->",
		"```",
	}
	spans := p.ScanCandidates(lines, filetype.HeaderPolicy{})
	if len(spans) != 0 {
		t.Fatalf("expected fenced directive to be ignored, got %#v", spans)
	}
}
