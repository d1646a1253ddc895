// Package registry wires TopMark's builtin FileTypes to their
// HeaderProcessors. It is kept separate from internal/filetype and
// internal/processor to avoid an import cycle: filetype.FileType
// references policy.MutablePolicy, and a builtins table that constructs
// both FileTypes and Processors together would otherwise have to live
// inside one of those two packages.
package registry

import (
	"bytes"
	"regexp"

	"github.com/topmark-tools/topmark/internal/filetype"
	"github.com/topmark-tools/topmark/internal/processor"
)

// LinePrefix carries its own trailing space so a directive line gets
// exactly one space of separation regardless of the field-line indent
// ("# topmark:header:start" vs "#   file    : x.py").
var hashLine = &processor.LineCommentProcessor{LinePrefix: "# ", LineSuffix: "", LineIndent: "  "}
var slashLine = &processor.LineCommentProcessor{LinePrefix: "// ", LineSuffix: "", LineIndent: "  "}
var starBlock = &processor.BlockCommentProcessor{BlockPrefix: "/*", BlockSuffix: "*/", LinePrefix: "* ", LineSuffix: "", LineIndent: "  "}
var xmlProc = processor.NewXMLProcessor()
var markdownProc = processor.NewMarkdownProcessor()

var dockerfileTail = "docker/Dockerfile"

// xmlPrefixMatcher is the cheap "<?xml" sniff bound to the xml FileType.
// Its gate is GateIfExtension, so it runs only on files that already
// matched the ".xml" extension and adds the content bonus to those;
// extensionless files are not recognized through it.
func xmlPrefixMatcher(_ string, sample []byte) (bool, error) {
	trimmed := bytes.TrimLeft(sample, "\xEF\xBB\xBF \t\r\n")
	return bytes.HasPrefix(trimmed, []byte("<?xml")), nil
}

// Builtins returns the FileType/Processor registry pair backing TopMark's
// out-of-the-box recognition table.
func Builtins() (*filetype.Registry, *processor.Registry) {
	types := filetype.NewRegistry()
	procs := processor.NewRegistry()

	bind := func(ft *filetype.FileType, p processor.Processor) {
		types.Register(ft)
		procs.Bind(ft.Name, p)
	}

	bind(&filetype.FileType{
		Name:        "python",
		Extensions:  []string{".py"},
		Description: "Python source",
		Header: filetype.HeaderPolicy{
			SupportsShebang:          true,
			EncodingLineRegex:        processor.DefaultEncodingLineRegex(),
			PreHeaderBlankAfterBlock: true,
			EnsureBlankAfterHeader:   true,
		},
	}, hashLine)

	bind(&filetype.FileType{
		Name:        "shell",
		Extensions:  []string{".sh", ".bash"},
		Description: "POSIX/bash shell script",
		Header: filetype.HeaderPolicy{
			SupportsShebang:          true,
			PreHeaderBlankAfterBlock: true,
			EnsureBlankAfterHeader:   true,
		},
	}, hashLine)

	blankAfter := filetype.HeaderPolicy{EnsureBlankAfterHeader: true}

	bind(&filetype.FileType{
		Name:        "yaml",
		Extensions:  []string{".yaml", ".yml"},
		Description: "YAML document",
		Header:      blankAfter,
	}, hashLine)

	bind(&filetype.FileType{
		Name:        "toml",
		Extensions:  []string{".toml"},
		Description: "TOML document",
		Header:      blankAfter,
	}, hashLine)

	bind(&filetype.FileType{
		Name:        "dockerfile",
		Filenames:   []string{"Dockerfile", dockerfileTail},
		Description: "Dockerfile",
		Header:      blankAfter,
	}, hashLine)

	bind(&filetype.FileType{
		Name:        "go",
		Extensions:  []string{".go"},
		Description: "Go source",
		Header:      blankAfter,
	}, slashLine)

	bind(&filetype.FileType{
		Name:        "javascript",
		Extensions:  []string{".js", ".jsx"},
		Description: "JavaScript/JSX source",
		Header:      blankAfter,
	}, slashLine)

	bind(&filetype.FileType{
		Name:        "typescript",
		Extensions:  []string{".ts", ".tsx"},
		Description: "TypeScript/TSX source",
		Header:      blankAfter,
	}, slashLine)

	bind(&filetype.FileType{
		Name:        "protobuf",
		Extensions:  []string{".proto"},
		Description: "Protocol Buffers schema",
		Header:      blankAfter,
	}, slashLine)

	bind(&filetype.FileType{
		Name:        "c",
		Extensions:  []string{".c", ".h"},
		Description: "C source/header",
		Header:      blankAfter,
	}, starBlock)

	bind(&filetype.FileType{
		Name:        "css",
		Extensions:  []string{".css"},
		Description: "CSS stylesheet",
		Header:      blankAfter,
	}, starBlock)

	bind(&filetype.FileType{
		Name:        "xml",
		Extensions:  []string{".xml"},
		Description: "XML document",
		ContentGate: filetype.GateIfExtension,
		ContentMatcher: func(path string, sample []byte) (bool, error) {
			return xmlPrefixMatcher(path, sample)
		},
		Header: blankAfter,
	}, xmlProc)

	bind(&filetype.FileType{
		Name:        "html",
		Extensions:  []string{".html", ".htm"},
		Description: "HTML document",
		Header:      blankAfter,
	}, xmlProc)

	bind(&filetype.FileType{
		Name:        "xml-schema",
		Patterns:    []*regexp.Regexp{xmlSchemaPattern},
		Description: "XSD/XSL/XSLT schema or stylesheet",
		Header:      blankAfter,
	}, xmlProc)

	bind(&filetype.FileType{
		Name:        "markdown",
		Extensions:  []string{".md"},
		Description: "Markdown document",
		ContentGate: filetype.GateAlways,
		ContentMatcher: func(string, []byte) (bool, error) {
			return true, nil
		},
	}, markdownProc)

	for _, name := range []struct {
		id  string
		ext string
	}{
		{"json", ".json"},
		{"lockfile", ".lock"},
		{"svg", ".svg"},
	} {
		types.Register(&filetype.FileType{
			Name:           name.id,
			Extensions:     []string{name.ext},
			Description:    "recognized but not header-processed",
			SkipProcessing: true,
		})
	}

	return types, procs
}

// xmlSchemaPattern recognizes XSD/XSL/XSLT files by basename regex rather
// than a plain extension list, exercising filetype.FileType.Patterns.
var xmlSchemaPattern = regexp.MustCompile(`(?i)\.(xsd|xsl|xslt)$`)
