// Package config defines TopMark's immutable Config snapshot — the
// core's sole input besides paths and registries — and a thin
// gopkg.in/yaml.v3-backed loader that builds one from a topmark.yaml
// profile: header field names/order, field values, and per-type policy
// overlays.
//
// Layered pyproject.toml/user/project config discovery is out of scope;
// this loader only reads a single file from a short list of conventional
// names, enough to exercise the pipeline end-to-end from the CLI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/topmark-tools/topmark/internal/policy"
)

// HeaderFormat selects how field lines are rendered inside the header.
type HeaderFormat int

const (
	// Native renders "key : value" lines with comment affixes — the
	// default rendering for every builtin FileType.
	Native HeaderFormat = iota
	// Plain disables comment prefixes/suffixes entirely.
	Plain
	// JSON renders the field map as a single JSON object payload line.
	JSON
)

// OutputTarget selects where the Writer step sends bytes.
type OutputTarget int

const (
	// TargetFile writes to the original file path (via WriteStrategy).
	TargetFile OutputTarget = iota
	// TargetStdout prints to stdout without touching disk.
	TargetStdout
)

// WriteStrategy selects how TargetFile writes are committed.
type WriteStrategy int

const (
	// AtomicWrite commits via a hidden temp file + fsync + rename (default).
	AtomicWrite WriteStrategy = iota
	// InplaceWrite truncates and rewrites the original file directly.
	InplaceWrite
)

// TypePolicyOverlay is a per-FileType-name tri-state policy overlay.
type TypePolicyOverlay struct {
	TypeName string
	Overlay  policy.MutablePolicy
}

// Config is the immutable snapshot the core consumes. It is built once
// per run by the CLI layer and never mutated afterward.
type Config struct {
	HeaderFields   []string          // field names, in render order
	FieldValues    map[string]string // field name -> value
	AlignFields    bool
	HeaderFormat   HeaderFormat
	Paths          []string
	GlobalPolicy   policy.MutablePolicy
	TypeOverlays   []TypePolicyOverlay
	ApplyChanges   bool
	OutputTarget   OutputTarget
	WriteStrategy  WriteStrategy
	DefaultNewline string // used only when a file has no observable newline
}

// yamlProfile mirrors the on-disk topmark.yaml shape.
type yamlProfile struct {
	Fields  []string              `yaml:"fields"`
	Values  map[string]string     `yaml:"values"`
	Align   *bool                 `yaml:"align"`
	Format  string                `yaml:"format"`
	Write   string                `yaml:"write"` // "atomic" | "inplace"
	Policy  yamlPolicy            `yaml:"policy"`
	PerType map[string]yamlPolicy `yaml:"per_type"`
}

type yamlPolicy struct {
	AddOnly                  *bool `yaml:"add_only"`
	UpdateOnly               *bool `yaml:"update_only"`
	AllowHeaderInEmptyFiles  *bool `yaml:"allow_header_in_empty_files"`
	RenderEmptyHeaderNoField *bool `yaml:"render_empty_header_when_no_fields"`
	AllowReflow              *bool `yaml:"allow_reflow"`
	IgnoreMixedLineEndings   *bool `yaml:"ignore_mixed_line_endings"`
	IgnoreBOMBeforeShebang   *bool `yaml:"ignore_bom_before_shebang"`
}

func (y yamlPolicy) toMutable() policy.MutablePolicy {
	return policy.MutablePolicy{
		AddOnly:                  y.AddOnly,
		UpdateOnly:               y.UpdateOnly,
		AllowHeaderInEmptyFiles:  y.AllowHeaderInEmptyFiles,
		RenderEmptyHeaderNoField: y.RenderEmptyHeaderNoField,
		AllowReflow:              y.AllowReflow,
		IgnoreMixedLineEndings:   y.IgnoreMixedLineEndings,
		IgnoreBOMBeforeShebang:   y.IgnoreBOMBeforeShebang,
	}
}

// Default returns a Config with sane defaults and no header fields —
// callers typically overlay Load's result onto this.
func Default() Config {
	return Config{
		FieldValues:    map[string]string{},
		AlignFields:    true,
		HeaderFormat:   Native,
		OutputTarget:   TargetFile,
		WriteStrategy:  AtomicWrite,
		DefaultNewline: "\n",
	}
}

// Load reads a TopMark profile from explicitPath, or from the first of a
// short list of conventional names under root when explicitPath is empty,
// and merges it onto Default(). A missing file is not an error: Load
// returns the defaults unchanged.
func Load(explicitPath, root string) (Config, error) {
	cfg := Default()

	var candidates []string
	if explicitPath != "" {
		if !filepath.IsAbs(explicitPath) {
			explicitPath = filepath.Join(root, explicitPath)
		}
		candidates = []string{explicitPath}
	} else {
		candidates = []string{
			filepath.Join(root, "topmark.yaml"),
			filepath.Join(root, "topmark.yml"),
			filepath.Join(root, ".topmark.yaml"),
		}
	}

	var b []byte
	var loadedPath string
	for _, p := range candidates {
		data, err := os.ReadFile(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return cfg, fmt.Errorf("read config %s: %w", p, err)
		}
		b, loadedPath = data, p
		break
	}
	if loadedPath == "" {
		return cfg, nil
	}

	var prof yamlProfile
	if err := yaml.Unmarshal(b, &prof); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", loadedPath, err)
	}

	if len(prof.Fields) > 0 {
		cfg.HeaderFields = prof.Fields
	}
	if len(prof.Values) > 0 {
		cfg.FieldValues = prof.Values
	}
	if prof.Align != nil {
		cfg.AlignFields = *prof.Align
	}
	switch prof.Format {
	case "plain":
		cfg.HeaderFormat = Plain
	case "json":
		cfg.HeaderFormat = JSON
	default:
		cfg.HeaderFormat = Native
	}
	if prof.Write == "inplace" {
		cfg.WriteStrategy = InplaceWrite
	}
	cfg.GlobalPolicy = prof.Policy.toMutable()
	for name, p := range prof.PerType {
		cfg.TypeOverlays = append(cfg.TypeOverlays, TypePolicyOverlay{TypeName: name, Overlay: p.toMutable()})
	}

	return cfg, nil
}

// PolicyFor resolves the effective Policy for a given FileType name,
// layering that type's overlay (if any) over the Config's global policy.
func (c Config) PolicyFor(typeName string) (policy.Policy, error) {
	overlay := policy.MutablePolicy{}
	for _, to := range c.TypeOverlays {
		if to.TypeName == typeName {
			overlay = to.Overlay
			break
		}
	}
	return policy.Resolve(c.GlobalPolicy, overlay)
}
