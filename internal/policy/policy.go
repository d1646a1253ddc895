// Package policy implements TopMark's tri-state overlay model: a
// MutablePolicy carries optional (bool-or-unset) flags coming from global
// config and per-file-type overlays, and Resolve collapses layered
// MutablePolicies into a plain-boolean Policy that the pipeline steps
// consume directly.
package policy

import "errors"

// ErrMutuallyExclusive is returned by Resolve when a resolved policy would
// have both AddOnly and UpdateOnly set, which is nonsensical: AddOnly
// forbids ever replacing an existing header, UpdateOnly forbids ever
// inserting a new one.
var ErrMutuallyExclusive = errors.New("policy: add_only and update_only are mutually exclusive")

// MutablePolicy is the tri-state form used by config layers: each field is
// nil when unset at that layer, letting a narrower layer (per-type) defer
// to a broader one (global) by leaving the field nil.
type MutablePolicy struct {
	AddOnly                  *bool
	UpdateOnly               *bool
	AllowHeaderInEmptyFiles  *bool
	RenderEmptyHeaderNoField *bool
	AllowReflow              *bool
	IgnoreMixedLineEndings   *bool
	IgnoreBOMBeforeShebang   *bool
}

// Policy is the finalized, plain-boolean view consumed by pipeline steps.
type Policy struct {
	AddOnly                  bool
	UpdateOnly               bool
	AllowHeaderInEmptyFiles  bool
	RenderEmptyHeaderNoField bool
	AllowReflow              bool
	IgnoreMixedLineEndings   bool
	IgnoreBOMBeforeShebang   bool
}

// Defaults is the baseline MutablePolicy substituted for any field left
// nil after layering. New flags should default to false to preserve
// backward compatibility with configs that predate them.
func Defaults() MutablePolicy {
	f := false
	return MutablePolicy{
		AddOnly:                  &f,
		UpdateOnly:               &f,
		AllowHeaderInEmptyFiles:  &f,
		RenderEmptyHeaderNoField: &f,
		AllowReflow:              &f,
		IgnoreMixedLineEndings:   &f,
		IgnoreBOMBeforeShebang:   &f,
	}
}

func merge(base, over *bool, fallback bool) bool {
	if over != nil {
		return *over
	}
	if base != nil {
		return *base
	}
	return fallback
}

// Resolve layers perType over global over Defaults() and returns the
// finalized Policy. It fails loudly (ErrMutuallyExclusive) rather than
// silently preferring AddOnly or UpdateOnly when both end up true.
func Resolve(global, perType MutablePolicy) (Policy, error) {
	d := Defaults()
	g := layer(d, global)
	t := layer(g, perType)

	p := Policy{
		AddOnly:                  *t.AddOnly,
		UpdateOnly:               *t.UpdateOnly,
		AllowHeaderInEmptyFiles:  *t.AllowHeaderInEmptyFiles,
		RenderEmptyHeaderNoField: *t.RenderEmptyHeaderNoField,
		AllowReflow:              *t.AllowReflow,
		IgnoreMixedLineEndings:   *t.IgnoreMixedLineEndings,
		IgnoreBOMBeforeShebang:   *t.IgnoreBOMBeforeShebang,
	}
	if p.AddOnly && p.UpdateOnly {
		return Policy{}, ErrMutuallyExclusive
	}
	return p, nil
}

// LayerOverlay merges over onto base, keeping a field nil only when both
// layers leave it unset. Unlike layer, it never substitutes a default, so
// its result can still be layered again (e.g. a config-level per-type
// overlay merged under a FileType's own built-in overlay, before either
// ever reaches Resolve).
func LayerOverlay(base, over MutablePolicy) MutablePolicy {
	pick := func(b, o *bool) *bool {
		if o != nil {
			return o
		}
		return b
	}
	return MutablePolicy{
		AddOnly:                  pick(base.AddOnly, over.AddOnly),
		UpdateOnly:               pick(base.UpdateOnly, over.UpdateOnly),
		AllowHeaderInEmptyFiles:  pick(base.AllowHeaderInEmptyFiles, over.AllowHeaderInEmptyFiles),
		RenderEmptyHeaderNoField: pick(base.RenderEmptyHeaderNoField, over.RenderEmptyHeaderNoField),
		AllowReflow:              pick(base.AllowReflow, over.AllowReflow),
		IgnoreMixedLineEndings:   pick(base.IgnoreMixedLineEndings, over.IgnoreMixedLineEndings),
		IgnoreBOMBeforeShebang:   pick(base.IgnoreBOMBeforeShebang, over.IgnoreBOMBeforeShebang),
	}
}

// layer substitutes each nil field of over with the corresponding field
// of base, returning a fully-populated MutablePolicy.
func layer(base, over MutablePolicy) MutablePolicy {
	b := func(v bool) *bool { return &v }
	return MutablePolicy{
		AddOnly:                  b(merge(base.AddOnly, over.AddOnly, false)),
		UpdateOnly:               b(merge(base.UpdateOnly, over.UpdateOnly, false)),
		AllowHeaderInEmptyFiles:  b(merge(base.AllowHeaderInEmptyFiles, over.AllowHeaderInEmptyFiles, false)),
		RenderEmptyHeaderNoField: b(merge(base.RenderEmptyHeaderNoField, over.RenderEmptyHeaderNoField, false)),
		AllowReflow:              b(merge(base.AllowReflow, over.AllowReflow, false)),
		IgnoreMixedLineEndings:   b(merge(base.IgnoreMixedLineEndings, over.IgnoreMixedLineEndings, false)),
		IgnoreBOMBeforeShebang:   b(merge(base.IgnoreBOMBeforeShebang, over.IgnoreBOMBeforeShebang, false)),
	}
}
