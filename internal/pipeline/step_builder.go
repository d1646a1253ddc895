package pipeline

import (
	"path/filepath"
	"sort"
)

// fileFieldName is the one field TopMark populates per-file rather than
// from the static profile: the file's own basename, unless field_values
// overrides it explicitly.
const fileFieldName = "file"

// build is the Builder step: compute the expected field map for this
// file from the Config's static field values, the one per-file-derived
// field, and — for any field left unnamed by both — whatever value the
// Scanner already found in the existing header, so a field set once by
// hand and never added to field_values survives every subsequent fix
// instead of being blanked out.
func build(ctx *Context) {
	if ctx.Halt {
		return
	}
	if ctx.Content != ContentOK && ctx.Content != ContentEmpty {
		return
	}

	fields := make(map[string]string, len(ctx.Cfg.HeaderFields))
	for _, name := range ctx.Cfg.HeaderFields {
		if v, ok := ctx.Cfg.FieldValues[name]; ok {
			fields[name] = v
		} else if name == fileFieldName {
			fields[name] = filepath.Base(ctx.Path)
		} else {
			fields[name] = ctx.Views.HeaderMapping[name]
		}
	}
	ctx.Views.Build = fields
}

// orderedFieldNames returns the names to render, in declared order when
// set, else sorted for determinism (e.g. a header scanned from disk whose
// mapping has no declared order).
func orderedFieldNames(declared []string, mapping map[string]string) []string {
	if len(declared) > 0 {
		return declared
	}
	names := make([]string, 0, len(mapping))
	for k := range mapping {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
