// Package filetype implements TopMark's FileType registry: recognition
// metadata for source file families and the scoring resolver that binds a
// path to its FileType, ranking filename-tail matches above pattern
// matches above extension matches, with an optional content-matcher
// bonus gated by how strongly the name already matched.
package filetype

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/topmark-tools/topmark/internal/policy"
)

// ContentGate controls when a FileType's ContentMatcher may run.
type ContentGate int

const (
	// GateNever skips the content matcher entirely.
	GateNever ContentGate = iota
	// GateIfExtension runs the matcher only when the extension rule matched.
	GateIfExtension
	// GateIfFilename runs the matcher only when the filename rule matched.
	GateIfFilename
	// GateIfPattern runs the matcher only when the regex pattern rule matched.
	GateIfPattern
	// GateIfAnyNameRule runs the matcher if any of the three name rules matched.
	GateIfAnyNameRule
	// GateIfNone runs the matcher only when the type defines no name rules at all.
	GateIfNone
	// GateAlways always runs the matcher. Use sparingly: it executes on every
	// candidate FileType for every file.
	GateAlways
)

// HeaderPolicy tunes where and how a header is placed for one FileType.
type HeaderPolicy struct {
	SupportsShebang          bool
	EncodingLineRegex        *regexp.Regexp
	PreHeaderBlankAfterBlock bool
	EnsureBlankAfterHeader   bool
	ScanWindowBefore         int
	ScanWindowAfter          int
}

// ContentMatcher inspects file content (already read by the caller) and
// reports whether this FileType applies. Matcher errors are treated as a
// non-match by the Resolver — content matchers must not be allowed to
// abort resolution for the whole file.
type ContentMatcher func(path string, sample []byte) (bool, error)

// PreInsertChecker runs immediately before the Planner commits to an
// INSERTED intent, giving a FileType a last chance to refuse (e.g. "this
// XML file has no root element").
type PreInsertChecker func(lines []string) (ok bool, reason string)

// FileType is recognition metadata bound to exactly one HeaderProcessor at
// runtime via the processor registry (see internal/processor).
type FileType struct {
	Name            string
	Extensions      []string // each with leading dot, e.g. ".py"
	Filenames       []string // exact basenames, or tail subpaths containing "/"
	Patterns        []*regexp.Regexp
	Description     string
	SkipProcessing  bool
	ContentMatcher  ContentMatcher
	ContentGate     ContentGate
	Header          HeaderPolicy
	PreInsertCheck  PreInsertChecker
	PolicyOverlay   policy.MutablePolicy
	ProcessorFamily string // key looked up in the processor registry
}

// MatchKind identifies which rule resolved a FileType, used for
// deterministic scoring and diagnostics.
type MatchKind int

const (
	// MatchNone indicates no FileType matched.
	MatchNone MatchKind = iota
	// MatchExtension indicates an extension-suffix match.
	MatchExtension
	// MatchPattern indicates a regex fullmatch against the basename.
	MatchPattern
	// MatchFilename indicates an exact basename or tail-subpath match.
	MatchFilename
	// MatchContent indicates a FileType with no name rules matched through
	// its content matcher alone (a content bonus added to a name-rule match
	// keeps that match's kind).
	MatchContent
)

// score values; filename beats pattern beats extension; content adds a
// bonus on top of whichever name rule triggered it.
const (
	scoreExtension = 10
	scorePattern   = 20
	scoreFilename  = 30
	contentBonus   = 5
)

// Registry holds the set of known FileTypes.
type Registry struct {
	byName map[string]*FileType
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*FileType)}
}

// Register adds or replaces a FileType by name.
func (r *Registry) Register(ft *FileType) {
	r.byName[ft.Name] = ft
}

// Unregister removes a FileType by name; a no-op if absent.
func (r *Registry) Unregister(name string) {
	delete(r.byName, name)
}

// AsMapping returns a name->FileType snapshot.
func (r *Registry) AsMapping() map[string]*FileType {
	out := make(map[string]*FileType, len(r.byName))
	for k, v := range r.byName {
		out[k] = v
	}
	return out
}

// All returns every registered FileType, sorted by name for determinism.
func (r *Registry) All() []*FileType {
	out := make([]*FileType, 0, len(r.byName))
	for _, v := range r.byName {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// candidate tracks a FileType's best score while resolving a path.
type candidate struct {
	ft    *FileType
	score int
	kind  MatchKind
}

// Resolve selects the best-scoring FileType for path. sample is the first
// bytes of file content (may be nil if unavailable); content matchers whose
// gate permits them are called with sample as given, nil included. It returns the winning FileType (nil
// if none matched), its score, and the MatchKind that produced it.
//
// Resolve is pure: given the same registry contents and the same path and
// sample bytes, repeated calls yield identical results.
func (r *Registry) Resolve(path string, sample []byte) (*FileType, int, MatchKind) {
	base := filepath.Base(path)

	var candidates []candidate
	for _, ft := range r.All() {
		nameMatched, kind := matchesName(ft, path, base)
		if !nameMatched {
			continue
		}
		score := 0
		switch kind {
		case MatchFilename:
			score = scoreFilename
		case MatchPattern:
			score = scorePattern
		case MatchExtension:
			score = scoreExtension
		}
		candidates = append(candidates, candidate{ft: ft, score: score, kind: kind})
	}

	// Content-gated upgrades: a FileType with no name rules at all can
	// still match via GateIfNone/GateAlways content matchers.
	for _, ft := range r.All() {
		if hasNameRules(ft) {
			continue
		}
		if ft.ContentMatcher == nil {
			continue
		}
		if ft.ContentGate != GateIfNone && ft.ContentGate != GateAlways {
			continue
		}
		if runMatcher(ft, path, sample) {
			candidates = append(candidates, candidate{ft: ft, score: contentBonus, kind: MatchContent})
		}
	}

	// Apply content-matcher bonus to candidates whose gate permits it.
	for i := range candidates {
		c := &candidates[i]
		if c.ft.ContentMatcher == nil || c.kind == MatchContent {
			continue
		}
		gateOK := false
		switch c.ft.ContentGate {
		case GateAlways:
			gateOK = true
		case GateIfAnyNameRule:
			gateOK = true
		case GateIfExtension:
			gateOK = c.kind == MatchExtension
		case GateIfFilename:
			gateOK = c.kind == MatchFilename
		case GateIfPattern:
			gateOK = c.kind == MatchPattern
		}
		if gateOK && runMatcher(c.ft, path, sample) {
			c.score += contentBonus
		}
	}

	if len(candidates) == 0 {
		return nil, 0, MatchNone
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].ft.Name < candidates[j].ft.Name
	})
	best := candidates[0]
	return best.ft, best.score, best.kind
}

func hasNameRules(ft *FileType) bool {
	return len(ft.Extensions) > 0 || len(ft.Filenames) > 0 || len(ft.Patterns) > 0
}

func matchesName(ft *FileType, path, base string) (bool, MatchKind) {
	for _, fn := range ft.Filenames {
		if strings.Contains(fn, "/") {
			if strings.HasSuffix(filepath.ToSlash(path), fn) {
				return true, MatchFilename
			}
			continue
		}
		if base == fn {
			return true, MatchFilename
		}
	}
	for _, re := range ft.Patterns {
		if re.MatchString(base) {
			return true, MatchPattern
		}
	}
	for _, ext := range ft.Extensions {
		if strings.HasSuffix(base, ext) {
			return true, MatchExtension
		}
	}
	return false, MatchNone
}

func runMatcher(ft *FileType, path string, sample []byte) bool {
	if ft.ContentMatcher == nil {
		return false
	}
	ok, err := ft.ContentMatcher(path, sample)
	if err != nil {
		return false
	}
	return ok
}
