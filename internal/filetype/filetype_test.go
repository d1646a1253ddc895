package filetype

import (
	"regexp"
	"testing"
)

func TestResolve_FilenameBeatsExtension(t *testing.T) {
	r := NewRegistry()
	r.Register(&FileType{Name: "generic-conf", Extensions: []string{".conf"}})
	r.Register(&FileType{Name: "nginx-conf", Filenames: []string{"nginx.conf"}})

	ft, _, kind := r.Resolve("/etc/nginx.conf", nil)
	if ft == nil || ft.Name != "nginx-conf" {
		t.Fatalf("expected nginx-conf to win, got %#v", ft)
	}
	if kind != MatchFilename {
		t.Fatalf("expected MatchFilename, got %v", kind)
	}
}

func TestResolve_PatternBeatsExtension(t *testing.T) {
	r := NewRegistry()
	r.Register(&FileType{Name: "text", Extensions: []string{".txt"}})
	r.Register(&FileType{Name: "versioned-txt", Patterns: []*regexp.Regexp{regexp.MustCompile(`^v\d+\.txt$`)}})

	ft, _, kind := r.Resolve("v2.txt", nil)
	if ft == nil || ft.Name != "versioned-txt" {
		t.Fatalf("expected versioned-txt to win, got %#v", ft)
	}
	if kind != MatchPattern {
		t.Fatalf("expected MatchPattern, got %v", kind)
	}
}

func TestResolve_TailSubpathFilename(t *testing.T) {
	r := NewRegistry()
	r.Register(&FileType{Name: "dockerfile", Filenames: []string{"docker/Dockerfile"}})

	ft, _, _ := r.Resolve("project/docker/Dockerfile", nil)
	if ft == nil || ft.Name != "dockerfile" {
		t.Fatalf("expected dockerfile to match tail subpath, got %#v", ft)
	}
}

func TestResolve_ContentGateIfExtension(t *testing.T) {
	r := NewRegistry()
	calls := 0
	r.Register(&FileType{
		Name:        "xml",
		Extensions:  []string{".xml"},
		ContentGate: GateIfExtension,
		ContentMatcher: func(string, []byte) (bool, error) {
			calls++
			return true, nil
		},
	})

	ft, score, _ := r.Resolve("doc.xml", []byte("<?xml version=\"1.0\"?>"))
	if ft == nil || ft.Name != "xml" {
		t.Fatalf("expected xml to match, got %#v", ft)
	}
	if calls != 1 {
		t.Fatalf("expected content matcher to run once, ran %d times", calls)
	}
	if score != scoreExtension+contentBonus {
		t.Fatalf("expected score %d, got %d", scoreExtension+contentBonus, score)
	}
}

func TestResolve_ContentMatcherErrorTreatedAsNonMatch(t *testing.T) {
	r := NewRegistry()
	r.Register(&FileType{
		Name:        "flaky",
		Extensions:  []string{".flaky"},
		ContentGate: GateIfExtension,
		ContentMatcher: func(string, []byte) (bool, error) {
			return true, errBoom
		},
	})

	ft, score, _ := r.Resolve("x.flaky", nil)
	if ft == nil || ft.Name != "flaky" {
		t.Fatalf("extension match alone should still resolve, got %#v", ft)
	}
	if score != scoreExtension {
		t.Fatalf("matcher error must not add the content bonus, got score %d", score)
	}
}

func TestResolve_NoMatch(t *testing.T) {
	r := NewRegistry()
	r.Register(&FileType{Name: "python", Extensions: []string{".py"}})

	ft, _, kind := r.Resolve("README", nil)
	if ft != nil {
		t.Fatalf("expected no match, got %#v", ft)
	}
	if kind != MatchNone {
		t.Fatalf("expected MatchNone, got %v", kind)
	}
}

var errBoom = fmtError("boom")

type fmtError string

func (e fmtError) Error() string { return string(e) }
