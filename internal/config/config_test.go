package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultsWhenNoConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load("", dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.HeaderFields) != 0 {
		t.Fatalf("expected no default header fields, got %v", cfg.HeaderFields)
	}
	if cfg.HeaderFormat != Native {
		t.Fatalf("expected Native default format, got %v", cfg.HeaderFormat)
	}
	if cfg.WriteStrategy != AtomicWrite {
		t.Fatalf("expected AtomicWrite default, got %v", cfg.WriteStrategy)
	}
}

func TestLoad_ParsesFieldsAndValues(t *testing.T) {
	dir := t.TempDir()
	conf := []byte(`
fields: ["file", "project", "license"]
values:
  project: TopMark
  license: MIT
align: true
format: native
`)
	mustWrite(t, filepath.Join(dir, "topmark.yaml"), conf)
	cfg, err := Load("", dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.HeaderFields) != 3 {
		t.Fatalf("expected 3 header fields, got %d", len(cfg.HeaderFields))
	}
	if cfg.FieldValues["project"] != "TopMark" || cfg.FieldValues["license"] != "MIT" {
		t.Fatalf("field values not parsed: %+v", cfg.FieldValues)
	}
	if !cfg.AlignFields {
		t.Fatalf("expected AlignFields=true")
	}
}

func TestLoad_PolicyLayering(t *testing.T) {
	dir := t.TempDir()
	conf := []byte(`
policy:
  allow_reflow: false
per_type:
  xml:
    allow_reflow: true
`)
	mustWrite(t, filepath.Join(dir, "topmark.yaml"), conf)
	cfg, err := Load("", dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	p, err := cfg.PolicyFor("xml")
	if err != nil {
		t.Fatalf("policy for xml: %v", err)
	}
	if !p.AllowReflow {
		t.Fatalf("expected per-type override to enable AllowReflow for xml")
	}
	p2, err := cfg.PolicyFor("python")
	if err != nil {
		t.Fatalf("policy for python: %v", err)
	}
	if p2.AllowReflow {
		t.Fatalf("expected global AllowReflow=false for python")
	}
}

func TestLoad_MutualExclusionSurfaced(t *testing.T) {
	dir := t.TempDir()
	conf := []byte(`
policy:
  add_only: true
  update_only: true
`)
	mustWrite(t, filepath.Join(dir, "topmark.yaml"), conf)
	cfg, err := Load("", dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := cfg.PolicyFor("anything"); err == nil {
		t.Fatalf("expected mutual exclusion error from PolicyFor")
	}
}

func mustWrite(t *testing.T, path string, b []byte) {
	t.Helper()
	if err := os.WriteFile(path, b, 0o666); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
