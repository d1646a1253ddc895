// Package main implements a golangci-lint custom analyzer plugin that
// surfaces TopMark's check as a lint diagnostic with a suggested fix,
// using the same golang.org/x/tools/go/analysis entrypoint shape as any
// custom linter plugin.
package main

import (
	"os"
	"path/filepath"

	"golang.org/x/tools/go/analysis"

	"github.com/topmark-tools/topmark/internal/config"
	"github.com/topmark-tools/topmark/internal/pipeline"
	"github.com/topmark-tools/topmark/internal/registry"
)

// pluginConfig mirrors the golangci-lint custom settings block for this
// plugin, e.g.:
//
//	linters-settings:
//	  custom:
//	    topmark:
//	      settings:
//	        config: topmark.yaml
type pluginConfig struct {
	ConfigPath string `mapstructure:"config" yaml:"config"`
}

// New implements the golangci-lint plugin entrypoint.
func New(conf any) ([]*analysis.Analyzer, error) { //nolint: revive
	cfg := parseConfig(conf)
	root := resolveRoot()
	tcfg, err := config.Load(cfg.ConfigPath, root)
	if err != nil {
		return nil, err
	}
	types, procs := registry.Builtins()
	pl := pipeline.NewPipeline(types, procs, tcfg, pipeline.NullSink{})
	return []*analysis.Analyzer{buildAnalyzer(root, pl)}, nil
}

func parseConfig(conf any) pluginConfig {
	out := pluginConfig{}
	m, ok := conf.(map[string]any)
	if !ok {
		return out
	}
	if v, ok := m["config"].(string); ok {
		out.ConfigPath = v
	}
	return out
}

func resolveRoot() string {
	root, _ := os.Getwd()
	return root
}

// buildAnalyzer runs the TopMark check against every file in the pass
// and reports a diagnostic with a suggested fix for anything that would
// change, without ever writing to disk (pl.Sink is pipeline.NullSink).
func buildAnalyzer(root string, pl *pipeline.Pipeline) *analysis.Analyzer {
	return &analysis.Analyzer{
		Name: "topmark",
		Doc:  "checks presence and correctness of TopMark header blocks",
		Run: func(pass *analysis.Pass) (interface{}, error) {
			for _, f := range pass.Files {
				filePath := pass.Fset.File(f.Pos()).Name()
				if !filepath.IsAbs(filePath) {
					filePath = filepath.Join(root, filePath)
				}

				fc := pl.ProcessFile(filePath, pipeline.OpCheckOrFix, true)
				switch fc.Intent {
				case pipeline.IntentInserted, pipeline.IntentReplaced:
				default:
					continue
				}

				insertPos := f.Package
				pass.Report(analysis.Diagnostic{
					Pos:     insertPos,
					Message: "missing or outdated TopMark header",
					SuggestedFixes: []analysis.SuggestedFix{{
						Message: "Insert or update TopMark header",
						TextEdits: []analysis.TextEdit{{
							Pos:     insertPos,
							End:     insertPos,
							NewText: []byte(fc.Views.RenderBlock),
						}},
					}},
				})
			}
			return nil, nil
		},
	}
}
