package pipeline

import (
	"context"
	"os"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/topmark-tools/topmark/internal/config"
	"github.com/topmark-tools/topmark/internal/diagnostics"
	"github.com/topmark-tools/topmark/internal/filetype"
	"github.com/topmark-tools/topmark/internal/gitopt"
	"github.com/topmark-tools/topmark/internal/processor"
)

// Operation selects which step chain ProcessFile drives a Context
// through: the Planner-ending chain for check/fix/diff, or the
// Stripper-ending chain for strip.
type Operation int

const (
	// OpCheckOrFix drives Scanner→Builder→Renderer→Comparer→Planner→Patcher.
	OpCheckOrFix Operation = iota
	// OpStrip drives Scanner→Stripper→Patcher, skipping the comparison chain.
	OpStrip
)

// Pipeline bundles the immutable inputs every file's Context is processed
// against: the FileType/Processor registries, the resolved Config, and
// the Sink writes are committed through. A Pipeline is safe for
// concurrent use across many goroutines — nothing here is mutated after
// construction.
type Pipeline struct {
	Types *filetype.Registry
	Procs *processor.Registry
	Cfg   config.Config
	Sink  Sink

	// Git, when non-nil, lets RunMany skip a path outright instead of
	// running it through ProcessFile (internal/gitopt's optional
	// git-aware skip). Left nil, no file is ever skipped on git's say-so.
	Git *gitopt.Git
}

// NewPipeline returns a Pipeline. sink may be nil, in which case the
// configured OutputTarget/WriteStrategy select one of AtomicFileSink,
// InplaceFileSink, or StdoutSink(os.Stdout).
func NewPipeline(types *filetype.Registry, procs *processor.Registry, cfg config.Config, sink Sink) *Pipeline {
	if sink == nil {
		sink = defaultSink(cfg)
	}
	return &Pipeline{Types: types, Procs: procs, Cfg: cfg, Sink: sink}
}

func defaultSink(cfg config.Config) Sink {
	if cfg.OutputTarget == config.TargetStdout {
		return StdoutSink{W: os.Stdout}
	}
	if cfg.WriteStrategy == config.InplaceWrite {
		return InplaceFileSink{}
	}
	return AtomicFileSink{}
}

// ProcessFile runs the full per-file pipeline for path and op, returning
// the finished Context. Every step after Resolver gates on the prior
// step's status or the cooperative Halt flag, so each step is a no-op
// once an earlier one has decided the file is done.
func (p *Pipeline) ProcessFile(path string, op Operation, dryRun bool) *Context {
	ctx := NewContext(path, p.Cfg, dryRun)

	resolve(ctx, p.Types, p.Procs)
	sniff(ctx)
	read(ctx)
	scan(ctx)

	switch op {
	case OpStrip:
		strip(ctx)
	default:
		build(ctx)
		render(ctx)
		compare(ctx)
		plan(ctx)
	}

	patch(ctx)
	write(ctx, p.Sink)

	return ctx
}

// RunMany fans ProcessFile out across paths, bounded by jobs concurrent
// goroutines (golang.org/x/sync/semaphore), and returns every file's
// report sorted by path for deterministic output regardless of
// completion order.
func (p *Pipeline) RunMany(ctx context.Context, paths []string, op Operation, dryRun bool, jobs int64) (diagnostics.RunResult, error) {
	if jobs < 1 {
		jobs = 1
	}
	sem := semaphore.NewWeighted(jobs)
	g, gctx := errgroup.WithContext(ctx)

	reports := make([]diagnostics.FileReport, len(paths))
	var mu sync.Mutex

	for i, path := range paths {
		i, path := i, path
		if p.Git != nil && p.Git.SkipUnchanged(gctx, path) {
			reports[i] = diagnostics.FileReport{Path: path, Outcome: diagnostics.Unchanged}
			continue
		}
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			fc := p.ProcessFile(path, op, dryRun)
			mu.Lock()
			reports[i] = fc.Report()
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return diagnostics.RunResult{}, err
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].Path < reports[j].Path })
	return diagnostics.Summarize(reports), nil
}
