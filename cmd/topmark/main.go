// Command topmark is TopMark's CLI entrypoint: check/fix/diff/strip
// subcommands over the core pipeline, built on github.com/spf13/cobra
// for a multi-command surface with global and per-command flags.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/topmark-tools/topmark/internal/config"
	"github.com/topmark-tools/topmark/internal/diagnostics"
	"github.com/topmark-tools/topmark/internal/gitopt"
	"github.com/topmark-tools/topmark/internal/pipeline"
	"github.com/topmark-tools/topmark/internal/registry"
)

// Exit codes, mapped here at the CLI boundary: 0 success, 1 failure,
// 2 usage error, 3 would-change (dry run found pending changes).
const (
	exitSuccess     = 0
	exitFailure     = 1
	exitUsageError  = 2
	exitWouldChange = 3
)

type globalFlags struct {
	configPath string
	include    string
	exclude    string
	verbose    bool
	jobs       int64
	stdout     bool
	noGit      bool
}

func main() {
	os.Exit(run())
}

func run() int {
	var flags globalFlags

	root := &cobra.Command{
		Use:           "topmark",
		Short:         "Insert, update, verify, and remove structured file headers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to topmark.yaml (defaults to ./topmark.yaml)")
	root.PersistentFlags().StringVar(&flags.include, "include", "", "regex of paths to include (accepted but not applied: input paths are not filtered)")
	root.PersistentFlags().StringVar(&flags.exclude, "exclude", "", "regex of paths to exclude (accepted but not applied: input paths are not filtered)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "verbose diagnostic output")
	root.PersistentFlags().Int64Var(&flags.jobs, "jobs", 4, "maximum concurrent files processed")
	root.PersistentFlags().BoolVar(&flags.stdout, "stdout", false, "force output to stdout instead of writing files")
	root.PersistentFlags().BoolVar(&flags.noGit, "no-git", false, "disable the git-aware skip-unchanged optimization")

	exitCode := exitSuccess
	newRunner := func(apply, dryRunOnly bool) (*pipeline.Pipeline, error) {
		return buildPipeline(flags, apply, dryRunOnly)
	}

	root.AddCommand(checkCmd(&flags, newRunner, &exitCode))
	root.AddCommand(fixCmd(&flags, newRunner, &exitCode))
	root.AddCommand(diffCmd(&flags, newRunner, &exitCode))
	root.AddCommand(stripCmd(&flags, newRunner, &exitCode))

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "topmark: %v\n", err)
		return exitUsageError
	}
	return exitCode
}

func checkCmd(flags *globalFlags, newRunner func(apply, dryRunOnly bool) (*pipeline.Pipeline, error), exitCode *int) *cobra.Command {
	return &cobra.Command{
		Use:   "check [paths...]",
		Short: "Report files whose header is missing or out of date, without writing",
		RunE: func(cmd *cobra.Command, args []string) error {
			pl, err := newRunner(false, true)
			if err != nil {
				return err
			}
			return runAndReport(cmd.Context(), pl, args, pipeline.OpCheckOrFix, true, *flags, exitCode)
		},
	}
}

func fixCmd(flags *globalFlags, newRunner func(apply, dryRunOnly bool) (*pipeline.Pipeline, error), exitCode *int) *cobra.Command {
	return &cobra.Command{
		Use:   "fix [paths...]",
		Short: "Insert, update, or remove headers in place",
		RunE: func(cmd *cobra.Command, args []string) error {
			pl, err := newRunner(true, false)
			if err != nil {
				return err
			}
			return runAndReport(cmd.Context(), pl, args, pipeline.OpCheckOrFix, false, *flags, exitCode)
		},
	}
}

func diffCmd(flags *globalFlags, newRunner func(apply, dryRunOnly bool) (*pipeline.Pipeline, error), exitCode *int) *cobra.Command {
	return &cobra.Command{
		Use:   "diff [paths...]",
		Short: "Print a unified diff of the changes check/fix would make",
		RunE: func(cmd *cobra.Command, args []string) error {
			pl, err := newRunner(false, true)
			if err != nil {
				return err
			}
			return runAndReport(cmd.Context(), pl, args, pipeline.OpCheckOrFix, true, *flags, exitCode)
		},
	}
}

func stripCmd(flags *globalFlags, newRunner func(apply, dryRunOnly bool) (*pipeline.Pipeline, error), exitCode *int) *cobra.Command {
	var apply bool
	cmd := &cobra.Command{
		Use:   "strip [paths...]",
		Short: "Remove any TopMark header block, regardless of the configured fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			pl, err := newRunner(apply, !apply)
			if err != nil {
				return err
			}
			return runAndReport(cmd.Context(), pl, args, pipeline.OpStrip, !apply, *flags, exitCode)
		},
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "write the stripped content back (default: dry run)")
	return cmd
}

func buildPipeline(flags globalFlags, apply, _ bool) (*pipeline.Pipeline, error) {
	root, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getwd: %w", err)
	}
	cfg, err := config.Load(flags.configPath, root)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.ApplyChanges = apply
	if flags.stdout {
		cfg.OutputTarget = config.TargetStdout
	}

	types, procs := registry.Builtins()

	var sink pipeline.Sink
	if flags.stdout {
		sink = pipeline.StdoutSink{W: os.Stdout}
	}
	pl := pipeline.NewPipeline(types, procs, cfg, sink)

	if !flags.noGit {
		if gm, gerr := gitopt.New(context.Background(), root); gerr == nil {
			pl.Git = gm
		} else if flags.verbose {
			log.Printf("topmark: git-aware skip disabled: %v", gerr)
		}
	}

	return pl, nil
}

func runAndReport(ctx context.Context, pl *pipeline.Pipeline, args []string, op pipeline.Operation, dryRun bool, flags globalFlags, exitCode *int) error {
	paths, err := collectPaths(args)
	if err != nil {
		*exitCode = exitUsageError
		return err
	}
	if len(paths) == 0 {
		*exitCode = exitUsageError
		return fmt.Errorf("no input paths given")
	}

	result, err := pl.RunMany(ctx, paths, op, dryRun, flags.jobs)
	if err != nil {
		*exitCode = exitFailure
		return fmt.Errorf("run: %w", err)
	}

	for _, f := range result.Files {
		for _, d := range f.Diagnostics {
			if d.Level == diagnostics.Info && !flags.verbose {
				continue
			}
			fmt.Fprintf(os.Stderr, "%s: %s: %s\n", f.Path, d.Level, d.Message)
		}
		if f.Diff != "" {
			fmt.Print(f.Diff)
		}
		if flags.verbose && f.Outcome != diagnostics.Unchanged {
			fmt.Printf("%s: %s\n", f.Path, f.Outcome)
		}
	}

	switch {
	case result.Failed > 0:
		*exitCode = exitFailure
	case result.WouldChange > 0:
		*exitCode = exitWouldChange
	default:
		*exitCode = exitSuccess
	}
	return nil
}

func collectPaths(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}
	var paths []string
	for _, a := range args {
		info, err := os.Stat(a)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", a, err)
		}
		if !info.IsDir() {
			paths = append(paths, a)
			continue
		}
		err = filepath.Walk(a, func(p string, fi os.FileInfo, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if fi.IsDir() {
				if fi.Name() == ".git" {
					return filepath.SkipDir
				}
				return nil
			}
			paths = append(paths, p)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return paths, nil
}
