// Package coordinator drives run-build: materialize the graph, spawn the
// external executor, wait, finalize run status (spec.md ^4.5). Grounded
// on perfgo/cli/cli.go's top-level runTest, which similarly owns setup,
// dispatch to a subprocess, and a deferred finalize-and-record step.
package coordinator

import (
	"bytes"
	"context"
	"fmt"
	"os"
	osexec "os/exec"
	"sync"

	"github.com/litani-build/litani/internal/atomicfile"
	"github.com/litani-build/litani/internal/graph"
	"github.com/litani-build/litani/internal/model"
	"github.com/litani-build/litani/internal/registry"
	"github.com/litani-build/litani/internal/reporter"
	"github.com/litani-build/litani/internal/store"
	"github.com/rs/zerolog"
)

// Options configures one run-build invocation.
type Options struct {
	Paths                 store.Paths
	BinaryPath            string
	Parallelism           int // 0 == unbounded
	DryRun                bool
	Pipelines             []string // mutually exclusive with CIStage
	CIStage               string
	OutFile               string
	FailOnPipelineFailure bool
	ReporterPeriod        int // seconds, 0 == reporter.DefaultPeriod
	Render                func(path string)
	Logger                zerolog.Logger
}

// Result is what run-build reports back to the CLI layer for exit-code
// decisions (spec.md ^6: "run-build exits 0 unless --fail-on-pipeline-
// failure is set and the executor failed").
type Result struct {
	RunStatus      model.RunStatus
	ExecutorFailed bool
}

// Run executes spec.md ^4.5's algorithm end to end.
func Run(ctx context.Context, opts Options) (Result, error) {
	run, err := loadRun(opts.Paths)
	if err != nil {
		return Result{}, err
	}

	descriptors, err := registry.LoadAll(opts.Paths)
	if err != nil {
		return Result{}, fmt.Errorf("coordinator: load job descriptors: %w", err)
	}
	run.Jobs = descriptors

	if err := atomicfile.WriteJSON(opts.Paths.CacheFile(), run); err != nil {
		return Result{}, fmt.Errorf("coordinator: write cache.json: %w", err)
	}

	var ninjaBuf bytes.Buffer
	if err := graph.Emit(opts.Paths, opts.BinaryPath, descriptors, &ninjaBuf); err != nil {
		return Result{}, fmt.Errorf("coordinator: emit graph: %w", err)
	}
	if err := atomicfile.Write(opts.Paths.NinjaFile(), ninjaBuf.Bytes()); err != nil {
		return Result{}, fmt.Errorf("coordinator: write ninja file: %w", err)
	}

	reporterCfg := reporter.Config{
		Paths:   opts.Paths,
		OutFile: opts.OutFile,
		Logger:  opts.Logger,
		Render:  opts.Render,
	}
	if opts.ReporterPeriod > 0 {
		reporterCfg.Period = secondsToDuration(opts.ReporterPeriod)
	}

	reporter.Once(reporterCfg) // initial snapshot, before the executor starts

	reportCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		reporter.Run(reportCtx, reporterCfg)
	}()

	executorErr := runNinja(ctx, opts)

	cancel()
	wg.Wait()

	run.EndTime = model.Now()
	status, err := finalStatus(opts.Paths, scopedDescriptors(opts, descriptors))
	if err != nil {
		return Result{}, fmt.Errorf("coordinator: compute final status: %w", err)
	}
	run.Status = status
	if err := atomicfile.WriteJSON(opts.Paths.CacheFile(), run); err != nil {
		opts.Logger.Error().Err(err).Msg("coordinator: failed to write final cache.json")
	}

	reporter.Once(reporterCfg) // final snapshot, after the executor has exited

	return Result{RunStatus: status, ExecutorFailed: executorErr != nil}, nil
}

func loadRun(paths store.Paths) (*model.Run, error) {
	data, err := os.ReadFile(paths.CacheFile())
	if err != nil {
		return nil, fmt.Errorf("coordinator: read cache.json: %w", err)
	}
	var run model.Run
	if err := model.DecodeStrict(data, &run); err != nil {
		return nil, fmt.Errorf("coordinator: decode cache.json: %w", err)
	}
	return &run, nil
}

// runNinja spawns the external DAG executor with keep-going semantics so
// one job's failure never stops the rest of the graph (spec.md ^4.5).
func runNinja(ctx context.Context, opts Options) error {
	cmd := osexec.CommandContext(ctx, "ninja", ninjaArgs(opts)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// ninjaArgs builds the argument list for the external executor. -j is
// always passed literally: ninja's own CLI maps -j 0 to unbounded
// parallelism, matching Options.Parallelism's documented "0 == unbounded"
// (omitting -j entirely would instead fall back to ninja's CPU-derived
// default).
func ninjaArgs(opts Options) []string {
	args := []string{"-k", "0", "-f", opts.Paths.NinjaFile(), "-j", fmt.Sprintf("%d", opts.Parallelism)}
	if opts.DryRun {
		args = append(args, "-n")
	}
	return append(args, targets(opts)...)
}

// targets resolves the mutually exclusive pipeline/ci-stage selectors
// into the phony aggregate names the Graph Emitter produced (spec.md
// ^4.5).
func targets(opts Options) []string {
	if opts.CIStage != "" {
		return []string{graph.CIStageTarget(opts.CIStage)}
	}
	targets := make([]string, 0, len(opts.Pipelines))
	for _, p := range opts.Pipelines {
		targets = append(targets, graph.PipelineTarget(p))
	}
	return targets
}
