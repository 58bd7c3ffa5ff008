package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/litani-build/litani/internal/model"
	"github.com/litani-build/litani/internal/registry"
	"github.com/litani-build/litani/internal/store"
	"github.com/urfave/cli/v2"
)

func (a *App) addJobCommand() *cli.Command {
	return &cli.Command{
		Name:      "add-job",
		Usage:     "register one job (or a --from-yaml batch) into the active run",
		ArgsUsage: "[-- command...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "command", Usage: "shell command; alternatively pass it after --"},
			&cli.StringFlag{Name: "pipeline-name"},
			&cli.StringFlag{Name: "ci-stage", Usage: "one of build, test, report"},
			&cli.StringFlag{Name: "working-dir"},
			&cli.StringSliceFlag{Name: "inputs"},
			&cli.StringSliceFlag{Name: "outputs"},
			&cli.IntFlag{Name: "timeout", Usage: "seconds; must be positive if set"},
			&cli.BoolFlag{Name: "timeout-ok"},
			&cli.BoolFlag{Name: "timeout-ignore"},
			&cli.BoolFlag{Name: "interleave-stdout-stderr"},
			&cli.StringSliceFlag{Name: "ignore-returns"},
			&cli.StringSliceFlag{Name: "ok-returns"},
			&cli.StringFlag{Name: "description"},
			&cli.StringSliceFlag{Name: "tags"},
			&cli.StringFlag{Name: "stdout-file"},
			&cli.StringFlag{Name: "stderr-file"},
			&cli.StringFlag{Name: "from-yaml", Usage: "register every job listed in this YAML batch file instead of one job from flags"},
		},
		Action: a.runAddJob,
	}
}

func (a *App) runAddJob(ctx *cli.Context) error {
	paths, err := store.Current()
	if err != nil {
		return err
	}

	if batchPath := ctx.String("from-yaml"); batchPath != "" {
		return a.addJobBatch(paths, batchPath)
	}

	d, err := descriptorFromFlags(ctx)
	if err != nil {
		return err
	}

	if err := registry.Register(paths, d); err != nil {
		return err
	}
	a.logger.Info().Str("job_id", d.JobID).Str("pipeline", d.PipelineName).Msg("job registered")
	fmt.Println(d.JobID)
	return nil
}

func (a *App) addJobBatch(paths store.Paths, batchPath string) error {
	descriptors, err := registry.LoadBatch(batchPath)
	if err != nil {
		return err
	}
	for _, d := range descriptors {
		if err := registry.Register(paths, d); err != nil {
			return err
		}
		a.logger.Info().Str("job_id", d.JobID).Str("pipeline", d.PipelineName).Msg("job registered")
		fmt.Println(d.JobID)
	}
	return nil
}

// descriptorFromFlags builds a JobDescriptor from the parsed flags. Per
// spec.md ^4.8, a command passed after "--" in the outer argv takes
// precedence over --command and is not itself subject to flag parsing.
func descriptorFromFlags(ctx *cli.Context) (*model.JobDescriptor, error) {
	command := ctx.String("command")
	if trailing := ctx.Args().Slice(); len(trailing) > 0 {
		command = strings.Join(trailing, " ")
	}

	ignoreReturns, err := parseInts(ctx.StringSlice("ignore-returns"))
	if err != nil {
		return nil, fmt.Errorf("add-job: --ignore-returns: %w", err)
	}
	okReturns, err := parseInts(ctx.StringSlice("ok-returns"))
	if err != nil {
		return nil, fmt.Errorf("add-job: --ok-returns: %w", err)
	}

	timeout := ctx.Int("timeout")
	if timeout < 0 {
		return nil, fmt.Errorf("add-job: --timeout must be a positive integer, got %d", timeout)
	}

	return &model.JobDescriptor{
		Command:                command,
		PipelineName:           ctx.String("pipeline-name"),
		CIStage:                model.CIStage(ctx.String("ci-stage")),
		WorkingDir:             ctx.String("working-dir"),
		Inputs:                 ctx.StringSlice("inputs"),
		Outputs:                ctx.StringSlice("outputs"),
		TimeoutSeconds:         timeout,
		TimeoutOk:              ctx.Bool("timeout-ok"),
		TimeoutIgnore:          ctx.Bool("timeout-ignore"),
		InterleaveStdoutStderr: ctx.Bool("interleave-stdout-stderr"),
		IgnoreReturns:          ignoreReturns,
		OkReturns:              okReturns,
		Description:            ctx.String("description"),
		Tags:                   ctx.StringSlice("tags"),
		StdoutFile:             ctx.String("stdout-file"),
		StderrFile:             ctx.String("stderr-file"),
	}, nil
}

func parseInts(raw []string) ([]int, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]int, 0, len(raw))
	for _, s := range raw {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer: %w", s, err)
		}
		out = append(out, n)
	}
	return out, nil
}
