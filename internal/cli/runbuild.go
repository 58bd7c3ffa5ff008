package cli

import (
	"fmt"
	"os"

	"github.com/litani-build/litani/internal/coordinator"
	"github.com/litani-build/litani/internal/store"
	"github.com/urfave/cli/v2"
)

func (a *App) runBuildCommand() *cli.Command {
	return &cli.Command{
		Name:  "run-build",
		Usage: "materialize the graph, run it, and finalize the run's status",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "parallelism", Aliases: []string{"j"}, Usage: "0 means unbounded"},
			&cli.BoolFlag{Name: "dry-run", Aliases: []string{"n"}, Usage: "pretend all jobs succeed"},
			&cli.StringSliceFlag{Name: "pipelines", Usage: "restrict execution to these pipelines (mutually exclusive with --ci-stage)"},
			&cli.StringFlag{Name: "ci-stage", Usage: "restrict execution to this CI stage (mutually exclusive with --pipelines)"},
			&cli.StringFlag{Name: "out-file", Usage: "additional path the Reporter Loop writes each snapshot to"},
			&cli.BoolFlag{Name: "fail-on-pipeline-failure", Usage: "exit non-zero if the executor failed"},
		},
		Action: a.runRunBuild,
	}
}

func (a *App) runRunBuild(ctx *cli.Context) error {
	paths, err := store.Current()
	if err != nil {
		return err
	}

	pipelines := ctx.StringSlice("pipelines")
	ciStage := ctx.String("ci-stage")
	if len(pipelines) > 0 && ciStage != "" {
		return fmt.Errorf("run-build: --pipelines and --ci-stage are mutually exclusive")
	}

	binary, err := binaryPath()
	if err != nil {
		return err
	}

	result, err := coordinator.Run(ctx.Context, coordinator.Options{
		Paths:                 paths,
		BinaryPath:            binary,
		Parallelism:           ctx.Int("parallelism"),
		DryRun:                ctx.Bool("dry-run"),
		Pipelines:             pipelines,
		CIStage:               ciStage,
		OutFile:               ctx.String("out-file"),
		FailOnPipelineFailure: ctx.Bool("fail-on-pipeline-failure"),
		Logger:                a.logger,
		Render:                a.renderSnapshot,
	})
	if err != nil {
		return err
	}

	a.logger.Info().Str("status", string(result.RunStatus)).Msg("run finished")

	if ctx.Bool("fail-on-pipeline-failure") && result.ExecutorFailed {
		os.Exit(1)
	}
	return nil
}
