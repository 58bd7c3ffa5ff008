package cli

import (
	"fmt"
	"os"

	"github.com/litani-build/litani/internal/exec"
	"github.com/litani-build/litani/internal/model"
	"github.com/litani-build/litani/internal/store"
	"github.com/urfave/cli/v2"
)

func (a *App) execCommand() *cli.Command {
	return &cli.Command{
		Name:   "exec",
		Usage:  "run one job's command and publish its status file (invoked by the DAG executor, not usually by hand)",
		Hidden: true,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "descriptor", Required: true, Usage: "path to the job descriptor JSON file"},
		},
		Action: a.runExec,
	}
}

func (a *App) runExec(ctx *cli.Context) error {
	descriptorPath := ctx.String("descriptor")
	data, err := os.ReadFile(descriptorPath)
	if err != nil {
		return fmt.Errorf("exec: read descriptor %s: %w", descriptorPath, err)
	}
	var d model.JobDescriptor
	if err := model.DecodeStrict(data, &d); err != nil {
		return fmt.Errorf("exec: decode descriptor %s: %w", descriptorPath, err)
	}

	paths, err := store.Current()
	if err != nil {
		return err
	}

	wrapperCode := exec.Run(ctx.Context, exec.Options{
		Descriptor:  &d,
		Paths:       paths,
		WrapperArgs: append([]string{"--descriptor", descriptorPath}, ctx.Args().Slice()...),
		Logger:      a.logger,
	})

	os.Exit(wrapperCode)
	return nil
}
