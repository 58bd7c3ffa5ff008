package cli

import (
	"fmt"

	"github.com/litani-build/litani/internal/atomicfile"
	"github.com/litani-build/litani/internal/model"
	"github.com/litani-build/litani/internal/store"
	"github.com/urfave/cli/v2"
)

func (a *App) initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "create a new run and publish it as the active run",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "project-name", Required: true, Usage: "label for the new run"},
		},
		Action: a.runInit,
	}
}

func (a *App) runInit(ctx *cli.Context) error {
	projectName := ctx.String("project-name")

	runID, err := store.NewRunID()
	if err != nil {
		return err
	}
	paths := store.ForRunID(runID)
	if err := paths.Create(); err != nil {
		return err
	}

	run := &model.Run{
		RunID:       runID,
		ProjectName: projectName,
		Version:     model.CurrentSchemaVersion,
		StartTime:   model.Now(),
		Status:      model.RunStatusInProgress,
		Jobs:        []*model.JobDescriptor{},
	}
	if err := atomicfile.WriteJSON(paths.CacheFile(), run); err != nil {
		return fmt.Errorf("init: write cache.json: %w", err)
	}

	if err := store.SetCurrent(paths); err != nil {
		return fmt.Errorf("init: publish run as active: %w", err)
	}

	a.logger.Info().Str("run_id", runID).Str("project", projectName).Msg("run initialized")
	fmt.Println(runID)
	return nil
}
