package cli

import (
	"fmt"
	"os"

	"github.com/litani-build/litani/internal/model"
	"github.com/litani-build/litani/internal/store"
	"github.com/urfave/cli/v2"
)

func (a *App) statusCommand() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "print one job's status file from the active run",
		ArgsUsage: "<job-id>",
		Action:    a.runStatus,
	}
}

func (a *App) runStatus(ctx *cli.Context) error {
	jobID := ctx.Args().First()
	if jobID == "" {
		return fmt.Errorf("status: a job id is required")
	}

	paths, err := store.Current()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(paths.StatusFile(jobID))
	if err != nil {
		return fmt.Errorf("status: no status for job %s: %w", jobID, err)
	}
	var s model.JobStatus
	if err := model.DecodeStrict(data, &s); err != nil {
		return fmt.Errorf("status: decode %s: %w", jobID, err)
	}

	state := "unstarted"
	switch {
	case s.Complete:
		state = "finished"
	case !s.StartTime.IsZero():
		state = "started"
	}

	mark := "✓"
	if s.WrapperReturnCode != 0 {
		mark = "✗"
	}

	fmt.Printf("%s  job=%s  state=%s\n", mark, s.JobID, state)
	fmt.Printf("   command_return_code=%d  wrapper_return_code=%d  timeout_reached=%t\n",
		s.CommandReturnCode, s.WrapperReturnCode, s.TimeoutReached)
	if s.Complete {
		fmt.Printf("   duration=%.3fs\n", s.DurationSeconds)
	}
	for _, line := range s.Stdout {
		fmt.Printf("   stdout| %s\n", line)
	}
	for _, line := range s.Stderr {
		fmt.Printf("   stderr| %s\n", line)
	}

	if s.Complete && !s.Success() {
		os.Exit(1)
	}
	return nil
}
