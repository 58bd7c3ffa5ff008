// Package cli implements CLI Dispatch (spec.md ^4.8): parsing the four
// core subcommands (plus the read-only status command) and routing to the
// Job Registry, Graph Emitter, Execution Wrapper, and Run Coordinator. Grounded on perfgo/cli/cli.go's App
// struct (embedded zerolog logger + *cli.App, a Before hook that flips
// the global log level, SetVersion) -- generalized from perfgo's single
// "test" command tree to litani's init/add-job/run-build/exec.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/litani-build/litani/internal/model"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const AppName = "litani"

// App wraps the urfave/cli application with the logger every subcommand
// shares, exactly as perfgo/cli/cli.go's App does.
type App struct {
	logger zerolog.Logger
	cli    *cli.App
}

func init() {
	// -V is the version flag in this tool; -v is reserved for --verbose,
	// unlike urfave/cli's default of mapping --version to -v.
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the schema version and exit",
	}
}

// New builds the litani CLI application.
func New() *App {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger := log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339Nano,
	})

	app := &App{logger: logger}
	app.cli = &cli.App{
		Name:    AppName,
		Usage:   "incremental build-graph orchestrator",
		Version: model.CurrentSchemaVersion.String(),
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "enable verbose (debug) logging"},
			&cli.BoolFlag{Name: "very-verbose", Aliases: []string{"w"}, Usage: "enable trace logging"},
		},
		Before: func(ctx *cli.Context) error {
			switch {
			case ctx.Bool("very-verbose"):
				zerolog.SetGlobalLevel(zerolog.TraceLevel)
			case ctx.Bool("verbose"):
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			return nil
		},
	}

	app.cli.Commands = []*cli.Command{
		app.initCommand(),
		app.addJobCommand(),
		app.runBuildCommand(),
		app.execCommand(),
		app.statusCommand(),
	}

	return app
}

// Run parses argv and dispatches to the matched subcommand.
func (a *App) Run(args []string) error {
	return a.cli.Run(args)
}

// renderSnapshot is the Reporter Loop's renderer hook. HTML/JSON report
// rendering templates are an external collaborator (spec.md ^1); this
// binary only logs that a snapshot was published.
func (a *App) renderSnapshot(snapshotPath string) {
	a.logger.Debug().Str("snapshot", snapshotPath).Msg("run snapshot published")
}

// binaryPath resolves the absolute path to the currently running
// executable, used by the Graph Emitter to build each job's re-invocation
// command (spec.md ^4.3).
func binaryPath() (string, error) {
	p, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("cli: resolve executable path: %w", err)
	}
	return p, nil
}
