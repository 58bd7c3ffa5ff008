// Package reporter implements the Reporter Loop: a background worker
// that periodically rebuilds the Run Snapshot and writes atomic JSON
// snapshots while execution proceeds (spec.md ^4.6). Grounded on
// ovh-cds/engine/hooks/scheduler_clean_old_repository_event.go's
// time.NewTicker + select{ case <-ctx.Done(): ...; case <-tick: ...}
// shape. spec.md ^9's REDESIGN FLAG asks for a configurable tick period
// with bounded jitter, so unlike the teacher's fixed hourly tick, Period
// is a constructor parameter and each tick is nudged by up to 100ms.
package reporter

import (
	"context"
	"math/rand"
	"time"

	"github.com/litani-build/litani/internal/atomicfile"
	"github.com/litani-build/litani/internal/snapshot"
	"github.com/litani-build/litani/internal/store"
	"github.com/rs/zerolog"
)

// DefaultPeriod is the tick period spec.md ^4.6 specifies ("every two
// seconds").
const DefaultPeriod = 2 * time.Second

const maxJitter = 100 * time.Millisecond

// Config configures one Reporter Loop run. Render is injected by the
// caller and given the path of the snapshot just written; this
// repository's reporter is agnostic to how a snapshot is turned into a
// human-facing report (spec.md ^1: rendering templates are an external
// collaborator).
type Config struct {
	Paths   store.Paths
	Period  time.Duration
	OutFile string
	Logger  zerolog.Logger
	Render  func(path string)
}

// Run blocks, rebuilding and publishing a snapshot every tick, until ctx
// is canceled -- the Coordinator's one-shot stop signal, expressed as a
// context per this codebase's idiom rather than the teacher's explicit
// stop-event channel (spec.md ^5: "Signaled termination: a single-shot
// event set by the Coordinator; the loop exits at the next check").
func Run(ctx context.Context, cfg Config) {
	period := cfg.Period
	if period <= 0 {
		period = DefaultPeriod
	}

	for {
		tick(cfg)
		jitter := time.Duration(rand.Int63n(int64(maxJitter)))
		select {
		case <-ctx.Done():
			tick(cfg) // final snapshot after the executor has exited
			return
		case <-time.After(period + jitter):
		}
	}
}

// Once performs a single snapshot rebuild-and-publish cycle, used by the
// Coordinator for the initial snapshot (before the executor starts) and
// the final one (after it exits), as well as by each tick of Run.
func Once(cfg Config) {
	tick(cfg)
}

func tick(cfg Config) {
	snap, err := snapshot.Build(cfg.Paths)
	if err != nil {
		// spec.md ^7: "Reporter errors -- must not kill the run; logged
		// and retried on next tick."
		cfg.Logger.Warn().Err(err).Msg("reporter: failed to build snapshot, will retry next tick")
		return
	}

	if err := atomicfile.WriteJSON(cfg.Paths.SnapshotFile(), snap); err != nil {
		cfg.Logger.Warn().Err(err).Msg("reporter: failed to write run.json")
	}
	if cfg.OutFile != "" {
		if err := atomicfile.WriteJSON(cfg.OutFile, snap); err != nil {
			cfg.Logger.Warn().Err(err).Msg("reporter: failed to write --out-file")
		}
	}
	if cfg.Render != nil {
		cfg.Render(cfg.Paths.SnapshotFile())
	}
}
