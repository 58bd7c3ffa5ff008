// Package graph translates a registered job set into a Ninja-format DAG
// description consumable by an external incremental build executor
// (spec.md ^4.3). Grounded on perfgo/cli/perf/stat.go's pattern of
// building an argument slice and then shell-quoting it into one command
// string (BuildStatArgs/BuildStatCommand); the nodes-plus-edges shape
// mirrors specialistvlad-burstgridgo/internal/dag/dag.go, though its
// cycle-detection algorithm is not reused -- ninja itself rejects cycles
// at build time, so only the conceptual shape carries over.
package graph

import (
	"fmt"
	"io"
	"sort"

	"al.essio.dev/pkg/shellescape"
	"github.com/litani-build/litani/internal/model"
	"github.com/litani-build/litani/internal/store"
)

// PipelineTarget returns the phony aggregate name for a pipeline.
func PipelineTarget(pipeline string) string {
	return "__litani_pipeline_name_" + pipeline
}

// CIStageTarget returns the phony aggregate name for a CI stage.
func CIStageTarget(stage string) string {
	return "__litani_ci_stage_" + stage
}

// Emit writes a litani.ninja-shaped build file for descriptors to w.
// binaryPath is the absolute path to this same binary, re-invoked per
// job as `exec --descriptor <path>` (DESIGN.md open question 4: passing
// a descriptor file path rather than a flag-per-field command line
// avoids the quoting hazard spec.md ^9 warns about; shellescape is still
// exercised to quote the descriptor path itself and the binary path).
func Emit(paths store.Paths, binaryPath string, descriptors []*model.JobDescriptor, w io.Writer) error {
	bw := &errWriter{w: w}

	fmt.Fprintln(bw, "# generated by litani run-build -- do not edit")
	fmt.Fprintln(bw)

	pipelineOutputs := map[string][]string{}
	stageOutputs := map[string][]string{}

	for _, d := range descriptors {
		if err := emitJob(bw, paths, binaryPath, d); err != nil {
			return err
		}

		outs := jobOutputs(paths, d)
		pipelineOutputs[d.PipelineName] = append(pipelineOutputs[d.PipelineName], outs...)
		stageOutputs[string(d.CIStage)] = append(stageOutputs[string(d.CIStage)], outs...)
	}

	emitPhonyAggregates(bw, pipelineOutputs, PipelineTarget)
	emitPhonyAggregates(bw, stageOutputs, CIStageTarget)

	return bw.err
}

// jobOutputs returns descriptor.outputs ^ {status_file}, the set that
// makes this build edge reachable even for jobs with no declared outputs
// (spec.md ^4.3: "still produce a status-file output and so remain
// reachable").
func jobOutputs(paths store.Paths, d *model.JobDescriptor) []string {
	outs := make([]string, 0, len(d.Outputs)+1)
	outs = append(outs, d.Outputs...)
	outs = append(outs, paths.StatusFile(d.JobID))
	return outs
}

func emitJob(w io.Writer, paths store.Paths, binaryPath string, d *model.JobDescriptor) error {
	descriptorPath := paths.JobFile(d.JobID)

	fmt.Fprintf(w, "rule %s\n", d.JobID)
	fmt.Fprintf(w, "  command = %s exec --descriptor %s\n",
		shellescape.Quote(binaryPath), shellescape.Quote(descriptorPath))
	if d.Description != "" {
		fmt.Fprintf(w, "  description = %s\n", d.Description)
	} else {
		fmt.Fprintf(w, "  description = %s\n", d.JobID)
	}

	outs := jobOutputs(paths, d)
	fmt.Fprintf(w, "build %s: %s", joinPaths(outs), d.JobID)
	for _, in := range d.Inputs {
		fmt.Fprintf(w, " %s", ninjaEscapePath(in))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)
	return nil
}

func emitPhonyAggregates(w io.Writer, outputsByKey map[string][]string, target func(string) string) {
	keys := make([]string, 0, len(outputsByKey))
	for k := range outputsByKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		outs := append([]string(nil), outputsByKey[key]...)
		sort.Strings(outs) // spec.md ^4.3: "inputs of phony targets are emitted in sorted order for determinism"
		fmt.Fprintf(w, "build %s: phony %s\n", target(key), joinPaths(outs))
	}
}

func joinPaths(paths []string) string {
	out := ""
	for i, p := range paths {
		if i > 0 {
			out += " "
		}
		out += ninjaEscapePath(p)
	}
	return out
}

// ninjaEscapePath escapes the handful of characters that are special in
// a ninja path token ($, space and colon); this is distinct from shellescape,
// which quotes for a POSIX shell, not for ninja's own lexer.
func ninjaEscapePath(p string) string {
	out := make([]byte, 0, len(p))
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c == '$' || c == ' ' || c == ':' {
			out = append(out, '$')
		}
		out = append(out, c)
	}
	return string(out)
}

// errWriter lets Emit's helpers call fmt.Fprint* without individually
// checking each error; the first failure is latched and returned once.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}
