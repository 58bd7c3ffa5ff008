package model

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestJobDescriptorJSONRoundTrip(t *testing.T) {
	in := &JobDescriptor{
		JobID:          "j1",
		Command:        "echo hi",
		PipelineName:   "p",
		CIStage:        StageBuild,
		Inputs:         []string{"a.txt", "b.txt"},
		Outputs:        []string{"out.txt"},
		TimeoutSeconds: 30,
		IgnoreReturns:  []int{2},
		OkReturns:      []int{3},
		Tags:           []string{"slow"},
		StatusFile:     "/run/status/j1.json",
	}

	data, err := EncodeIndent(in)
	require.NoError(t, err)

	var out JobDescriptor
	require.NoError(t, DecodeStrict(data, &out))

	if diff := cmp.Diff(in, &out); diff != "" {
		t.Errorf("JobDescriptor round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRunJSONRoundTrip(t *testing.T) {
	in := &Run{
		RunID:       "r1",
		ProjectName: "proj",
		Version:     CurrentSchemaVersion,
		StartTime:   NewTimestamp(time.Date(2026, 8, 3, 12, 0, 0, 500_000_000, time.UTC)),
		Status:      RunStatusInProgress,
		Jobs: []*JobDescriptor{
			{JobID: "j1", Command: "echo hi", PipelineName: "p", CIStage: StageBuild, StatusFile: "/run/status/j1.json"},
		},
	}

	data, err := EncodeIndent(in)
	require.NoError(t, err)

	var out Run
	require.NoError(t, DecodeStrict(data, &out))

	// Run embeds Timestamp, which wraps time.Time's unexported fields --
	// go-cmp would need a dedicated Equal-method match that Timestamp
	// doesn't provide, so plain reflect-based equality (require.Equal)
	// is used here instead of cmp.Diff.
	require.Equal(t, in, &out)
}
