package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeStrictRejectsUnknownFields(t *testing.T) {
	data := []byte(`{"job_id": "a", "command": "echo hi", "pipeline_name": "p", "ci_stage": "build", "status_file": "/tmp/s.json", "bogus_field": 1}`)

	var d JobDescriptor
	err := DecodeStrict(data, &d)
	require.Error(t, err)
}

func TestDecodeStrictAcceptsKnownFields(t *testing.T) {
	data := []byte(`{"job_id": "a", "command": "echo hi", "pipeline_name": "p", "ci_stage": "build", "status_file": "/tmp/s.json"}`)

	var d JobDescriptor
	require.NoError(t, DecodeStrict(data, &d))
	require.Equal(t, "echo hi", d.Command)
}

func TestEncodeIndentIsStable(t *testing.T) {
	d := &JobDescriptor{JobID: "a", Command: "echo hi", PipelineName: "p", CIStage: StageBuild}
	data, err := EncodeIndent(d)
	require.NoError(t, err)
	require.Contains(t, string(data), "\n  \"job_id\": \"a\"")
}
