package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeStrict parses data into v, rejecting unknown fields. Every
// persisted document in this repository is a closed record (spec.md ^9
// REDESIGN FLAG: "Dynamic descriptor shape" -> closed record, unknown
// fields treated as errors), so this is the one decode path used
// throughout, never a bare json.Unmarshal.
func DecodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	return nil
}

// EncodeIndent serializes v as pretty-printed, 2-space-indented JSON
// (spec.md ^6: "All JSON, UTF-8, pretty-printed with 2-space indentation").
func EncodeIndent(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return data, nil
}
