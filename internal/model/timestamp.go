package model

import (
	"strings"
	"time"
)

// TimeFormat is the single timestamp format used across every persisted
// JSON document in this repository (spec.md ^6: "the implementation must
// pick one format string and use it everywhere").
const TimeFormat = "2006-01-02T15:04:05.000Z"

// Timestamp is a UTC instant serialized with TimeFormat, never with
// time.RFC3339Nano or any other variant.
type Timestamp struct {
	time.Time
}

// Now returns the current UTC instant as a Timestamp.
func Now() Timestamp {
	return Timestamp{time.Now().UTC()}
}

// NewTimestamp converts t to UTC for consistent round-tripping.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t.UTC()}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + t.Time.UTC().Format(TimeFormat) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(TimeFormat, s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// IsZero reports whether the timestamp was never set.
func (t Timestamp) IsZero() bool {
	return t.Time.IsZero()
}
