package job

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Job is one unit of server-side media work as reported by GET /photos.
// Fetched jobs are treated as immutable snapshots.
type Job struct {
	TaskID     string    `json:"task_id"`
	Filename   string    `json:"filename"`
	Status     Status    `json:"status"`
	FileSizeMB float64   `json:"file_size_mb"`
	CreatedAt  Timestamp `json:"created_at"`
}

// ListResponse is the body of GET /photos
type ListResponse struct {
	Videos []Job `json:"videos"`
}

// Timestamp accepts RFC 3339 as well as the naive ISO forms some backends emit.
// Naive values are read as UTC.
type Timestamp struct {
	time.Time
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// NewTimestamp wraps t
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp parses one of the accepted layouts
func ParseTimestamp(value string) (Timestamp, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return Timestamp{Time: t}, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q", value)
}

// UnmarshalJSON implements json.Unmarshaler
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("created_at is required")
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("created_at must be a string: %w", err)
	}

	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}

// MarshalJSON implements json.Marshaler
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.UTC().Format(time.RFC3339))
}
