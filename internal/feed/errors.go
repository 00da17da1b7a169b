package feed

import (
	"errors"
	"fmt"
)

// ErrEmptyTaskID is returned when a download URL is requested without a task id
var ErrEmptyTaskID = errors.New("task_id is required")

// FetchError is a failed request to the media backend: a transport error,
// a non-success status, or an undecodable body.
type FetchError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFetchError reports whether err came from the feed client
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
