package idle

import (
	"fmt"
	"time"
)

// UnavailableError reports that an idle source could not reach the session
// it is supposed to observe.
type UnavailableError struct {
	Source string
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("idle source %s unavailable", e.Source)
	}
	return fmt.Sprintf("idle source %s unavailable: %v", e.Source, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

func unavailable(source string, err error) error {
	return &UnavailableError{Source: source, Err: err}
}

// Seconds converts an idle sample to whole seconds. Fractions are truncated,
// so a deadline computed from the result can only be late, never early.
func Seconds(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}
