package parse

import (
	"errors"
	"fmt"
	"time"
)

// Message is one chat line that matched the grammar. Time is a wall-clock
// moment with no zone attached; it is always carried in time.UTC so that
// comparisons never shift it.
type Message struct {
	Sender string
	Time   time.Time
	Body   string
}

// ErrNoMatch is returned by ParseLine for lines that are not messages.
var ErrNoMatch = errors.New("line does not match message grammar")

// TimestampError reports a line that matched the grammar but whose
// timestamp does not resolve to a calendar moment.
type TimestampError struct {
	Raw string
	Err error
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("parse timestamp %q: %v", e.Raw, e.Err)
}

func (e *TimestampError) Unwrap() error { return e.Err }

// Naive drops the zone of t and keeps its wall clock.
func Naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
