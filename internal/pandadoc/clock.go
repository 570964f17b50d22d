package pandadoc

import "time"

// Clock abstracts time for the poll loop so tests can drive it without
// sleeping.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// PollPolicy is the explicit retry policy for document readiness: query on a
// fixed interval until ready, terminal error, or the ceiling elapses.
type PollPolicy struct {
	Interval time.Duration
	MaxWait  time.Duration
}
