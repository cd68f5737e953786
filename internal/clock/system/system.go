// Package system provides the wall clock used outside tests.
package system

import "time"

// Clock implements crawler.Clock and orchestrator.Clock using time.Now.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time in UTC, truncated to milliseconds so that
// timestamps survive a JSON round trip unchanged.
func (Clock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
