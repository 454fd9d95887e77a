package client

import "time"

// Clock provides time operations (injectable for testing)
type Clock interface {
	Now() time.Time
}

// realClock implements Clock using actual system time
type realClock struct{}

// Now returns the current system time
func (realClock) Now() time.Time {
	return time.Now()
}
