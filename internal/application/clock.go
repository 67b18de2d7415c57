package application

import "time"

// Clock is the time source for services; tests pass a fixed one
type Clock interface {
	Now() time.Time
}

// SystemClock implementasi default, pakai time.Now() dalam UTC
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Elapsed is the time since start on c, in milliseconds
func Elapsed(c Clock, start time.Time) int64 {
	return c.Now().Sub(start).Milliseconds()
}
