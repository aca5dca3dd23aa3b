// Package clock abstracts the wall clock so backup names are deterministic
// under test.
package clock

import "time"

// Clock returns the current time
type Clock interface {
	Now() time.Time
}

// Real reads the system time
type Real struct{}

// Now returns the current system time
func (Real) Now() time.Time {
	return time.Now()
}

// Fake returns a fixed time until moved
type Fake struct {
	current time.Time
}

// NewFake creates a Fake fixed at t
func NewFake(t time.Time) *Fake {
	return &Fake{current: t}
}

// Now returns the fixed time
func (c *Fake) Now() time.Time {
	return c.current
}

// Set replaces the fixed time
func (c *Fake) Set(t time.Time) {
	c.current = t
}

// Advance moves the fixed time forward by d
func (c *Fake) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}
