// Package clock provides the process-wide notion of "today".
//
// Every filename the bridge resolves is derived from a date token read from a
// Clock. Production code uses System; tests inject Fixed so path resolution is
// deterministic.
package clock

import "time"

// TokenLayout is the DDMMYY layout used to instantiate filename templates.
const TokenLayout = "020106"

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock.
type System struct{}

// Now implements Clock.
func (System) Now() time.Time { return time.Now() }

// Fixed always reports the same instant.
type Fixed struct {
	T time.Time
}

// Now implements Clock.
func (f Fixed) Now() time.Time { return f.T }

// Token returns today's DDMMYY token. It is never cached: a new calendar day
// immediately changes the token.
func Token(c Clock) string {
	return c.Now().Format(TokenLayout)
}

// Timestamp formats t as the ISO-8601 generation timestamp embedded in
// artifacts and reports.
func Timestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}
