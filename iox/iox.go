// Package iox holds cleanup helpers for closers whose errors cannot change
// the outcome: response bodies, stores opened for one read, adapters being
// shut down.
package iox

import "io"

// DiscardClose closes c and drops the error. Intended for defer:
//
//	defer iox.DiscardClose(rc)
func DiscardClose(c io.Closer) { _ = c.Close() }

// CloseFunc returns a func that closes c, for t.Cleanup registration.
func CloseFunc(c io.Closer) func() {
	return func() { _ = c.Close() }
}

// DiscardErr runs fn and drops its error, for flushes such as a logger Sync.
func DiscardErr(fn func() error) { _ = fn() }
