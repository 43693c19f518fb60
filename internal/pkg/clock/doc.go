// Package clock provides a tiny time abstraction.
//
// Business code depends on Clocker instead of calling time.Now directly, so
// tests can pass a Fixed clock and assert on deterministic timestamps.
package clock
