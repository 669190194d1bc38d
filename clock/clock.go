// Package clock provides the trivial "what time is it" and date-formatting
// helpers the engine and its callers need, injected so tests can pin "now"
// instead of reaching for time.Now() directly. Grounded on verify.go's
// parseDate helper (root package), which isolates the one spot a format
// layout is hand-written.
package clock

import "time"

// Clock supplies the current instant. The system clock is the default;
// tests substitute a Fixed clock to pin "now" the way §8's scenarios do
// (T0 = 2020-06-01T00:00:00Z).
type Clock interface {
	Now() time.Time
}

// System is the real wall clock.
type System struct{}

// Now implements Clock.
func (System) Now() time.Time { return time.Now().UTC() }

// Fixed is a Clock that always returns the same instant.
type Fixed time.Time

// Now implements Clock.
func (f Fixed) Now() time.Time { return time.Time(f) }

// FormatRFC3339 formats t the way report info attributes are rendered:
// RFC 3339 with second precision, always in UTC. All CTS-recorded instants
// go through this single formatting function so the trace is unambiguous
// and independent of the caller's local timezone.
func FormatRFC3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
