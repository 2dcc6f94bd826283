package testutil

import (
	"context"
	"testing"
	"time"
)

// DefaultTimeout bounds blocking test operations when no explicit
// timeout is given.
const DefaultTimeout = 5 * time.Second

// Context returns a context cancelled on test cleanup, with its timeout
// clipped to the test deadline so failures surface as assertions rather
// than the runner killing the process.
func Context(t testing.TB, timeout time.Duration) context.Context {
	t.Helper()
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if d, ok := t.(interface{ Deadline() (time.Time, bool) }); ok {
		if deadline, ok := d.Deadline(); ok {
			remaining := time.Until(deadline) - time.Second
			if remaining > 0 && remaining < timeout {
				timeout = remaining
			}
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}
