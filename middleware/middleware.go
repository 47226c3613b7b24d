package middleware

import "time"

// DefaultStack is the stack the Serve helpers install when given a
// logger: panic confinement, request id injection for log correlation,
// and per-request outcome logging. Recover sits outermost so even a
// panic inside another layer is answered instead of tearing down the
// session.
func DefaultStack(logger Logger) []Middleware {
	return []Middleware{
		Recover(),
		RequestID(),
		Logging(logger),
	}
}

// DefaultStackWithTimeout inserts a request deadline between id
// injection and logging, so a timed-out request is logged under the id
// that hit the limit. The deadline layer leaves client-initiated
// $/cancelRequest cancellation alone; those requests still answer with
// RequestCancelled, not a timeout.
func DefaultStackWithTimeout(logger Logger, timeout time.Duration) []Middleware {
	return []Middleware{
		Recover(),
		RequestID(),
		Timeout(timeout),
		Logging(logger),
	}
}
