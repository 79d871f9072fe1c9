package resilience

import (
	"context"
	"errors"
	"net"
	"strings"
)

// IsTransient reports whether err looks like a connection-level failure
// that's worth retrying: a reset connection, a deadline expiring on a
// dependent call, or a broker/cache being temporarily unreachable. It
// deliberately does not import any specific driver package — the
// application layer shouldn't need to know whether the error came from
// Postgres, Redis, or NATS to decide this.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, substr := range []string{
		"connection reset",
		"connection refused",
		"broken pipe",
		"no route to host",
		"i/o timeout",
		"eof",
		"too many connections",
		"server closed the connection unexpectedly",
	} {
		if strings.Contains(msg, substr) {
			return true
		}
	}

	return false
}
