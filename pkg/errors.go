package pkg

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrSessionNotFound is returned when a callback references a session id
// that is unknown or already expired. Callback ids are attacker influenced,
// callers must treat this as a client error, never a crash.
var ErrSessionNotFound = errors.New("session not found")

// MsgSessionExpired replaces raw gateway state errors on the challenge path,
// the gateway wording is confusing to cardholders and leaks internal state.
const MsgSessionExpired = "session expired or already completed, please retry payment"

// TransportError marks a network or http level failure reaching the gateway.
// The caller may retry, a rolled back method notification stays retryable.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gateway transport error: %v", e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// GatewayError is a well formed rejection payload from the gateway. Not
// retryable with the same input.
type GatewayError struct {
	IsoCode     string
	Description string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway rejected request: %s (iso %s)", e.Description, e.IsoCode)
}

// IsTransportError reports whether err, at any wrap depth, is a transport
// failure rather than a gateway rejection.
func IsTransportError(err error) bool {
	for err != nil {
		if _, ok := err.(*TransportError); ok {
			return true
		}
		cause, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = cause.Unwrap()
	}
	return false
}

// isStateConflict matches gateway error descriptions complaining about the
// transaction being in the wrong state, the usual symptom of a duplicate or
// late challenge submission.
func isStateConflict(description string) bool {
	return strings.Contains(strings.ToLower(description), "transaction state")
}
