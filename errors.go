package mongostore

import (
	"errors"
	"fmt"
)

// Error variables define specific failure scenarios in the session store.
// Operation failures are reported as *OperationError values wrapping one of
// these sentinels where applicable.
var (
	// ErrConnectionFailed indicates the initial connect to MongoDB failed.
	// The store is permanently unusable once this is reported.
	ErrConnectionFailed = errors.New("failed to connect to mongodb")

	// ErrIndexCreation indicates the TTL index on the expires field could
	// not be created after a successful connect.
	ErrIndexCreation = errors.New("failed to create ttl index")

	// ErrNotReady indicates an operation ran against a store whose
	// connection already failed.
	ErrNotReady = errors.New("session store is not connected")

	// ErrClosed indicates an operation ran against a closed store.
	ErrClosed = errors.New("session store is closed")

	// ErrHealthcheckFailed indicates the health check ping failed.
	ErrHealthcheckFailed = errors.New("session store healthcheck failed")

	// Configuration errors surfaced by Config.Validate.
	ErrMissingURI                = errors.New("connection uri is required")
	ErrMissingCollection         = errors.New("collection name is required")
	ErrMissingField              = errors.New("id and expires field names are required")
	ErrInvalidTTL                = errors.New("session ttl must be positive")
	ErrInvalidExpireAfterSeconds = errors.New("expire after seconds must not be negative")
)

// OperationError annotates a failed store operation with what was being
// attempted and the session id involved, so middleware logs name the victim.
type OperationError struct {
	Op      string // "finding", "setting", "destroying", "clearing", "listing"
	ID      string // affected session id, empty for collection-wide operations
	Payload any    // payload being written, set operations only
	Err     error  // underlying cause
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	switch {
	case e.Op == "setting" && e.Payload != nil:
		return fmt.Sprintf("error setting %s to %v: %v", e.ID, e.Payload, e.Err)
	case e.ID != "":
		return fmt.Sprintf("error %s %s: %v", e.Op, e.ID, e.Err)
	default:
		return fmt.Sprintf("error %s sessions: %v", e.Op, e.Err)
	}
}

// Unwrap exposes the underlying cause for errors.Is and errors.As.
func (e *OperationError) Unwrap() error {
	return e.Err
}
