package mongostore

import (
	"context"
	"errors"
)

// Healthcheck returns a probe function suitable for readiness endpoints.
// The probe fails while the store is still connecting, after the connection
// has failed, and when the ping itself fails.
func Healthcheck(store *Store) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		store.mu.Lock()
		state := store.state
		client := store.client
		connErr := store.connErr
		store.mu.Unlock()

		switch state {
		case StateReady:
			if err := client.Ping(ctx); err != nil {
				return errors.Join(ErrHealthcheckFailed, err)
			}
			return nil
		case StateFailed:
			return errors.Join(ErrHealthcheckFailed, connErr)
		case StateClosed:
			return errors.Join(ErrHealthcheckFailed, ErrClosed)
		default:
			return errors.Join(ErrHealthcheckFailed, ErrNotReady)
		}
	}
}
