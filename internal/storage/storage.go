// Package storage defines the key-value collaborator the cart mirrors its
// state into, plus backend-independent decorators.
package storage

import "context"

// Storage is a string key-value store. Implementations must be safe for
// concurrent use.
type Storage interface {
	// Get returns the value stored under key. found is false when the key is
	// absent; that is not an error.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}

// Pinger is implemented by backends that can report their own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks s if it implements Pinger and reports healthy otherwise.
func Ping(ctx context.Context, s Storage) error {
	if p, ok := s.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
