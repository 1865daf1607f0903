// Package kv is the string key-value storage that holds entitlement flags
// and payment markers. Business logic never touches a backend directly.
package kv

import "context"

// Store is a flat string-to-string store.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes keys; missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
