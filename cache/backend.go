package cache

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// Backend is the key-value cache collaborator the record cache sits on.
// Implementations must treat a missing key as (false, nil, nil), never as
// an error. Payloads are opaque bytes; callers own serialization.
type Backend interface {
	// Get returns the payload stored under key, or found=false when the
	// key is absent or expired.
	Get(ctx context.Context, key string) (found bool, value []byte, err error)

	// Set stores value under key with the given time-to-live. The TTL is
	// computed per write by the caller; ttl must be positive.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the given keys. Deleting an absent key is not an
	// error. An empty key list is a no-op.
	Delete(ctx context.Context, keys ...string) error
}

// MarshalSnapshot serializes a full record snapshot for storage in a Backend.
func MarshalSnapshot(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "cache: marshal snapshot")
	}
	return data, nil
}

// UnmarshalSnapshot deserializes a record snapshot previously written with
// MarshalSnapshot.
func UnmarshalSnapshot[T any](data []byte) (T, error) {
	var out T
	if err := msgpack.Unmarshal(data, &out); err != nil {
		var zero T
		return zero, errors.Wrap(err, "cache: unmarshal snapshot")
	}
	return out, nil
}
