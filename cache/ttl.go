package cache

import (
	"math"
	"math/rand/v2"
	"time"
)

// DefaultExpiryDeviation is the jitter fraction applied when Options does
// not specify one.
const DefaultExpiryDeviation = 0.05

// MinTTL is the floor applied to jittered TTLs. A computed TTL can reach
// zero when the deviation is 1.0; entries must still expire, never live
// forever or be rejected by the backend.
const MinTTL = time.Millisecond

// NormalizeDeviation clamps an expiry deviation fraction to [0, 1].
// It is exposed separately from JitterTTL so configuration can be
// validated without performing a cache write.
func NormalizeDeviation(d float64) float64 {
	if math.IsNaN(d) || d < 0 {
		return 0
	}
	if d > 1 {
		return 1
	}
	return d
}

// JitterTTL computes an effective TTL from a base expiry and a deviation
// fraction. The offset is drawn uniformly from ±deviation·base on every
// call, so two writes of the same record receive different TTLs and their
// expirations desynchronize.
func JitterTTL(base time.Duration, deviation float64) time.Duration {
	deviation = NormalizeDeviation(deviation)
	if base <= 0 {
		return MinTTL
	}
	if deviation == 0 {
		return base
	}

	offset := (rand.Float64()*2 - 1) * deviation * float64(base)
	ttl := time.Duration(float64(base) + offset)
	if ttl < MinTTL {
		ttl = MinTTL
	}
	return ttl
}
