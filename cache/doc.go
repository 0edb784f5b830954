// Package cache defines the building blocks of the record cache: the
// Backend collaborator interface, the KeyCodec that maps record
// coordinates to backend keys, TTL jitter, and the per-record-type
// Options.
//
// # Overview
//
//   - Backend: get / set-with-ttl / delete over opaque byte payloads.
//     Adapters live in internal/cacheinfra (in-memory and Redis).
//   - KeyCodec: pure, deterministic mapping from (entity, field, value)
//     to backend keys, namespaced so fields of different entities can
//     never collide.
//   - JitterTTL / NormalizeDeviation: effective TTL computation with
//     uniform random jitter, to desynchronize expirations across many
//     cached entries.
//   - Options: base expiry, jitter fraction, cached unique fields, and
//     the disable switch, with a pure Normalize step and explicit
//     Validate.
//
// # Key layout
//
// The default codec produces keys of the form
//
//	users::pk::42
//	users::u::email::jane@example.com
//
// The value segment is the literal representation for basic types and a
// JSON fallback otherwise; long segments are replaced with an xxhash
// digest so that backend key-length limits are never hit.
//
// # TTL jitter
//
// Each write into the cache draws a fresh offset uniformly from
// ±deviation·expire, so two writes of the same record may receive
// different TTLs. Deviation is clamped to [0, 1]; a computed TTL is
// floored at MinTTL and never non-positive.
//
// For the orchestration on top of these pieces, see the recordcache
// package.
package cache
