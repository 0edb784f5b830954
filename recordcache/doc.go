// Package recordcache provides a read-through, write-invalidated cache
// wrapper for record stores addressed by a single primary key and
// optional unique secondary fields.
//
// # Overview
//
// A Wrapper composes three collaborators:
//
//   - Store: the record store, bound to one record type (find by
//     primary key, find by unique field, update, delete, metadata)
//   - cache.Backend: the key-value cache (get / set-with-ttl / delete)
//   - cache.KeyCodec: pure mapping from record coordinates to cache keys
//
// # Consistency protocol
//
// Reads follow the read-through pattern: check the cache, fall back to
// the store on miss, repopulate with a jittered TTL, return. Absence is
// never cached; repeated misses always re-query the store.
//
// Mutations persist to the store first and then delete every cache entry
// associated with the record: the primary entry plus one entry per
// configured unique field, all computed from the record's current field
// values. Invalidation rather than update-in-place means subsequent
// lookups by any key are guaranteed a miss and re-fetch fresh data.
// When a unique field's own value changes, the entry under the old value
// is intentionally left to expire via its TTL; no lookup using the new
// value can resolve to it.
//
// Between the store mutation and the cache deletion there is a bounded
// window during which a concurrent reader may repopulate stale data;
// that read resolves after the invalidation completes. The wrapper
// offers eventual, not linearizable, invalidation, and performs no
// single-flight deduplication of concurrent cold-cache fetches.
//
// # Construction
//
//	store, err := bunstore.New[User](db)
//	backend, _ := cacheinfra.NewMemory(ctx, cacheinfra.DefaultConfig())
//	users, err := recordcache.New(store, backend, cache.Options{
//		Expire:       time.Minute,
//		UniqueFields: []string{"email"},
//	})
//
// Construction fails synchronously when the record type does not declare
// exactly one primary-key field, or when a configured unique field is
// not declared by the store.
//
// # Disable mode
//
// With Options.Disable set, every operation degrades to a direct store
// pass-through: no cache entries are created, read, or deleted. The mode
// is fixed for the lifetime of a wrapper instance.
package recordcache
