package recordcache

import (
	"context"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/zcong1993/go-record-cache/cache"
)

// Wrapper decorates a record store with read-through caching and
// write-invalidation. Reads consult the cache backend first and fall back
// to the store on miss; mutations persist to the store and then delete
// every cache entry associated with the record (the primary entry plus
// each configured unique-field entry), so subsequent lookups are
// guaranteed a miss and re-fetch fresh data.
//
// A Wrapper holds only immutable configuration; any number of concurrent
// calls against the same instance are safe without locking.
type Wrapper[T any] struct {
	store   Store[T]
	backend cache.Backend
	codec   cache.KeyCodec
	opts    cache.Options
	desc    *descriptor
	logger  zerolog.Logger
}

// Option configures optional wrapper collaborators.
type Option func(*settings)

type settings struct {
	codec  cache.KeyCodec
	logger zerolog.Logger
}

// WithKeyCodec replaces the default key codec.
func WithKeyCodec(codec cache.KeyCodec) Option {
	return func(s *settings) { s.codec = codec }
}

// WithLogger sets the logger used for degraded-mode events (cache
// write-back and invalidation failures). Defaults to a no-op logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// New constructs a Wrapper over the given store and cache backend.
// Options are normalized, then validated; the record type's metadata is
// checked for exactly one primary-key field and every configured unique
// field is resolved, all before any request is served. A misdeclared
// record type fails here, not on first use.
func New[T any](store Store[T], backend cache.Backend, opts cache.Options, wopts ...Option) (*Wrapper[T], error) {
	opts = opts.Normalize()
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "recordcache: invalid options")
	}

	s := settings{
		codec:  cache.NewDefaultKeyCodec(),
		logger: zerolog.Nop(),
	}
	for _, opt := range wopts {
		opt(&s)
	}

	desc, err := newDescriptor(reflect.TypeFor[T](), store.Metadata(), opts.UniqueFields)
	if err != nil {
		return nil, err
	}

	return &Wrapper[T]{
		store:   store,
		backend: backend,
		codec:   s.codec,
		opts:    opts,
		desc:    desc,
		logger:  s.logger,
	}, nil
}

// GetByPK looks a record up by its primary-key value, reading through the
// cache. A miss that resolves to a found record populates exactly one
// cache entry (the primary entry) with a freshly jittered TTL. Absence is
// never cached: repeated misses always re-query the store.
func (w *Wrapper[T]) GetByPK(ctx context.Context, pk any) (T, bool, error) {
	if w.opts.Disable {
		return w.store.FindByPK(ctx, pk)
	}

	key := w.codec.PrimaryKey(w.desc.entity, pk)
	return w.readThrough(ctx, key, func(ctx context.Context) (T, bool, error) {
		return w.store.FindByPK(ctx, pk)
	})
}

// GetByUnique looks a record up by a unique field, reading through the
// cache. The field must be one of the configured unique fields; anything
// else fails with ErrFieldNotCached rather than silently falling back to
// an uncached store query.
//
// The unique entry and the corresponding primary entry are independent:
// this call never reconciles one against the other.
func (w *Wrapper[T]) GetByUnique(ctx context.Context, field string, value any) (T, bool, error) {
	if !w.opts.CachesField(field) {
		var zero T
		return zero, false, errors.Wrapf(ErrFieldNotCached, "field %q of entity %q", field, w.desc.entity)
	}
	if w.opts.Disable {
		return w.store.FindByUnique(ctx, field, value)
	}

	key := w.codec.UniqueKey(w.desc.entity, field, value)
	return w.readThrough(ctx, key, func(ctx context.Context) (T, bool, error) {
		return w.store.FindByUnique(ctx, field, value)
	})
}

// Update persists the record and then invalidates its primary entry and
// every configured unique-field entry, computed from the post-update
// field values. Invalidation, not re-caching, is the consistency
// mechanism: the next lookup by any key misses and re-fetches.
//
// When a unique field's value changed, the entry under the old value is
// left to expire via its TTL; no lookup path can resolve to it using the
// new value.
func (w *Wrapper[T]) Update(ctx context.Context, record T) error {
	if err := w.requirePK(record); err != nil {
		return err
	}
	if err := w.store.Update(ctx, record); err != nil {
		return err
	}
	if w.opts.Disable {
		return nil
	}

	w.invalidate(ctx, record, "update")
	return nil
}

// Delete fetches the current record (to learn its unique-field values),
// removes it from the store, and then deletes its cache entries. Deleting
// a nonexistent record succeeds, and the primary cache entry for the key
// is still proactively removed.
func (w *Wrapper[T]) Delete(ctx context.Context, pk any) error {
	if w.opts.Disable {
		return w.store.Delete(ctx, pk)
	}

	record, found, err := w.store.FindByPK(ctx, pk)
	if err != nil {
		return err
	}
	if err := w.store.Delete(ctx, pk); err != nil {
		return err
	}

	if found {
		w.invalidate(ctx, record, "delete")
		return nil
	}
	if err := w.backend.Delete(ctx, w.codec.PrimaryKey(w.desc.entity, pk)); err != nil {
		w.logDegraded(err, "delete")
	}
	return nil
}

// DeleteCache evicts the primary and configured unique-field entries for
// an already-held record snapshot, without store I/O. A no-op when the
// wrapper is disabled.
func (w *Wrapper[T]) DeleteCache(ctx context.Context, record T) error {
	if w.opts.Disable {
		return nil
	}
	keys, err := w.invalidationKeys(record)
	if err != nil {
		return err
	}
	return w.backend.Delete(ctx, keys...)
}

// readThrough implements the shared miss path: consult the backend, fall
// back to fetch, repopulate. A cache entry that fails to decode is
// treated as a miss and overwritten. Write-back failures are tolerated:
// the store is the source of truth and the caller still gets the freshly
// fetched record.
func (w *Wrapper[T]) readThrough(ctx context.Context, key string, fetch func(context.Context) (T, bool, error)) (T, bool, error) {
	var zero T

	found, data, err := w.backend.Get(ctx, key)
	if err != nil {
		return zero, false, err
	}
	if found {
		record, err := cache.UnmarshalSnapshot[T](data)
		if err == nil {
			return record, true, nil
		}
		w.logger.Warn().Err(err).Str("key", key).Msg("undecodable cache entry, refetching")
	}

	record, ok, err := fetch(ctx)
	if err != nil || !ok {
		return zero, false, err
	}

	if data, err := cache.MarshalSnapshot(record); err != nil {
		w.logDegraded(err, "populate")
	} else if err := w.backend.Set(ctx, key, data, cache.JitterTTL(w.opts.Expire, w.opts.Deviation())); err != nil {
		w.logDegraded(err, "populate")
	}

	return record, true, nil
}

// invalidate deletes every cache entry derived from the record's current
// field values. A failure here leaves stale entries until their TTL; the
// store mutation already succeeded, so the failure is logged rather than
// surfaced.
func (w *Wrapper[T]) invalidate(ctx context.Context, record T, op string) {
	keys, err := w.invalidationKeys(record)
	if err != nil {
		w.logDegraded(err, op)
		return
	}
	if err := w.backend.Delete(ctx, keys...); err != nil {
		w.logDegraded(err, op)
	}
}

// invalidationKeys computes the primary key entry plus one entry per
// configured unique field. With N configured unique fields there are up
// to N+1 entries referring to the same snapshot; they are always
// addressed together.
func (w *Wrapper[T]) invalidationKeys(record T) ([]string, error) {
	pk, err := w.desc.value(record, w.desc.pkField)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(w.opts.UniqueFields)+1)
	keys = append(keys, w.codec.PrimaryKey(w.desc.entity, pk))
	for _, field := range w.opts.UniqueFields {
		v, err := w.desc.value(record, field)
		if err != nil {
			return nil, err
		}
		keys = append(keys, w.codec.UniqueKey(w.desc.entity, field, v))
	}
	return keys, nil
}

// requirePK ensures a mutation's record carries a primary-key value.
func (w *Wrapper[T]) requirePK(record T) error {
	pk, err := w.desc.value(record, w.desc.pkField)
	if err != nil {
		return err
	}
	if pk == nil {
		return errors.Wrapf(ErrMissingPrimaryKey, "record has no %q value", w.desc.pkField)
	}
	if rv := reflect.ValueOf(pk); rv.IsZero() {
		return errors.Wrapf(ErrMissingPrimaryKey, "record has zero %q value", w.desc.pkField)
	}
	return nil
}

func (w *Wrapper[T]) logDegraded(err error, op string) {
	w.logger.Warn().
		Err(err).
		Str("entity", w.desc.entity).
		Str("op", op).
		Msg("cache degraded, stale entries expire via TTL")
}
