package recordcache

import "github.com/cockroachdb/errors"

// Configuration and usage errors surfaced by the record cache. All of
// them are unrecoverable locally: the caller must fix the record type or
// the call site, retrying does not apply.
var (
	// ErrMissingPrimaryKey is returned when a record type declares no
	// primary-key field, or a mutation receives a record whose
	// primary-key value is unset.
	ErrMissingPrimaryKey = errors.New("recordcache: record type must declare exactly one primary key")

	// ErrCompositePrimaryKey is returned when a record type declares more
	// than one primary-key field. Composite keys are an unsupported
	// configuration, not a degraded mode.
	ErrCompositePrimaryKey = errors.New("recordcache: composite primary keys are not supported")

	// ErrUnknownField is returned when a configured or requested field is
	// not a declared unique attribute of the record type.
	ErrUnknownField = errors.New("recordcache: unknown unique field")

	// ErrFieldNotCached is returned by GetByUnique when the field is a
	// declared unique attribute but was not configured for caching. The
	// guard exists so callers never silently assume a field is
	// cache-indexed when it is not.
	ErrFieldNotCached = errors.New("recordcache: field is not configured for caching")
)
