package cache

import (
	"slices"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Options configures one cached record type. The zero value is not usable:
// Expire is required. Apply Normalize before Validate; both are pure.
type Options struct {
	// Expire is the base time-to-live for cache entries. Required and must
	// be positive. The effective TTL of each write is jittered around this
	// value, see JitterTTL.
	Expire time.Duration

	// ExpiryDeviation is the jitter fraction in [0, 1] applied to Expire.
	// Values outside the range are clamped by Normalize. When nil,
	// DefaultExpiryDeviation is used.
	ExpiryDeviation *float64

	// UniqueFields lists the unique attributes to cache by, in addition to
	// the primary key. Each must be one of the record type's declared
	// unique fields. Attributes not listed here may still exist on the
	// type but are not cache-indexed.
	UniqueFields []string

	// Disable turns the wrapper into a pass-through to the record store:
	// no cache entries are ever created, read, or deleted. Fixed for the
	// lifetime of a wrapper instance.
	Disable bool
}

// Normalize returns a copy of the options with defaults applied: a nil
// deviation becomes DefaultExpiryDeviation, out-of-range deviations are
// clamped to [0, 1], and duplicate unique fields are removed preserving
// first occurrence order.
func (o Options) Normalize() Options {
	d := DefaultExpiryDeviation
	if o.ExpiryDeviation != nil {
		d = NormalizeDeviation(*o.ExpiryDeviation)
	}
	o.ExpiryDeviation = &d

	if len(o.UniqueFields) > 0 {
		fields := make([]string, 0, len(o.UniqueFields))
		for _, f := range o.UniqueFields {
			if !slices.Contains(fields, f) {
				fields = append(fields, f)
			}
		}
		o.UniqueFields = fields
	}

	return o
}

// Validate checks whether the options are usable. Deviation is not
// validated here because Normalize clamps it instead of rejecting it.
func (o Options) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Expire,
			validation.Required.Error("is required"),
			validation.Min(time.Duration(1)).Error("must be positive"),
		),
		validation.Field(&o.UniqueFields,
			validation.Each(validation.Required.Error("must not be empty")),
		),
	)
}

// Deviation returns the effective jitter fraction.
func (o Options) Deviation() float64 {
	if o.ExpiryDeviation == nil {
		return DefaultExpiryDeviation
	}
	return NormalizeDeviation(*o.ExpiryDeviation)
}

// CachesField reports whether field is one of the configured unique
// cache indexes.
func (o Options) CachesField(field string) bool {
	return slices.Contains(o.UniqueFields, field)
}
