package recordcache

import "context"

// Metadata describes the cacheable shape of a record type as declared by
// its store: the entity namespace used in cache keys, the primary-key
// attribute(s), and the attributes guaranteed unique.
//
// A usable configuration declares exactly one primary key; the Wrapper
// constructor rejects anything else before serving a single request.
type Metadata struct {
	// Entity is the namespace for this record type's cache keys,
	// typically the table name.
	Entity string

	// PrimaryKeys lists the declared primary-key attributes. Only a
	// single-attribute primary key is supported.
	PrimaryKeys []string

	// UniqueFields lists attributes additionally usable as lookup keys.
	UniqueFields []string
}

// Store is the record store collaborator, bound to one record type.
// Not-found is the explicit false second return, never an error; errors
// are reserved for store failures.
type Store[T any] interface {
	// FindByPK fetches the record with the given primary-key value.
	FindByPK(ctx context.Context, pk any) (T, bool, error)

	// FindByUnique fetches the record whose unique field holds value.
	// The field name must be one of Metadata().UniqueFields.
	FindByUnique(ctx context.Context, field string, value any) (T, bool, error)

	// Update persists the record, addressed by its primary-key value.
	Update(ctx context.Context, record T) error

	// Delete removes the record with the given primary-key value.
	// Deleting an absent record is not an error.
	Delete(ctx context.Context, pk any) error

	// Metadata returns the declared field metadata for the record type.
	Metadata() Metadata
}
