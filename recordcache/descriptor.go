package recordcache

import (
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
)

// AttributeReader is the capability interface a record type can implement
// to expose attribute values by declared field name without reflection.
// The bool return reports whether the attribute exists on the record.
type AttributeReader interface {
	AttributeValue(name string) (any, bool)
}

var attributeReaderType = reflect.TypeFor[AttributeReader]()

// descriptor captures everything the wrapper needs to know about a record
// type: its entity namespace, its single primary-key field, and an
// accessor per cached field. It is computed once at wrapper construction
// and immutable afterwards, so concurrent use needs no locking.
type descriptor struct {
	entity    string
	pkField   string
	useReader bool
	indexes   map[string][]int
}

// newDescriptor validates the store metadata against the record type and
// resolves attribute access for the primary key and every configured
// unique field. Zero or multiple primary keys, or a configured field that
// is not a declared unique attribute, fail here, before any cache
// operation is attempted.
func newDescriptor(typ reflect.Type, md Metadata, uniqueFields []string) (*descriptor, error) {
	switch len(md.PrimaryKeys) {
	case 1:
	case 0:
		return nil, errors.Wrapf(ErrMissingPrimaryKey, "entity %q", md.Entity)
	default:
		return nil, errors.Wrapf(ErrCompositePrimaryKey, "entity %q declares %d primary keys", md.Entity, len(md.PrimaryKeys))
	}

	declared := make(map[string]struct{}, len(md.UniqueFields))
	for _, f := range md.UniqueFields {
		declared[f] = struct{}{}
	}
	for _, f := range uniqueFields {
		if _, ok := declared[f]; !ok {
			return nil, errors.Wrapf(ErrUnknownField, "field %q is not a declared unique field of entity %q", f, md.Entity)
		}
	}

	d := &descriptor{
		entity:  md.Entity,
		pkField: md.PrimaryKeys[0],
	}

	if typ.Implements(attributeReaderType) || reflect.PointerTo(typ).Implements(attributeReaderType) {
		d.useReader = true
		return d, nil
	}

	strct := typ
	for strct.Kind() == reflect.Pointer {
		strct = strct.Elem()
	}
	if strct.Kind() != reflect.Struct {
		return nil, errors.Wrapf(ErrUnknownField, "record type %s is not a struct and does not implement AttributeReader", typ)
	}

	byName := fieldIndexes(strct)
	d.indexes = make(map[string][]int, len(uniqueFields)+1)
	for _, f := range append([]string{d.pkField}, uniqueFields...) {
		idx, ok := byName[f]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownField, "record type %s has no attribute %q", strct, f)
		}
		d.indexes[f] = idx
	}

	return d, nil
}

// fieldIndexes maps every addressable attribute name of a struct type to
// its field index path. A field is reachable under its bun column name,
// its json name, its Go name, and its snake_case name; explicit tag names
// win over derived ones.
func fieldIndexes(strct reflect.Type) map[string][]int {
	out := make(map[string][]int)

	// Derived names first so explicit tag names overwrite them.
	for i := 0; i < strct.NumField(); i++ {
		f := strct.Field(i)
		if !f.IsExported() || f.Anonymous {
			continue
		}
		out[f.Name] = f.Index
		out[toSnake(f.Name)] = f.Index
	}
	for i := 0; i < strct.NumField(); i++ {
		f := strct.Field(i)
		if !f.IsExported() || f.Anonymous {
			continue
		}
		if name := tagName(f.Tag.Get("json")); name != "" {
			out[name] = f.Index
		}
		if name := tagName(f.Tag.Get("bun")); name != "" {
			out[name] = f.Index
		}
	}
	return out
}

// tagName extracts the leading name of a struct tag value, ignoring
// options after the first comma and the "-" marker.
func tagName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}

// value reads the named attribute off a record, using the capability
// interface when the type implements it and the pre-resolved field index
// otherwise.
func (d *descriptor) value(record any, field string) (any, error) {
	if d.useReader {
		reader, ok := record.(AttributeReader)
		if !ok {
			// The method set lives on the pointer type; box the value.
			pv := reflect.New(reflect.TypeOf(record))
			pv.Elem().Set(reflect.ValueOf(record))
			reader, ok = pv.Interface().(AttributeReader)
			if !ok {
				return nil, errors.Wrap(ErrUnknownField, "record does not implement AttributeReader")
			}
		}
		v, ok := reader.AttributeValue(field)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownField, "record reports no attribute %q", field)
		}
		return v, nil
	}

	idx, ok := d.indexes[field]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownField, "attribute %q was not resolved at construction", field)
	}

	rv := reflect.ValueOf(record)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, errors.Wrapf(ErrMissingPrimaryKey, "nil record")
		}
		rv = rv.Elem()
	}
	return rv.FieldByIndex(idx).Interface(), nil
}
