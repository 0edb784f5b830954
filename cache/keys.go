package cache

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

// KeySeparator delimits the segments of a cache key.
const KeySeparator = "::"

// maxValueSegment caps the length of the value segment of a key. Longer
// serialized values are replaced by an xxhash digest so that backend
// key-length limits cannot be hit while keys stay deterministic.
const maxValueSegment = 64

// KeyCodec maps (entity, field, value) coordinates to cache backend keys.
// Implementations must be pure: same inputs always produce the same key,
// and keys for different entities or fields never collide.
type KeyCodec interface {
	// PrimaryKey builds the key for an entity's primary-key cache entry.
	PrimaryKey(entity string, pk any) string

	// UniqueKey builds the key for an entity's unique-field cache entry.
	UniqueKey(entity, field string, value any) string
}

// defaultKeyCodec namespaces keys by entity name plus a reserved "pk"
// segment for primary keys and a "u"-prefixed segment per unique field,
// so a field that happens to be called "pk" can never collide with the
// primary namespace.
type defaultKeyCodec struct{}

// NewDefaultKeyCodec returns the default KeyCodec implementation.
func NewDefaultKeyCodec() KeyCodec {
	return &defaultKeyCodec{}
}

func (c *defaultKeyCodec) PrimaryKey(entity string, pk any) string {
	return entity + KeySeparator + "pk" + KeySeparator + c.segment(pk)
}

func (c *defaultKeyCodec) UniqueKey(entity, field string, value any) string {
	return entity + KeySeparator + "u" + KeySeparator + field + KeySeparator + c.segment(value)
}

// segment serializes a single key value deterministically. Basic types use
// their literal representation; everything else falls back to JSON. The
// result is digested when it exceeds maxValueSegment.
func (c *defaultKeyCodec) segment(v any) string {
	return capSegment(c.serializeValue(v))
}

func (c *defaultKeyCodec) serializeValue(v any) string {
	if v == nil {
		return "nil"
	}

	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return "b:" + hex.EncodeToString(val)
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "nil"
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return fmt.Sprintf("%v", rv.Interface())
	}

	return jsonSegment(rv.Interface())
}

// jsonSegment is the fallback for composite values. Marshaling a value that
// cannot be represented as JSON degrades to its type name, which keeps key
// generation total even for problematic inputs.
func jsonSegment(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "fallback:" + reflect.TypeOf(v).String()
	}
	return "json:" + string(data)
}

func capSegment(s string) string {
	if len(s) <= maxValueSegment {
		return s
	}
	sum := xxhash.Sum64String(s)
	return "x:" + strconv.FormatUint(sum, 16)
}
