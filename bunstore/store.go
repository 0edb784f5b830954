// Package bunstore implements recordcache.Store over a bun database.
//
// Record types are plain bun models: the primary key and the unique
// fields are declared with the usual struct tag options,
//
//	type User struct {
//		bun.BaseModel `bun:"table:users"`
//
//		ID    string `bun:"id,pk"`
//		Email string `bun:"email,unique"`
//		Age   int    `bun:"age"`
//	}
//
// Metadata is derived once from the tags at construction; the attribute
// names exposed to the cache layer are the column names.
package bunstore

import (
	"context"
	"database/sql"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jinzhu/inflection"
	"github.com/uptrace/bun"

	"github.com/zcong1993/go-record-cache/recordcache"
)

// Store is a bun-backed record store for one record type. T must be a
// struct type usable as a bun model.
type Store[T any] struct {
	db      *bun.DB
	md      recordcache.Metadata
	columns map[string]struct{}
}

var _ recordcache.Store[struct{}] = (*Store[struct{}])(nil)

// New derives the record type's metadata from its bun tags and returns a
// store bound to it. The type is not required to declare a primary key
// here (the cache wrapper validates that), but it must be a struct.
func New[T any](db *bun.DB) (*Store[T], error) {
	typ := reflect.TypeFor[T]()
	if typ.Kind() != reflect.Struct {
		return nil, errors.Newf("bunstore: record type %s must be a struct", typ)
	}

	md, columns := describe(typ)
	return &Store[T]{db: db, md: md, columns: columns}, nil
}

func (s *Store[T]) Metadata() recordcache.Metadata {
	md := s.md
	md.PrimaryKeys = append([]string(nil), s.md.PrimaryKeys...)
	md.UniqueFields = append([]string(nil), s.md.UniqueFields...)
	return md
}

func (s *Store[T]) FindByPK(ctx context.Context, pk any) (T, bool, error) {
	col, err := s.pkColumn()
	if err != nil {
		var zero T
		return zero, false, err
	}
	return s.findBy(ctx, col, pk)
}

func (s *Store[T]) FindByUnique(ctx context.Context, field string, value any) (T, bool, error) {
	if _, ok := s.columns[field]; !ok {
		var zero T
		return zero, false, errors.Wrapf(recordcache.ErrUnknownField, "entity %q has no column %q", s.md.Entity, field)
	}
	return s.findBy(ctx, field, value)
}

func (s *Store[T]) Update(ctx context.Context, record T) error {
	if _, err := s.pkColumn(); err != nil {
		return err
	}
	if _, err := s.db.NewUpdate().Model(&record).WherePK().Exec(ctx); err != nil {
		return errors.Wrapf(err, "bunstore: update %s", s.md.Entity)
	}
	return nil
}

func (s *Store[T]) Delete(ctx context.Context, pk any) error {
	col, err := s.pkColumn()
	if err != nil {
		return err
	}
	_, err = s.db.NewDelete().
		Model((*T)(nil)).
		Where("? = ?", bun.Ident(col), pk).
		Exec(ctx)
	if err != nil {
		return errors.Wrapf(err, "bunstore: delete %s", s.md.Entity)
	}
	return nil
}

func (s *Store[T]) findBy(ctx context.Context, col string, value any) (T, bool, error) {
	var record T
	err := s.db.NewSelect().
		Model(&record).
		Where("? = ?", bun.Ident(col), value).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		var zero T
		return zero, false, nil
	}
	if err != nil {
		var zero T
		return zero, false, errors.Wrapf(err, "bunstore: select %s by %s", s.md.Entity, col)
	}
	return record, true, nil
}

func (s *Store[T]) pkColumn() (string, error) {
	if len(s.md.PrimaryKeys) != 1 {
		return "", errors.Wrapf(recordcache.ErrMissingPrimaryKey, "entity %q declares %d primary keys", s.md.Entity, len(s.md.PrimaryKeys))
	}
	return s.md.PrimaryKeys[0], nil
}

// describe walks the struct's bun tags. Column naming follows bun's own
// rule (explicit tag name, else snake_case of the Go field name), and the
// entity name follows bun's table naming (an explicit table tag on the
// embedded BaseModel, else the pluralized snake_case type name), so cache
// keys line up with what the database calls things.
func describe(typ reflect.Type) (recordcache.Metadata, map[string]struct{}) {
	md := recordcache.Metadata{Entity: defaultTableName(typ.Name())}
	columns := make(map[string]struct{})

	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("bun")

		if f.Anonymous {
			if name, ok := tableTag(tag); ok {
				md.Entity = name
			}
			continue
		}
		if !f.IsExported() || tag == "-" {
			continue
		}

		name, opts := splitTag(tag)
		if name == "" {
			name = snakeName(f.Name)
		}
		columns[name] = struct{}{}

		if hasOption(opts, "pk") {
			md.PrimaryKeys = append(md.PrimaryKeys, name)
		}
		if hasOption(opts, "unique") {
			md.UniqueFields = append(md.UniqueFields, name)
		}
	}

	return md, columns
}

func splitTag(tag string) (name string, opts []string) {
	parts := strings.Split(tag, ",")
	return parts[0], parts[1:]
}

func hasOption(opts []string, want string) bool {
	for _, o := range opts {
		// Options may carry values, e.g. "unique:group".
		if o == want || strings.HasPrefix(o, want+":") {
			return true
		}
	}
	return false
}

// tableTag extracts the table name from a BaseModel tag like
// "table:users,alias:u".
func tableTag(tag string) (string, bool) {
	for _, part := range strings.Split(tag, ",") {
		if name, ok := strings.CutPrefix(part, "table:"); ok && name != "" {
			return name, true
		}
	}
	return "", false
}

func defaultTableName(typeName string) string {
	return inflection.Plural(snakeName(typeName))
}

func snakeName(name string) string {
	var b strings.Builder
	b.Grow(len(name) + len(name)/2)
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				prev := rune(name[i-1])
				next := i+1 < len(name) && name[i+1] >= 'a' && name[i+1] <= 'z'
				if (prev >= 'a' && prev <= 'z') || (prev >= '0' && prev <= '9') || next && prev != '_' {
					b.WriteByte('_')
				}
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
