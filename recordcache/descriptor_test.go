package recordcache

import (
	"reflect"
	"testing"

	"github.com/cockroachdb/errors"
)

type descUser struct {
	ID        string `bun:"id,pk" json:"id"`
	CardID    string `bun:"card_id,unique" json:"cardId"`
	Email     string `json:"email_addr"`
	FirstName string
	Age       int
}

func descMetadata() Metadata {
	return Metadata{
		Entity:       "desc_users",
		PrimaryKeys:  []string{"id"},
		UniqueFields: []string{"card_id", "email_addr", "first_name", "Age"},
	}
}

func TestNewDescriptor_PrimaryKeyValidation(t *testing.T) {
	typ := reflect.TypeFor[descUser]()

	tests := []struct {
		name    string
		pks     []string
		wantErr error
	}{
		{name: "exactly one", pks: []string{"id"}},
		{name: "zero", pks: nil, wantErr: ErrMissingPrimaryKey},
		{name: "composite", pks: []string{"id", "card_id"}, wantErr: ErrCompositePrimaryKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := descMetadata()
			md.PrimaryKeys = tt.pks

			_, err := newDescriptor(typ, md, nil)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("newDescriptor() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("newDescriptor() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewDescriptor_RejectsUndeclaredUniqueField(t *testing.T) {
	_, err := newDescriptor(reflect.TypeFor[descUser](), descMetadata(), []string{"age_group"})
	if !errors.Is(err, ErrUnknownField) {
		t.Errorf("newDescriptor() error = %v, want %v", err, ErrUnknownField)
	}
}

func TestNewDescriptor_RejectsUnresolvableAttribute(t *testing.T) {
	md := descMetadata()
	md.UniqueFields = append(md.UniqueFields, "nickname")

	_, err := newDescriptor(reflect.TypeFor[descUser](), md, []string{"nickname"})
	if !errors.Is(err, ErrUnknownField) {
		t.Errorf("newDescriptor() error = %v, want %v", err, ErrUnknownField)
	}
}

func TestDescriptor_Value(t *testing.T) {
	desc, err := newDescriptor(reflect.TypeFor[descUser](), descMetadata(),
		[]string{"card_id", "email_addr", "first_name", "Age"})
	if err != nil {
		t.Fatalf("newDescriptor() error = %v", err)
	}

	u := descUser{ID: "u-1", CardID: "c-1", Email: "jane@example.com", FirstName: "Jane", Age: 18}

	tests := []struct {
		field string
		want  any
	}{
		{field: "id", want: "u-1"},                 // bun tag name
		{field: "card_id", want: "c-1"},            // bun tag name
		{field: "email_addr", want: "jane@example.com"}, // json tag name
		{field: "first_name", want: "Jane"},        // snake_case of the Go name
		{field: "Age", want: 18},                   // exact Go name
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, err := desc.value(u, tt.field)
			if err != nil {
				t.Fatalf("value(%s) error = %v", tt.field, err)
			}
			if got != tt.want {
				t.Errorf("value(%s) = %v, want %v", tt.field, got, tt.want)
			}
		})
	}
}

func TestDescriptor_ValuePointerRecord(t *testing.T) {
	desc, err := newDescriptor(reflect.TypeFor[*descUser](), descMetadata(), []string{"card_id"})
	if err != nil {
		t.Fatalf("newDescriptor() error = %v", err)
	}

	got, err := desc.value(&descUser{ID: "u-2"}, "id")
	if err != nil {
		t.Fatalf("value() error = %v", err)
	}
	if got != "u-2" {
		t.Errorf("value() = %v, want u-2", got)
	}
}

// readerRecord exposes attributes through the capability interface
// instead of struct reflection.
type readerRecord struct {
	attrs map[string]any
}

func (r readerRecord) AttributeValue(name string) (any, bool) {
	v, ok := r.attrs[name]
	return v, ok
}

func TestDescriptor_AttributeReader(t *testing.T) {
	md := Metadata{
		Entity:       "readers",
		PrimaryKeys:  []string{"id"},
		UniqueFields: []string{"serial"},
	}

	desc, err := newDescriptor(reflect.TypeFor[readerRecord](), md, []string{"serial"})
	if err != nil {
		t.Fatalf("newDescriptor() error = %v", err)
	}
	if !desc.useReader {
		t.Fatal("descriptor did not pick the AttributeReader path")
	}

	rec := readerRecord{attrs: map[string]any{"id": 7, "serial": "s-1"}}

	got, err := desc.value(rec, "serial")
	if err != nil {
		t.Fatalf("value() error = %v", err)
	}
	if got != "s-1" {
		t.Errorf("value() = %v, want s-1", got)
	}

	if _, err := desc.value(rec, "missing"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("value(missing) error = %v, want %v", err, ErrUnknownField)
	}
}

func TestToSnake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "CardID", want: "card_id"},
		{in: "HTTPServer", want: "http_server"},
		{in: "FirstName", want: "first_name"},
		{in: "id", want: "id"},
		{in: "", want: ""},
		{in: "UserV2", want: "user_v2"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := toSnake(tt.in); got != tt.want {
				t.Errorf("toSnake(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEntityName(t *testing.T) {
	if got := EntityName[descUser](); got != "desc_users" {
		t.Errorf("EntityName[descUser]() = %q, want desc_users", got)
	}
	if got := EntityName[*descUser](); got != "desc_users" {
		t.Errorf("EntityName[*descUser]() = %q, want desc_users", got)
	}
}
