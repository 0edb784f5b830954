package cache

import (
	"testing"
	"time"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestOptions_Normalize(t *testing.T) {
	tests := []struct {
		name          string
		opts          Options
		wantDeviation float64
		wantFields    []string
	}{
		{
			name:          "nil deviation defaults",
			opts:          Options{Expire: time.Minute},
			wantDeviation: DefaultExpiryDeviation,
		},
		{
			name:          "negative deviation clamps to zero",
			opts:          Options{Expire: time.Minute, ExpiryDeviation: floatPtr(-1)},
			wantDeviation: 0,
		},
		{
			name:          "excess deviation clamps to one",
			opts:          Options{Expire: time.Minute, ExpiryDeviation: floatPtr(2)},
			wantDeviation: 1,
		},
		{
			name:          "in-range deviation kept",
			opts:          Options{Expire: time.Minute, ExpiryDeviation: floatPtr(0.2)},
			wantDeviation: 0.2,
		},
		{
			name:          "duplicate unique fields removed",
			opts:          Options{Expire: time.Minute, UniqueFields: []string{"email", "card_id", "email"}},
			wantDeviation: DefaultExpiryDeviation,
			wantFields:    []string{"email", "card_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.opts.Normalize()

			if got.ExpiryDeviation == nil {
				t.Fatal("Normalize() left ExpiryDeviation nil")
			}
			if *got.ExpiryDeviation != tt.wantDeviation {
				t.Errorf("deviation = %v, want %v", *got.ExpiryDeviation, tt.wantDeviation)
			}
			if tt.wantFields != nil {
				if len(got.UniqueFields) != len(tt.wantFields) {
					t.Fatalf("unique fields = %v, want %v", got.UniqueFields, tt.wantFields)
				}
				for i, f := range tt.wantFields {
					if got.UniqueFields[i] != f {
						t.Errorf("unique fields = %v, want %v", got.UniqueFields, tt.wantFields)
						break
					}
				}
			}
		})
	}
}

func TestOptions_NormalizeDoesNotMutate(t *testing.T) {
	d := 5.0
	opts := Options{Expire: time.Minute, ExpiryDeviation: &d}

	_ = opts.Normalize()

	if d != 5.0 {
		t.Errorf("Normalize mutated the caller's deviation: %v", d)
	}
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{
			name: "valid",
			opts: Options{Expire: time.Minute, UniqueFields: []string{"email"}},
		},
		{
			name:    "missing expire",
			opts:    Options{},
			wantErr: true,
		},
		{
			name:    "negative expire",
			opts:    Options{Expire: -time.Second},
			wantErr: true,
		},
		{
			name:    "empty unique field name",
			opts:    Options{Expire: time.Minute, UniqueFields: []string{"email", ""}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOptions_Deviation(t *testing.T) {
	if got := (Options{}).Deviation(); got != DefaultExpiryDeviation {
		t.Errorf("Deviation() = %v, want default %v", got, DefaultExpiryDeviation)
	}
	if got := (Options{ExpiryDeviation: floatPtr(3)}).Deviation(); got != 1 {
		t.Errorf("Deviation() = %v, want clamped 1", got)
	}
}

func TestOptions_CachesField(t *testing.T) {
	opts := Options{Expire: time.Minute, UniqueFields: []string{"email"}}

	if !opts.CachesField("email") {
		t.Error("CachesField(email) = false, want true")
	}
	if opts.CachesField("phone") {
		t.Error("CachesField(phone) = true, want false")
	}
}
