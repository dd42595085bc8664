package valueobjects_test

import (
	"errors"
	"testing"

	"github.com/Haleralex/ledgerhub/internal/domain/valueobjects"
)

func TestNewCurrency(t *testing.T) {
	tests := []struct {
		input    string
		wantCode string
		wantErr  bool
	}{
		{"USD", "USD", false},
		{"eur", "EUR", false},
		{" gbp ", "GBP", false},
		{"JPY", "", true},
		{"", "", true},
		{"US", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, err := valueobjects.NewCurrency(tt.input)
			if tt.wantErr {
				if !errors.Is(err, valueobjects.ErrInvalidCurrency) {
					t.Errorf("NewCurrency(%q) error = %v, want ErrInvalidCurrency", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewCurrency(%q): %v", tt.input, err)
			}
			if c.Code() != tt.wantCode {
				t.Errorf("Code() = %s, want %s", c.Code(), tt.wantCode)
			}
		})
	}
}

func TestCurrency_Equals(t *testing.T) {
	if !valueobjects.USD.Equals(valueobjects.MustNewCurrency("usd")) {
		t.Error("USD should equal normalized usd")
	}
	if valueobjects.USD.Equals(valueobjects.EUR) {
		t.Error("USD should not equal EUR")
	}
}

func TestCurrency_IsZero(t *testing.T) {
	var zero valueobjects.Currency
	if !zero.IsZero() {
		t.Error("zero value should report IsZero")
	}
	if valueobjects.GBP.IsZero() {
		t.Error("GBP should not report IsZero")
	}
}

func TestMustNewCurrency_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustNewCurrency should panic on an invalid code")
		}
	}()
	valueobjects.MustNewCurrency("XXX")
}
