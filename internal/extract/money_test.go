package extract

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name         string
		in           string
		thousandsSep string
		decimalSep   string
		want         string
		wantErr      bool
	}{
		{"indonesian grouping", "1.234.567", ".", "", "1234567", false},
		{"grouping with fraction", "200.406,00", ".", ",", "200406", false},
		{"paypal minor units", "2,00", ".", ",", "2", false},
		{"plain integer", "80000", ".", "", "80000", false},
		{"spaced grouping", "103 254.00", "", "", "103254", false},
		{"zero", "0", ".", "", "0", false},
		{"not a number", "Rp80.000", ".", "", "", true},
		{"negative rejected", "-5.000", ".", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.in, tt.thousandsSep, tt.decimalSep)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAmount(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			want := decimal.RequireFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("ParseAmount(%q) = %s, want exactly %s", tt.in, got, want)
			}
		})
	}
}

// Round-trip property: parsing a vendor amount and rendering it back must
// not lose precision through any float conversion.
func TestParseAmount_RoundTrip(t *testing.T) {
	got, err := ParseAmount("1.234.567", ".", "")
	if err != nil {
		t.Fatalf("ParseAmount error = %v", err)
	}
	if got.String() != "1234567" {
		t.Errorf("round-trip = %q, want %q", got.String(), "1234567")
	}
	if !got.Equal(decimal.NewFromInt(1234567)) {
		t.Errorf("ParseAmount = %s, want exactly 1234567", got)
	}
}

func TestCurrencyFromSymbol(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Rp", "IDR"},
		{"$", "USD"},
		{"€", "EUR"},
		{"USD", "USD"},
		{" Rp ", "IDR"},
	}

	for _, tt := range tests {
		if got := CurrencyFromSymbol(tt.in); got != tt.want {
			t.Errorf("CurrencyFromSymbol(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
