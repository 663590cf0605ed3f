package extract

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a vendor-formatted amount into an exact decimal.
// Separator conventions differ per vendor and must be passed explicitly:
// Indonesian banks write "1.234.567" or "200.406,00", PayPal Indonesia
// writes "2,00". The thousands separator is stripped losslessly, never
// rounded through a float. Negative amounts are rejected; direction is a
// separate field on the record.
func ParseAmount(s, thousandsSep, decimalSep string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if thousandsSep != "" {
		cleaned = strings.ReplaceAll(cleaned, thousandsSep, "")
	}
	if decimalSep != "" && decimalSep != "." {
		cleaned = strings.ReplaceAll(cleaned, decimalSep, ".")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("ParseAmount: %q is not an amount: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("ParseAmount: %q is negative", s)
	}
	return d, nil
}

// currencyCodes maps vendor currency symbols to 3-letter codes. The
// mapping is a fixed convention, never inferred from the amount format.
var currencyCodes = map[string]string{
	"Rp": "IDR",
	"$":  "USD",
	"€":  "EUR",
}

// CurrencyFromSymbol maps a vendor symbol to its code. Strings that are
// already codes pass through unchanged.
func CurrencyFromSymbol(sym string) string {
	sym = strings.TrimSpace(sym)
	if code, ok := currencyCodes[sym]; ok {
		return code
	}
	return sym
}
