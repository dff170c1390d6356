package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// zeroDecimalCurrencies are charged in whole units by the provider.
var zeroDecimalCurrencies = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true,
	"kmf": true, "krw": true, "mga": true, "pyg": true, "rwf": true,
	"ugx": true, "vnd": true, "vuv": true, "xaf": true, "xof": true,
	"xpf": true,
}

// IsZeroDecimal reports whether amounts in currency carry no minor unit.
func IsZeroDecimal(currency string) bool {
	return zeroDecimalCurrencies[strings.ToLower(currency)]
}

// ToMajorUnits converts a minor-unit amount to major units, e.g. 1200 usd
// to 12.00 and 1200 jpy to 1200.
func ToMajorUnits(amount int64, currency string) decimal.Decimal {
	d := decimal.NewFromInt(amount)
	if IsZeroDecimal(currency) {
		return d
	}
	return d.Shift(-2)
}
