package money

import (
	"paygate/internal/domain/payment"
)

// defaultExponent applies to every ISO 4217 code not listed in isoExponents.
const defaultExponent int32 = 2

// isoExponents is the authoritative table of ISO 4217 currencies whose minor
// unit is not 1/100. Provider quirks go in providerRules, never here.
var isoExponents = map[string]int32{
	// zero-decimal
	"BIF": 0, "CLP": 0, "DJF": 0, "GNF": 0, "ISK": 0, "JPY": 0, "KMF": 0,
	"KRW": 0, "PYG": 0, "RWF": 0, "UGX": 0, "UYI": 0, "VND": 0, "VUV": 0,
	"XAF": 0, "XOF": 0, "XPF": 0,
	// three-decimal
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
	// four-decimal
	"CLF": 4, "UYW": 4,
}

// Rule is the effective minor-unit convention for one provider/currency pair.
type Rule struct {
	Exponent int32
	// WholeUnitsOnly rejects fractional major amounts.
	WholeUnitsOnly bool
	// MinorStep requires the minor amount to be a multiple of it (0 or 1 disables).
	MinorStep int64
}

// ISOExponent returns the ISO 4217 decimal exponent for a currency.
func ISOExponent(currency string) int32 {
	if exp, ok := isoExponents[currency]; ok {
		return exp
	}
	return defaultExponent
}

type profile struct {
	unit Unit
	// currencies lists supported codes; nil accepts any well-formed code.
	currencies map[string]struct{}
	// overrides documents where the provider departs from ISO 4217.
	overrides map[string]Rule
}

var profiles = map[payment.Provider]profile{
	payment.ProviderStripe: {
		unit: UnitMinor,
		overrides: map[string]Rule{
			// sent as two-decimal for backwards compatibility, fraction must be zero
			"ISK": {Exponent: 2, WholeUnitsOnly: true},
			"UGX": {Exponent: 2, WholeUnitsOnly: true},
			"MGA": {Exponent: 0},
			// three-decimal amounts must end in 0
			"BHD": {Exponent: 3, MinorStep: 10},
			"JOD": {Exponent: 3, MinorStep: 10},
			"KWD": {Exponent: 3, MinorStep: 10},
			"OMR": {Exponent: 3, MinorStep: 10},
			"TND": {Exponent: 3, MinorStep: 10},
		},
	},
	payment.ProviderPayPal: {
		unit: UnitMajor,
		currencies: set(
			"AUD", "BRL", "CAD", "CNY", "CZK", "DKK", "EUR", "HKD", "HUF", "ILS",
			"JPY", "MYR", "MXN", "TWD", "NZD", "NOK", "PHP", "PLN", "GBP", "SGD",
			"SEK", "CHF", "THB", "USD",
		),
		overrides: map[string]Rule{
			// PayPal does not accept decimals for these
			"HUF": {Exponent: 0, WholeUnitsOnly: true},
			"JPY": {Exponent: 0, WholeUnitsOnly: true},
			"TWD": {Exponent: 0, WholeUnitsOnly: true},
		},
	},
	payment.ProviderPaystack: {
		unit:       UnitMinor,
		currencies: set("NGN", "GHS", "ZAR", "KES", "USD", "EGP"),
	},
}

// RuleFor resolves the convention a provider applies to a currency.
func RuleFor(provider payment.Provider, currency string) (Rule, error) {
	p, ok := profiles[provider]
	if !ok {
		return Rule{}, &payment.ValidationError{Field: "provider", Reason: "unknown provider " + string(provider)}
	}
	if p.currencies != nil {
		if _, ok := p.currencies[currency]; !ok {
			return Rule{}, &payment.ValidationError{Field: "currency", Reason: currency + " is not supported by " + string(provider)}
		}
	}
	if r, ok := p.overrides[currency]; ok {
		return r, nil
	}
	return Rule{Exponent: ISOExponent(currency)}, nil
}

// UnitFor returns the amount unit the provider consumes.
func UnitFor(provider payment.Provider) (Unit, bool) {
	p, ok := profiles[provider]
	return p.unit, ok
}

func set(codes ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		m[c] = struct{}{}
	}
	return m
}
