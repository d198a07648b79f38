// Package money converts major-unit amounts into the representation each
// payment provider expects.
package money

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"paygate/internal/domain/payment"

	"github.com/shopspring/decimal"
)

type Unit string

const (
	UnitMinor Unit = "minor"
	UnitMajor Unit = "major"
)

var maxMinor = decimal.NewFromInt(math.MaxInt64)

// NormalizedAmount carries both representations; Unit says which one the
// provider consumes.
type NormalizedAmount struct {
	Unit     Unit   `json:"unit"`
	Currency string `json:"currency"`
	Exponent int32  `json:"exponent"`
	Minor    int64  `json:"minor"`
	Major    string `json:"major"`
}

// Value returns the provider-facing amount as text.
func (a NormalizedAmount) Value() string {
	if a.Unit == UnitMinor {
		return strconv.FormatInt(a.Minor, 10)
	}
	return a.Major
}

// NormalizeFloat is Normalize for callers holding a float64.
func NormalizeFloat(amount float64, currency string, provider payment.Provider) (NormalizedAmount, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return NormalizedAmount{}, &payment.ValidationError{Field: "amount", Reason: "must be a finite number"}
	}
	return Normalize(decimal.NewFromFloat(amount), currency, provider)
}

// Normalize rounds half away from zero at the provider's exponent for the currency.
func Normalize(amount decimal.Decimal, currency string, provider payment.Provider) (NormalizedAmount, error) {
	code, err := CanonicalCurrency(currency)
	if err != nil {
		return NormalizedAmount{}, err
	}
	if !amount.IsPositive() {
		return NormalizedAmount{}, &payment.ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}

	unit, ok := UnitFor(provider)
	if !ok {
		return NormalizedAmount{}, &payment.ValidationError{Field: "provider", Reason: "unknown provider " + string(provider)}
	}
	rule, err := RuleFor(provider, code)
	if err != nil {
		return NormalizedAmount{}, err
	}

	if rule.WholeUnitsOnly && !amount.IsInteger() {
		return NormalizedAmount{}, &payment.ValidationError{
			Field:  "amount",
			Reason: fmt.Sprintf("%s requires whole units for %s", provider, code),
		}
	}

	scaled := amount.Shift(rule.Exponent).Round(0)
	if !scaled.IsPositive() {
		return NormalizedAmount{}, &payment.ValidationError{Field: "amount", Reason: "rounds to zero in " + code}
	}
	if scaled.GreaterThan(maxMinor) {
		return NormalizedAmount{}, &payment.ValidationError{Field: "amount", Reason: "is too large"}
	}

	minor := scaled.IntPart()
	if rule.MinorStep > 1 && minor%rule.MinorStep != 0 {
		return NormalizedAmount{}, &payment.ValidationError{
			Field:  "amount",
			Reason: fmt.Sprintf("%s amounts must be a multiple of %d minor units for %s", code, rule.MinorStep, provider),
		}
	}

	return NormalizedAmount{
		Unit:     unit,
		Currency: code,
		Exponent: rule.Exponent,
		Minor:    minor,
		Major:    scaled.Shift(-rule.Exponent).StringFixed(rule.Exponent),
	}, nil
}

// CanonicalCurrency upper-cases and checks the three-letter shape.
func CanonicalCurrency(currency string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if len(code) != 3 {
		return "", &payment.ValidationError{Field: "currency", Reason: "must be a three-letter code"}
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", &payment.ValidationError{Field: "currency", Reason: "must be a three-letter code"}
		}
	}
	return code, nil
}
