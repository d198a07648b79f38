package payment

import (
	"slices"
	"strconv"
	"strings"
)

// Provider selects which external processor handles a request.
type Provider string

const (
	ProviderStripe   Provider = "stripe"
	ProviderPayPal   Provider = "paypal"
	ProviderPaystack Provider = "paystack"
)

var AvailableProviders = []Provider{ProviderStripe, ProviderPayPal, ProviderPaystack}

func ParseProvider(raw string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(raw)))
	if !slices.Contains(AvailableProviders, p) {
		return "", &ValidationError{Field: "provider", Reason: "unknown provider " + strconv.Quote(raw)}
	}
	return p, nil
}

func (p Provider) Valid() bool {
	return slices.Contains(AvailableProviders, p)
}

func (p Provider) String() string {
	return string(p)
}

// DefaultCurrency is used by the HTTP edge when the caller leaves currency empty.
func (p Provider) DefaultCurrency() string {
	switch p {
	case ProviderStripe, ProviderPayPal:
		return "USD"
	case ProviderPaystack:
		return "NGN"
	default:
		return ""
	}
}

// RequiresEmail reports whether the provider needs a payer email to issue receipts.
func (p Provider) RequiresEmail() bool {
	return p == ProviderPaystack
}
