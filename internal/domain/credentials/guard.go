// Package credentials holds the process-wide provider configuration and the
// guard that checks it before any network call is attempted.
package credentials

import (
	"net/url"
	"strings"

	"paygate/internal/domain/payment"
)

// Field names match the environment variables operators set.
const (
	FieldAppBaseURL           = "APP_BASE_URL"
	FieldStripeSecretKey      = "STRIPE_SECRET_KEY"
	FieldStripePublishableKey = "STRIPE_PUBLISHABLE_KEY"
	FieldPayPalClientID       = "PAYPAL_CLIENT_ID"
	FieldPayPalClientSecret   = "PAYPAL_CLIENT_SECRET"
	FieldPaystackSecretKey    = "PAYSTACK_SECRET_KEY"
)

// Guard inspects Credentials without I/O.
type Guard struct {
	creds Credentials
}

func NewGuard(creds Credentials) *Guard {
	return &Guard{creds: creds}
}

type requirement struct {
	field string
	value string
	valid func(string, Environment) bool
}

func (g *Guard) requirements(provider payment.Provider) ([]requirement, bool) {
	c := g.creds
	switch provider {
	case payment.ProviderStripe:
		return []requirement{
			{field: FieldStripeSecretKey, value: c.Stripe.SecretKey, valid: keyPrefix("sk_", "rk_")},
			{field: FieldStripePublishableKey, value: c.Stripe.PublishableKey, valid: keyPrefix("pk_")},
		}, true
	case payment.ProviderPayPal:
		return []requirement{
			{field: FieldPayPalClientID, value: c.PayPal.ClientID},
			{field: FieldPayPalClientSecret, value: c.PayPal.ClientSecret},
			{field: FieldAppBaseURL, value: c.AppBaseURL, valid: absoluteURL},
		}, true
	case payment.ProviderPaystack:
		return []requirement{
			{field: FieldPaystackSecretKey, value: c.Paystack.SecretKey, valid: keyPrefix("sk_")},
			{field: FieldAppBaseURL, value: c.AppBaseURL, valid: absoluteURL},
		}, true
	default:
		return nil, false
	}
}

// Check returns nil or a *payment.ConfigurationError naming every missing and
// invalid field for the provider.
func (g *Guard) Check(provider payment.Provider) error {
	reqs, ok := g.requirements(provider)
	if !ok {
		return &payment.ValidationError{Field: "provider", Reason: "unknown provider " + string(provider)}
	}

	var missing, invalid []string
	for _, r := range reqs {
		v := strings.TrimSpace(r.value)
		switch {
		case v == "":
			missing = append(missing, r.field)
		case r.valid != nil && !r.valid(v, g.creds.Environment):
			invalid = append(invalid, r.field)
		}
	}

	if len(missing) == 0 && len(invalid) == 0 {
		return nil
	}
	return &payment.ConfigurationError{Provider: provider, Missing: missing, Invalid: invalid}
}

// ProviderStatus is the operator-facing view of one provider's configuration.
type ProviderStatus struct {
	Provider   payment.Provider `json:"provider"`
	Configured bool             `json:"configured"`
	Missing    []string         `json:"missing,omitempty"`
	Invalid    []string         `json:"invalid,omitempty"`
}

func (g *Guard) Status() []ProviderStatus {
	out := make([]ProviderStatus, 0, len(payment.AvailableProviders))
	for _, p := range payment.AvailableProviders {
		st := ProviderStatus{Provider: p, Configured: true}
		if cfgErr, ok := g.Check(p).(*payment.ConfigurationError); ok {
			st.Configured = false
			st.Missing = cfgErr.Missing
			st.Invalid = cfgErr.Invalid
		}
		out = append(out, st)
	}
	return out
}

// keyPrefix accepts keys like sk_test_... in sandbox and sk_live_... in live.
func keyPrefix(kinds ...string) func(string, Environment) bool {
	return func(v string, env Environment) bool {
		mode := "test_"
		if env == EnvLive {
			mode = "live_"
		}
		for _, k := range kinds {
			if strings.HasPrefix(v, k+mode) {
				return true
			}
		}
		return false
	}
}

func absoluteURL(v string, _ Environment) bool {
	u, err := url.Parse(v)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
