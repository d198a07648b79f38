package credentials

import "strings"

// Environment selects sandbox or live provider endpoints.
type Environment string

const (
	EnvSandbox Environment = "sandbox"
	EnvLive    Environment = "live"
)

func ParseEnvironment(raw string) Environment {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "live", "production", "prod":
		return EnvLive
	default:
		return EnvSandbox
	}
}

type Stripe struct {
	SecretKey      string
	PublishableKey string
	APIBaseURL     string
}

type PayPal struct {
	ClientID     string
	ClientSecret string
	APIBaseURL   string
}

type Paystack struct {
	SecretKey  string
	PublicKey  string
	APIBaseURL string
}

// Credentials is loaded once at start-up and only ever copied afterwards.
type Credentials struct {
	Environment Environment
	AppBaseURL  string

	Stripe   Stripe
	PayPal   PayPal
	Paystack Paystack
}

const (
	stripeAPIURL        = "https://api.stripe.com"
	paypalSandboxAPIURL = "https://api-m.sandbox.paypal.com"
	paypalLiveAPIURL    = "https://api-m.paypal.com"
	paystackAPIURL      = "https://api.paystack.co"
)

func (c Credentials) StripeAPIURL() string {
	if c.Stripe.APIBaseURL != "" {
		return strings.TrimRight(c.Stripe.APIBaseURL, "/")
	}
	return stripeAPIURL
}

func (c Credentials) PayPalAPIURL() string {
	if c.PayPal.APIBaseURL != "" {
		return strings.TrimRight(c.PayPal.APIBaseURL, "/")
	}
	if c.Environment == EnvLive {
		return paypalLiveAPIURL
	}
	return paypalSandboxAPIURL
}

func (c Credentials) PaystackAPIURL() string {
	if c.Paystack.APIBaseURL != "" {
		return strings.TrimRight(c.Paystack.APIBaseURL, "/")
	}
	return paystackAPIURL
}
