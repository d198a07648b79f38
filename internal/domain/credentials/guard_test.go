package credentials

import (
	"testing"

	"paygate/internal/domain/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullCredentials() Credentials {
	return Credentials{
		Environment: EnvSandbox,
		AppBaseURL:  "https://shop.example.com",
		Stripe: Stripe{
			SecretKey:      "sk_test_123",
			PublishableKey: "pk_test_123",
		},
		PayPal: PayPal{
			ClientID:     "paypal-client",
			ClientSecret: "paypal-secret",
		},
		Paystack: Paystack{
			SecretKey: "sk_test_abc",
		},
	}
}

func TestGuard_Check_AllPresent(t *testing.T) {
	t.Parallel()

	guard := NewGuard(fullCredentials())

	for _, p := range payment.AvailableProviders {
		assert.NoError(t, guard.Check(p), "provider=%s", p)
	}
}

func TestGuard_Check_NamesExactlyTheMissingField(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		provider payment.Provider
		field    string
		remove   func(*Credentials)
	}{
		{payment.ProviderStripe, FieldStripeSecretKey, func(c *Credentials) { c.Stripe.SecretKey = "" }},
		{payment.ProviderStripe, FieldStripePublishableKey, func(c *Credentials) { c.Stripe.PublishableKey = "" }},
		{payment.ProviderPayPal, FieldPayPalClientID, func(c *Credentials) { c.PayPal.ClientID = "" }},
		{payment.ProviderPayPal, FieldPayPalClientSecret, func(c *Credentials) { c.PayPal.ClientSecret = "  " }},
		{payment.ProviderPayPal, FieldAppBaseURL, func(c *Credentials) { c.AppBaseURL = "" }},
		{payment.ProviderPaystack, FieldPaystackSecretKey, func(c *Credentials) { c.Paystack.SecretKey = "" }},
		{payment.ProviderPaystack, FieldAppBaseURL, func(c *Credentials) { c.AppBaseURL = "" }},
	}

	for _, tc := range testCases {
		t.Run(string(tc.provider)+"/"+tc.field, func(t *testing.T) {
			// given
			creds := fullCredentials()
			tc.remove(&creds)
			guard := NewGuard(creds)

			// when
			err := guard.Check(tc.provider)

			// then
			var cfgErr *payment.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tc.provider, cfgErr.Provider)
			assert.Equal(t, []string{tc.field}, cfgErr.Missing)
			assert.Empty(t, cfgErr.Invalid)
			assert.ErrorIs(t, err, payment.ErrConfiguration)
		})
	}
}

func TestGuard_Check_ListsEveryMissingField(t *testing.T) {
	t.Parallel()

	guard := NewGuard(Credentials{})

	err := guard.Check(payment.ProviderPayPal)

	var cfgErr *payment.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{FieldPayPalClientID, FieldPayPalClientSecret, FieldAppBaseURL}, cfgErr.Missing)
}

func TestGuard_Check_InvalidFields(t *testing.T) {
	t.Parallel()

	t.Run("live key in sandbox", func(t *testing.T) {
		creds := fullCredentials()
		creds.Stripe.SecretKey = "sk_live_123"

		err := NewGuard(creds).Check(payment.ProviderStripe)

		var cfgErr *payment.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Empty(t, cfgErr.Missing)
		assert.Equal(t, []string{FieldStripeSecretKey}, cfgErr.Invalid)
		assert.NotContains(t, err.Error(), "sk_live_123")
	})

	t.Run("live keys in live environment", func(t *testing.T) {
		creds := fullCredentials()
		creds.Environment = EnvLive
		creds.Stripe.SecretKey = "sk_live_123"
		creds.Stripe.PublishableKey = "pk_live_123"

		assert.NoError(t, NewGuard(creds).Check(payment.ProviderStripe))
	})

	t.Run("relative base url", func(t *testing.T) {
		creds := fullCredentials()
		creds.AppBaseURL = "shop.example.com/checkout"

		err := NewGuard(creds).Check(payment.ProviderPaystack)

		var cfgErr *payment.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, []string{FieldAppBaseURL}, cfgErr.Invalid)
	})
}

func TestGuard_Check_UnknownProvider(t *testing.T) {
	t.Parallel()

	err := NewGuard(fullCredentials()).Check(payment.Provider("square"))

	assert.ErrorIs(t, err, payment.ErrValidation)
}

func TestGuard_Status(t *testing.T) {
	t.Parallel()

	creds := fullCredentials()
	creds.Paystack.SecretKey = ""

	statuses := NewGuard(creds).Status()

	require.Len(t, statuses, 3)
	assert.True(t, statuses[0].Configured)
	assert.True(t, statuses[1].Configured)
	assert.False(t, statuses[2].Configured)
	assert.Equal(t, []string{FieldPaystackSecretKey}, statuses[2].Missing)
}

func TestCredentials_Endpoints(t *testing.T) {
	t.Parallel()

	sandbox := Credentials{Environment: EnvSandbox}
	live := Credentials{Environment: EnvLive}
	override := Credentials{PayPal: PayPal{APIBaseURL: "http://localhost:9000/"}}

	assert.Equal(t, "https://api-m.sandbox.paypal.com", sandbox.PayPalAPIURL())
	assert.Equal(t, "https://api-m.paypal.com", live.PayPalAPIURL())
	assert.Equal(t, "http://localhost:9000", override.PayPalAPIURL())
	assert.Equal(t, "https://api.stripe.com", sandbox.StripeAPIURL())
	assert.Equal(t, "https://api.paystack.co", live.PaystackAPIURL())
}
