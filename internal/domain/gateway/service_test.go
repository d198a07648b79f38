package gateway

import (
	"context"
	"sync"
	"testing"

	"paygate/internal/domain/credentials"
	"paygate/internal/domain/payment"
	"paygate/internal/domain/reference"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testCredentials() credentials.Credentials {
	return credentials.Credentials{
		Environment: credentials.EnvSandbox,
		AppBaseURL:  "https://shop.example.com",
		Stripe:      credentials.Stripe{SecretKey: "sk_test_1", PublishableKey: "pk_test_1"},
		PayPal:      credentials.PayPal{ClientID: "id", ClientSecret: "secret"},
		Paystack:    credentials.Paystack{SecretKey: "sk_test_2"},
	}
}

type fixture struct {
	service  *Service
	stripe   *MockAdapter
	paystack *MockAdapter
	refs     *MockReferenceGenerator
}

func gatewayService(t *testing.T, creds credentials.Credentials) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	stripe := NewMockAdapter(ctrl)
	stripe.EXPECT().Provider().Return(payment.ProviderStripe).AnyTimes()
	paystack := NewMockAdapter(ctrl)
	paystack.EXPECT().Provider().Return(payment.ProviderPaystack).AnyTimes()
	refs := NewMockReferenceGenerator(ctrl)

	return fixture{
		service:  NewService(creds, refs, []Adapter{stripe, paystack}),
		stripe:   stripe,
		paystack: paystack,
		refs:     refs,
	}
}

func stripeRequest() payment.PaymentRequest {
	return payment.PaymentRequest{
		Provider: payment.ProviderStripe,
		Amount:   decimal.RequireFromString("49.99"),
		Currency: "USD",
		Payer:    payment.Payer{ID: "user-1", Email: "payer@example.com"},
		Purpose:  payment.Purpose{Description: "Invoice #7", CorrelationID: "inv-7"},
	}
}

func TestService_CreateSession_Success(t *testing.T) {
	t.Parallel()

	f := gatewayService(t, testCredentials())
	ctx := context.Background()

	t.Run("should normalize, reference and call the adapter once", func(t *testing.T) {
		// given
		f.refs.EXPECT().Generate("stp", "user-1", "inv-7").Return("stp_inv-7_abc")
		f.stripe.EXPECT().CreateSession(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, req SessionRequest) (SessionResult, error) {
				assert.Equal(t, "stp_inv-7_abc", req.Reference)
				assert.Equal(t, int64(4999), req.Amount.Minor)
				assert.Equal(t, "USD", req.Amount.Currency)
				assert.Equal(t, "https://shop.example.com/payments/callback", req.CallbackURL)
				assert.Equal(t, "https://shop.example.com/payments/cancel", req.CancelURL)
				return SessionResult{SessionID: "pi_1", ClientSecret: "pi_1_secret"}, nil
			}).Times(1)

		// when
		res, err := f.service.CreateSession(ctx, stripeRequest())

		// then
		require.NoError(t, err)
		assert.Equal(t, payment.ProviderStripe, res.Provider)
		assert.Equal(t, "pi_1", res.SessionID)
		assert.Equal(t, "pi_1_secret", res.ClientSecret)
		assert.Empty(t, res.RedirectURL)
		assert.Equal(t, "stp_inv-7_abc", res.Reference)
		assert.Equal(t, int64(4999), res.Amount.Minor)
		assert.Equal(t, FlowClientSecret, res.Flow())
	})
}

func TestService_CreateSession_GatesBeforeNetwork(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		creds       func() credentials.Credentials
		request     func() payment.PaymentRequest
		expectedErr error
	}{
		{
			name:        "zero amount",
			request:     func() payment.PaymentRequest { r := stripeRequest(); r.Amount = decimal.Zero; return r },
			expectedErr: payment.ErrValidation,
		},
		{
			name:        "negative amount",
			request:     func() payment.PaymentRequest { r := stripeRequest(); r.Amount = decimal.NewFromInt(-5); return r },
			expectedErr: payment.ErrValidation,
		},
		{
			name:        "missing payer",
			request:     func() payment.PaymentRequest { r := stripeRequest(); r.Payer.ID = ""; return r },
			expectedErr: payment.ErrValidation,
		},
		{
			name:        "empty currency",
			request:     func() payment.PaymentRequest { r := stripeRequest(); r.Currency = ""; return r },
			expectedErr: payment.ErrValidation,
		},
		{
			name:        "unknown provider",
			request:     func() payment.PaymentRequest { r := stripeRequest(); r.Provider = "square"; return r },
			expectedErr: payment.ErrValidation,
		},
		{
			name:        "registered provider without adapter",
			request:     func() payment.PaymentRequest { r := stripeRequest(); r.Provider = payment.ProviderPayPal; return r },
			expectedErr: payment.ErrValidation,
		},
		{
			name: "paystack without email",
			request: func() payment.PaymentRequest {
				r := stripeRequest()
				r.Provider = payment.ProviderPaystack
				r.Currency = "NGN"
				r.Payer.Email = ""
				return r
			},
			expectedErr: payment.ErrValidation,
		},
		{
			name:        "missing credentials",
			creds:       func() credentials.Credentials { c := testCredentials(); c.Stripe.SecretKey = ""; return c },
			request:     stripeRequest,
			expectedErr: payment.ErrConfiguration,
		},
		{
			name:        "unsupported currency",
			request:     func() payment.PaymentRequest { r := stripeRequest(); r.Currency = "usd1"; return r },
			expectedErr: payment.ErrValidation,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			creds := testCredentials()
			if tc.creds != nil {
				creds = tc.creds()
			}
			f := gatewayService(t, creds)
			// no Generate / CreateSession expectations: any call fails the test

			// when
			_, err := f.service.CreateSession(context.Background(), tc.request())

			// then
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func TestService_CreateSession_ConfigurationErrorNamesField(t *testing.T) {
	t.Parallel()

	creds := testCredentials()
	creds.Paystack.SecretKey = ""
	f := gatewayService(t, creds)

	req := stripeRequest()
	req.Provider = payment.ProviderPaystack
	req.Currency = "NGN"

	_, err := f.service.CreateSession(context.Background(), req)

	var cfgErr *payment.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{credentials.FieldPaystackSecretKey}, cfgErr.Missing)
}

func TestService_CreateSession_AdapterFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("adapter error is returned as-is", func(t *testing.T) {
		f := gatewayService(t, testCredentials())
		providerErr := &payment.ProviderError{Provider: payment.ProviderStripe, Kind: payment.KindRejected, Message: "card declined"}
		f.refs.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).Return("stp_general_x")
		f.stripe.EXPECT().CreateSession(ctx, gomock.Any()).Return(SessionResult{}, providerErr).Times(1)

		_, err := f.service.CreateSession(ctx, stripeRequest())

		assert.Same(t, providerErr, err)
	})

	testCases := []struct {
		name   string
		result SessionResult
	}{
		{name: "neither secret nor redirect", result: SessionResult{SessionID: "pi_1"}},
		{name: "both secret and redirect", result: SessionResult{SessionID: "pi_1", ClientSecret: "s", RedirectURL: "https://x"}},
		{name: "no session id", result: SessionResult{ClientSecret: "s"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := gatewayService(t, testCredentials())
			f.refs.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).Return("stp_general_x")
			f.stripe.EXPECT().CreateSession(ctx, gomock.Any()).Return(tc.result, nil).Times(1)

			_, err := f.service.CreateSession(ctx, stripeRequest())

			var providerErr *payment.ProviderError
			require.ErrorAs(t, err, &providerErr)
			assert.Equal(t, payment.KindMalformed, providerErr.Kind)
		})
	}
}

func TestService_CreateSession_ConcurrentSamePayer(t *testing.T) {
	t.Parallel()

	const n = 100
	ctrl := gomock.NewController(t)
	adapter := NewMockAdapter(ctrl)
	adapter.EXPECT().Provider().Return(payment.ProviderStripe).AnyTimes()
	adapter.EXPECT().CreateSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req SessionRequest) (SessionResult, error) {
			return SessionResult{SessionID: "pi_" + req.Reference, ClientSecret: "secret"}, nil
		}).Times(n)

	service := NewService(testCredentials(), reference.NewGenerator(), []Adapter{adapter})

	refs := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			res, err := service.CreateSession(context.Background(), stripeRequest())
			assert.NoError(t, err)
			refs[idx] = res.Reference
		}(i)
	}
	wg.Wait()

	seen := make(map[string]struct{}, n)
	for _, r := range refs {
		seen[r] = struct{}{}
	}
	assert.Len(t, seen, n)
}

func TestService_ProviderStatus(t *testing.T) {
	t.Parallel()

	f := gatewayService(t, testCredentials())

	statuses := f.service.ProviderStatus()

	require.Len(t, statuses, 3)
	byProvider := map[payment.Provider]bool{}
	for _, st := range statuses {
		byProvider[st.Provider] = st.Configured
	}
	assert.True(t, byProvider[payment.ProviderStripe])
	assert.False(t, byProvider[payment.ProviderPayPal], "no adapter registered")
	assert.True(t, byProvider[payment.ProviderPaystack])
}
