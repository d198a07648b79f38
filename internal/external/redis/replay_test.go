package redis

import (
	"context"
	"testing"

	"paygate/internal/controller/apperror"
	"paygate/internal/domain/checkout"
	"paygate/internal/domain/gateway"
	"paygate/internal/domain/money"
	"paygate/internal/domain/payment"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func stripeCheckout(key string) payment.PaymentRequest {
	return payment.PaymentRequest{
		Provider:       payment.ProviderStripe,
		Amount:         decimal.RequireFromString("49.99"),
		Currency:       "USD",
		Payer:          payment.Payer{ID: "user-1"},
		IdempotencyKey: key,
	}
}

func TestCheckoutReplay_ThroughRedisStore(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name   string
		second func() payment.PaymentRequest
	}{
		{
			name: "other provider and amount",
			second: func() payment.PaymentRequest {
				r := stripeCheckout("key-1")
				r.Provider = payment.ProviderPaystack
				r.Amount = decimal.NewFromInt(5000)
				r.Currency = "NGN"
				return r
			},
		},
		{
			name: "same payer, changed amount",
			second: func() payment.PaymentRequest {
				r := stripeCheckout("key-1")
				r.Amount = decimal.RequireFromString("99.99")
				return r
			},
		},
	}

	for _, tc := range testCases {
		t.Run("rejects reuse with "+tc.name, func(t *testing.T) {
			// given
			creator := checkout.NewMockSessionCreator(gomock.NewController(t))
			creator.EXPECT().CreateSession(gomock.Any(), gomock.Any()).Return(gateway.SessionResult{
				Provider:     payment.ProviderStripe,
				SessionID:    "pi_1",
				ClientSecret: "pi_1_secret",
				Reference:    "stp_general_x",
				Amount:       money.NormalizedAmount{Unit: money.UnitMinor, Currency: "USD", Exponent: 2, Minor: 4999},
			}, nil).Times(1)
			service := checkout.NewService(creator, checkout.WithReplayStore(newStore(newMemoryKV())))

			_, err := service.Start(ctx, stripeCheckout("key-1"))
			require.NoError(t, err)

			// when
			session, err := service.Start(ctx, tc.second())

			// then
			assert.ErrorIs(t, err, apperror.ErrIdempotencyKeyReused)
			assert.Empty(t, session.ClientSecret)
		})
	}

	t.Run("another payer with the same key gets its own session", func(t *testing.T) {
		creator := checkout.NewMockSessionCreator(gomock.NewController(t))
		creator.EXPECT().CreateSession(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req payment.PaymentRequest) (gateway.SessionResult, error) {
				return gateway.SessionResult{
					Provider:     payment.ProviderStripe,
					SessionID:    "pi_" + req.Payer.ID,
					ClientSecret: "secret_" + req.Payer.ID,
					Reference:    "stp_" + req.Payer.ID,
				}, nil
			}).Times(2)
		service := checkout.NewService(creator, checkout.WithReplayStore(newStore(newMemoryKV())))

		_, err := service.Start(ctx, stripeCheckout("key-1"))
		require.NoError(t, err)

		other := stripeCheckout("key-1")
		other.Payer.ID = "user-2"
		session, err := service.Start(ctx, other)

		require.NoError(t, err)
		assert.False(t, session.Replayed)
		assert.Equal(t, "secret_user-2", session.ClientSecret)
	})

	t.Run("identical retry replays", func(t *testing.T) {
		creator := checkout.NewMockSessionCreator(gomock.NewController(t))
		creator.EXPECT().CreateSession(gomock.Any(), gomock.Any()).Return(gateway.SessionResult{
			Provider: payment.ProviderStripe, SessionID: "pi_1", ClientSecret: "pi_1_secret", Reference: "stp_general_x",
		}, nil).Times(1)
		service := checkout.NewService(creator, checkout.WithReplayStore(newStore(newMemoryKV())))

		_, err := service.Start(ctx, stripeCheckout("key-1"))
		require.NoError(t, err)
		session, err := service.Start(ctx, stripeCheckout("key-1"))

		require.NoError(t, err)
		assert.True(t, session.Replayed)
		assert.Equal(t, "pi_1_secret", session.ClientSecret)
	})
}
