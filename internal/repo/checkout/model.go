package checkout_repo

import (
	"time"

	"paygate/internal/domain/checkout"
	"paygate/internal/domain/gateway"
	"paygate/internal/domain/money"
	"paygate/internal/domain/payment"
	"paygate/pkg/pointers"
)

var sessionColumns = []string{
	"reference", "provider", "session_id", "flow", "redirect_url", "provider_reference",
	"amount_unit", "amount_exponent", "amount_minor", "amount_major", "currency",
	"payer_id", "payer_email", "correlation_id", "idempotency_key", "created_at",
}

// row mirrors checkout_sessions; nullable text columns scan into pointers.
type row struct {
	Reference         string
	Provider          string
	SessionID         string
	Flow              string
	RedirectURL       *string
	ProviderReference *string
	AmountUnit        string
	AmountExponent    int16
	AmountMinor       int64
	AmountMajor       string
	Currency          string
	PayerID           string
	PayerEmail        *string
	CorrelationID     *string
	IdempotencyKey    *string
	CreatedAt         time.Time
}

func (r *row) dest() []any {
	return []any{
		&r.Reference, &r.Provider, &r.SessionID, &r.Flow, &r.RedirectURL, &r.ProviderReference,
		&r.AmountUnit, &r.AmountExponent, &r.AmountMinor, &r.AmountMajor, &r.Currency,
		&r.PayerID, &r.PayerEmail, &r.CorrelationID, &r.IdempotencyKey, &r.CreatedAt,
	}
}

func (r row) toDomain() checkout.Session {
	return checkout.Session{
		Reference:         r.Reference,
		Provider:          payment.Provider(r.Provider),
		SessionID:         r.SessionID,
		Flow:              gateway.Flow(r.Flow),
		RedirectURL:       pointers.Deref(r.RedirectURL),
		ProviderReference: pointers.Deref(r.ProviderReference),
		Amount: money.NormalizedAmount{
			Unit:     money.Unit(r.AmountUnit),
			Currency: r.Currency,
			Exponent: int32(r.AmountExponent),
			Minor:    r.AmountMinor,
			Major:    r.AmountMajor,
		},
		PayerID:        r.PayerID,
		PayerEmail:     pointers.Deref(r.PayerEmail),
		CorrelationID:  pointers.Deref(r.CorrelationID),
		IdempotencyKey: pointers.Deref(r.IdempotencyKey),
		CreatedAt:      r.CreatedAt,
	}
}

// values never includes the client secret.
func values(s checkout.Session) []any {
	return []any{
		s.Reference, string(s.Provider), s.SessionID, string(s.Flow), pointers.NilIfEmpty(s.RedirectURL), pointers.NilIfEmpty(s.ProviderReference),
		string(s.Amount.Unit), int16(s.Amount.Exponent), s.Amount.Minor, s.Amount.Major, s.Amount.Currency,
		s.PayerID, pointers.NilIfEmpty(s.PayerEmail), pointers.NilIfEmpty(s.CorrelationID), pointers.NilIfEmpty(s.IdempotencyKey), s.CreatedAt,
	}
}
