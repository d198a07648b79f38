package checkout

import (
	"fmt"
	"time"

	"paygate/internal/controller/apperror"
	"paygate/internal/domain/gateway"
	"paygate/internal/domain/money"
	"paygate/internal/domain/payment"
)

// Session is a created provider session plus the request context needed to
// reconcile it later. ClientSecret is only ever returned to the caller and
// kept in the replay store; the repository never stores it.
type Session struct {
	Reference         string                 `json:"reference"`
	Provider          payment.Provider       `json:"provider"`
	SessionID         string                 `json:"session_id"`
	Flow              gateway.Flow           `json:"flow"`
	ClientSecret      string                 `json:"client_secret,omitempty"`
	RedirectURL       string                 `json:"redirect_url,omitempty"`
	ProviderReference string                 `json:"provider_reference,omitempty"`
	Amount            money.NormalizedAmount `json:"amount"`
	PayerID           string                 `json:"payer_id"`
	PayerEmail        string                 `json:"payer_email,omitempty"`
	CorrelationID     string                 `json:"correlation_id,omitempty"`
	IdempotencyKey    string                 `json:"idempotency_key,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`

	Replayed bool `json:"-"`
}

func newSession(req payment.PaymentRequest, res gateway.SessionResult, now time.Time) Session {
	return Session{
		Reference:         res.Reference,
		Provider:          res.Provider,
		SessionID:         res.SessionID,
		Flow:              res.Flow(),
		ClientSecret:      res.ClientSecret,
		RedirectURL:       res.RedirectURL,
		ProviderReference: res.ProviderReference,
		Amount:            res.Amount,
		PayerID:           req.Payer.ID,
		PayerEmail:        req.Payer.Email,
		CorrelationID:     req.Purpose.CorrelationID,
		IdempotencyKey:    req.IdempotencyKey,
		CreatedAt:         now.UTC(),
	}
}

// Redacted drops the client secret.
func (s Session) Redacted() Session {
	s.ClientSecret = ""
	return s
}

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Query struct {
	PayerID  string
	Provider payment.Provider
	Limit    int
	Offset   int
}

// Normalize applies default and maximum page sizes.
func (q Query) Normalize() (Query, error) {
	if q.Limit < 0 || q.Offset < 0 {
		return Query{}, invalidQuery("limit and offset must not be negative")
	}
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Provider != "" && !q.Provider.Valid() {
		return Query{}, invalidQuery("unknown provider " + string(q.Provider))
	}
	return q, nil
}

func invalidQuery(reason string) error {
	return fmt.Errorf("%w: %s", apperror.ErrInvalidSessionsQuery, reason)
}
