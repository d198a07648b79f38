package gateway

import (
	"context"
	"encoding/json"

	"paygate/internal/domain/money"
	"paygate/internal/domain/payment"
)

//go:generate mockgen -source port.go -destination mock_port.go -package gateway

// Adapter is implemented once per external processor. Implementations issue
// at most one call per protocol step and never retry.
type Adapter interface {
	Provider() payment.Provider
	CreateSession(ctx context.Context, req SessionRequest) (SessionResult, error)
}

// ReferenceGenerator produces a fresh reference per CreateSession call.
type ReferenceGenerator interface {
	Generate(prefix, payerID, correlationID string) string
}

// SessionRequest is the normalized, provider-ready form of a PaymentRequest.
type SessionRequest struct {
	Provider       payment.Provider
	Reference      string
	Amount         money.NormalizedAmount
	Payer          payment.Payer
	Purpose        payment.Purpose
	IdempotencyKey string
	CallbackURL    string
	CancelURL      string
}

type Flow string

const (
	FlowClientSecret Flow = "client_secret"
	FlowRedirect     Flow = "redirect"
)

// SessionResult has exactly one of ClientSecret or RedirectURL set. Raw is
// the provider's response, kept for audit only.
type SessionResult struct {
	Provider          payment.Provider       `json:"provider"`
	SessionID         string                 `json:"session_id"`
	ClientSecret      string                 `json:"client_secret,omitempty"`
	RedirectURL       string                 `json:"redirect_url,omitempty"`
	Reference         string                 `json:"reference"`
	ProviderReference string                 `json:"provider_reference,omitempty"`
	Amount            money.NormalizedAmount `json:"amount"`
	Raw               json.RawMessage        `json:"raw,omitempty"`
}

func (r SessionResult) Flow() Flow {
	if r.ClientSecret != "" {
		return FlowClientSecret
	}
	return FlowRedirect
}
