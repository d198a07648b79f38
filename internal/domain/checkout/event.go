package checkout

import "time"

const EventSessionCreated = "checkout.session.created"

// SessionCreatedEvent is what downstream consumers see. It never carries the
// client secret or the payer email.
type SessionCreatedEvent struct {
	Reference         string    `json:"reference"`
	Provider          string    `json:"provider"`
	SessionID         string    `json:"session_id"`
	Flow              string    `json:"flow"`
	ProviderReference string    `json:"provider_reference,omitempty"`
	AmountMinor       int64     `json:"amount_minor"`
	AmountMajor       string    `json:"amount_major"`
	Currency          string    `json:"currency"`
	PayerID           string    `json:"payer_id"`
	CorrelationID     string    `json:"correlation_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

func newSessionCreatedEvent(s Session) SessionCreatedEvent {
	return SessionCreatedEvent{
		Reference:         s.Reference,
		Provider:          string(s.Provider),
		SessionID:         s.SessionID,
		Flow:              string(s.Flow),
		ProviderReference: s.ProviderReference,
		AmountMinor:       s.Amount.Minor,
		AmountMajor:       s.Amount.Major,
		Currency:          s.Amount.Currency,
		PayerID:           s.PayerID,
		CorrelationID:     s.CorrelationID,
		CreatedAt:         s.CreatedAt,
	}
}
