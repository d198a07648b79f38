package payment

import (
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"
)

const maxDescriptionLen = 127

type Payer struct {
	ID    string
	Email string
}

type Purpose struct {
	Description   string
	CorrelationID string
}

// PaymentRequest is owned by the caller and passed by value; nothing downstream keeps it.
type PaymentRequest struct {
	Provider       Provider
	Amount         decimal.Decimal
	Currency       string
	Payer          Payer
	Purpose        Purpose
	IdempotencyKey string
}

// Validate checks the request shape. Amount exactness and currency support are
// left to the money package, which knows the provider rules.
func (r PaymentRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if strings.TrimSpace(r.Currency) == "" {
		return &ValidationError{Field: "currency", Reason: "is required"}
	}
	if strings.TrimSpace(r.Payer.ID) == "" {
		return &ValidationError{Field: "payer_id", Reason: "is required"}
	}
	if r.Payer.Email != "" {
		if _, err := mail.ParseAddress(r.Payer.Email); err != nil {
			return &ValidationError{Field: "payer_email", Reason: "is not a valid address"}
		}
	}
	if len(r.Purpose.Description) > maxDescriptionLen {
		return &ValidationError{Field: "description", Reason: "is longer than 127 characters"}
	}
	return nil
}
