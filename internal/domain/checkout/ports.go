package checkout

import (
	"context"

	"paygate/internal/domain/gateway"
	"paygate/internal/domain/payment"
	"paygate/internal/messaging"
)

//go:generate mockgen -source ports.go -destination mock_ports.go -package checkout

type SessionCreator interface {
	CreateSession(ctx context.Context, req payment.PaymentRequest) (gateway.SessionResult, error)
}

type SessionRepo interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context, reference string) (Session, error)
	List(ctx context.Context, q Query) ([]Session, error)
}

// ReplayStore guards idempotency keys per payer. Claim returns (nil, nil)
// when the key was free and is now held by the caller, and the stored session
// when the key already completed for the same fingerprint. A different
// fingerprint yields apperror.ErrIdempotencyKeyReused; a matching one that is
// still running yields apperror.ErrIdempotencyInProgress.
type ReplayStore interface {
	Claim(ctx context.Context, key ReplayKey) (*Session, error)
	Complete(ctx context.Context, key ReplayKey, s Session) error
	Release(ctx context.Context, key ReplayKey) error
}

type EventPublisher interface {
	Publish(ctx context.Context, envelope messaging.Envelope) error
}
