package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"paygate/internal/controller/apperror"
	"paygate/internal/domain/payment"
	"paygate/internal/messaging"
)

type Option func(*Service)

func WithRepo(repo SessionRepo) Option {
	return func(s *Service) { s.repo = repo }
}

func WithReplayStore(store ReplayStore) Option {
	return func(s *Service) { s.replay = store }
}

func WithPublisher(p EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service is the caller-side policy around the gateway: idempotent replay,
// persistence and event fan-out. Repo, replay store and publisher are optional.
type Service struct {
	creator   SessionCreator
	repo      SessionRepo
	replay    ReplayStore
	publisher EventPublisher
	now       func() time.Time
}

func NewService(creator SessionCreator, opts ...Option) *Service {
	s := &Service{creator: creator, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Start(ctx context.Context, req payment.PaymentRequest) (Session, error) {
	key := newReplayKey(req)
	guarded := key.Key != "" && s.replay != nil

	if guarded {
		prior, err := s.replay.Claim(ctx, key)
		if err != nil {
			return Session{}, fmt.Errorf("claim idempotency key: %w", err)
		}
		if prior != nil {
			if prior.PayerID != req.Payer.ID || prior.Provider != req.Provider {
				return Session{}, apperror.ErrIdempotencyKeyReused
			}
			prior.Replayed = true
			slog.InfoContext(ctx, "checkout session replayed",
				slog.String("reference", prior.Reference),
				slog.String("provider", string(prior.Provider)),
			)
			return *prior, nil
		}
	}

	res, err := s.creator.CreateSession(ctx, req)
	if err != nil {
		if guarded {
			if relErr := s.replay.Release(ctx, key); relErr != nil {
				slog.WarnContext(ctx, "release idempotency key", slog.String("error", relErr.Error()))
			}
		}
		return Session{}, err
	}

	session := newSession(req, res, s.now())
	s.store(ctx, session)
	s.publish(ctx, session)

	if guarded {
		if err := s.replay.Complete(ctx, key, session); err != nil {
			slog.WarnContext(ctx, "complete idempotency key",
				slog.String("reference", session.Reference),
				slog.String("error", err.Error()),
			)
		}
	}
	return session, nil
}

// store and publish never fail the request: the provider session already
// exists and the caller needs its artifact.
func (s *Service) store(ctx context.Context, session Session) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Save(ctx, session.Redacted()); err != nil {
		slog.ErrorContext(ctx, "persist checkout session",
			slog.String("reference", session.Reference),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Service) publish(ctx context.Context, session Session) {
	if s.publisher == nil {
		return
	}
	env, err := messaging.NewEnvelope(session.Reference, EventSessionCreated, newSessionCreatedEvent(session))
	if err != nil {
		slog.ErrorContext(ctx, "build session event", slog.String("error", err.Error()))
		return
	}
	if err := s.publisher.Publish(ctx, env); err != nil {
		slog.ErrorContext(ctx, "publish session event",
			slog.String("reference", session.Reference),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Service) Get(ctx context.Context, reference string) (Session, error) {
	if s.repo == nil {
		return Session{}, apperror.ErrStorageDisabled
	}
	session, err := s.repo.Get(ctx, reference)
	if err != nil {
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

func (s *Service) List(ctx context.Context, q Query) ([]Session, error) {
	if s.repo == nil {
		return nil, apperror.ErrStorageDisabled
	}
	q, err := q.Normalize()
	if err != nil {
		return nil, err
	}
	sessions, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}
