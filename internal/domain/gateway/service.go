package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"paygate/internal/domain/credentials"
	"paygate/internal/domain/money"
	"paygate/internal/domain/payment"
	"paygate/internal/domain/reference"
	"paygate/pkg/metrics"
)

const (
	DefaultCallbackPath = "/payments/callback"
	DefaultCancelPath   = "/payments/cancel"
)

type Option func(*Service)

func WithCallbackPath(path string) Option {
	return func(s *Service) { s.callbackPath = path }
}

func WithCancelPath(path string) Option {
	return func(s *Service) { s.cancelPath = path }
}

// Service is the single entry point for session creation.
type Service struct {
	adapters     map[payment.Provider]Adapter
	guard        *credentials.Guard
	refs         ReferenceGenerator
	appBaseURL   string
	callbackPath string
	cancelPath   string
}

func NewService(creds credentials.Credentials, refs ReferenceGenerator, adapters []Adapter, opts ...Option) *Service {
	s := &Service{
		adapters:     make(map[payment.Provider]Adapter, len(adapters)),
		guard:        credentials.NewGuard(creds),
		refs:         refs,
		appBaseURL:   creds.AppBaseURL,
		callbackPath: DefaultCallbackPath,
		cancelPath:   DefaultCancelPath,
	}
	for _, a := range adapters {
		s.adapters[a.Provider()] = a
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProviderStatus reports configuration and registration per provider.
func (s *Service) ProviderStatus() []credentials.ProviderStatus {
	statuses := s.guard.Status()
	for i := range statuses {
		if _, ok := s.adapters[statuses[i].Provider]; !ok {
			statuses[i].Configured = false
		}
	}
	return statuses
}

// CreateSession validates, checks credentials, normalizes the amount and
// generates a reference before the single provider call. Any gate failure
// returns before network I/O.
func (s *Service) CreateSession(ctx context.Context, req payment.PaymentRequest) (SessionResult, error) {
	start := time.Now()
	res, err := s.createSession(ctx, req)
	s.observe(ctx, req, res, err, time.Since(start))
	return res, err
}

func (s *Service) createSession(ctx context.Context, req payment.PaymentRequest) (SessionResult, error) {
	if err := req.Validate(); err != nil {
		return SessionResult{}, err
	}

	adapter, ok := s.adapters[req.Provider]
	if !ok {
		return SessionResult{}, &payment.ValidationError{Field: "provider", Reason: "unknown or disabled provider " + strconv.Quote(string(req.Provider))}
	}
	if req.Provider.RequiresEmail() && strings.TrimSpace(req.Payer.Email) == "" {
		return SessionResult{}, &payment.ValidationError{Field: "payer_email", Reason: "is required for " + string(req.Provider)}
	}

	if err := s.guard.Check(req.Provider); err != nil {
		return SessionResult{}, err
	}

	amount, err := money.Normalize(req.Amount, req.Currency, req.Provider)
	if err != nil {
		return SessionResult{}, err
	}

	ref := s.refs.Generate(reference.Prefix(req.Provider), req.Payer.ID, req.Purpose.CorrelationID)

	sessionReq := SessionRequest{
		Provider:       req.Provider,
		Reference:      ref,
		Amount:         amount,
		Payer:          req.Payer,
		Purpose:        req.Purpose,
		IdempotencyKey: req.IdempotencyKey,
		CallbackURL:    s.buildURL(s.callbackPath),
		CancelURL:      s.buildURL(s.cancelPath),
	}

	res, err := adapter.CreateSession(ctx, sessionReq)
	if err != nil {
		return SessionResult{}, err
	}

	if err := checkResult(req.Provider, res); err != nil {
		return SessionResult{}, err
	}
	res.Provider = req.Provider
	res.Reference = ref
	res.Amount = amount
	return res, nil
}

// checkResult enforces that exactly one completion artifact is present.
func checkResult(p payment.Provider, res SessionResult) error {
	malformed := func(msg string) error {
		return &payment.ProviderError{Provider: p, Kind: payment.KindMalformed, Message: msg, Raw: res.Raw}
	}
	switch {
	case res.SessionID == "":
		return malformed("response has no session id")
	case res.ClientSecret == "" && res.RedirectURL == "":
		return malformed("response has neither client secret nor redirect url")
	case res.ClientSecret != "" && res.RedirectURL != "":
		return malformed("response has both client secret and redirect url")
	}
	return nil
}

func (s *Service) buildURL(path string) string {
	if s.appBaseURL == "" {
		return ""
	}
	u, err := url.JoinPath(s.appBaseURL, path)
	if err != nil {
		return ""
	}
	return u
}

func (s *Service) observe(ctx context.Context, req payment.PaymentRequest, res SessionResult, err error, took time.Duration) {
	provider := string(req.Provider)
	if !req.Provider.Valid() {
		provider = "unknown"
	}
	metrics.GatewaySessionDuration.WithLabelValues(provider).Observe(took.Seconds())

	if err == nil {
		metrics.GatewaySessionsTotal.WithLabelValues(provider, "succeeded").Inc()
		slog.InfoContext(ctx, "checkout session created",
			slog.String("provider", provider),
			slog.String("reference", res.Reference),
			slog.String("session_id", res.SessionID),
			slog.String("flow", string(res.Flow())),
			slog.Duration("took", took),
		)
		return
	}

	outcome := outcomeOf(err)
	metrics.GatewaySessionsTotal.WithLabelValues(provider, outcome).Inc()
	if kind := payment.KindOf(err); kind != "" {
		metrics.GatewayProviderErrors.WithLabelValues(provider, string(kind)).Inc()
	}

	level := slog.LevelWarn
	if outcome == "provider_error" || outcome == "token_error" || outcome == "internal_error" {
		level = slog.LevelError
	}
	slog.Log(ctx, level, "checkout session failed",
		slog.String("provider", provider),
		slog.String("outcome", outcome),
		slog.String("kind", string(payment.KindOf(err))),
		slog.String("error", err.Error()),
		slog.Duration("took", took),
	)
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, payment.ErrValidation):
		return "validation_error"
	case errors.Is(err, payment.ErrConfiguration):
		return "configuration_error"
	case errors.Is(err, payment.ErrTokenAcquisition):
		return "token_error"
	case errors.Is(err, payment.ErrProvider):
		return "provider_error"
	default:
		return "internal_error"
	}
}
