package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"paygate/internal/domain/gateway"
	"paygate/internal/domain/payment"
	"paygate/internal/external/httpclient"

	stripego "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/paymentintent"
)

type Config struct {
	SecretKey  string
	APIBaseURL string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client creates PaymentIntents. It owns its backend so the SDK's global key
// and retry settings are never touched.
type Client struct {
	intents paymentintent.Client
	timeout time.Duration
}

func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = httpclient.New()
	}
	lg := cfg.Logger
	if lg == nil {
		lg = slog.Default()
	}

	backendCfg := &stripego.BackendConfig{
		HTTPClient:        hc,
		LeveledLogger:     &leveledLogger{log: lg.With(slog.String("component", "stripe-sdk"))},
		MaxNetworkRetries: stripego.Int64(0),
	}
	if cfg.APIBaseURL != "" {
		backendCfg.URL = stripego.String(cfg.APIBaseURL)
	}

	return &Client{
		intents: paymentintent.Client{
			B:   stripego.GetBackendWithConfig(stripego.APIBackend, backendCfg),
			Key: cfg.SecretKey,
		},
		timeout: cfg.Timeout,
	}
}

func (c *Client) Provider() payment.Provider {
	return payment.ProviderStripe
}

func (c *Client) CreateSession(ctx context.Context, req gateway.SessionRequest) (gateway.SessionResult, error) {
	ctx, cancel := httpclient.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := &stripego.PaymentIntentParams{
		Amount:   stripego.Int64(req.Amount.Minor),
		Currency: stripego.String(strings.ToLower(req.Amount.Currency)),
	}
	if req.Purpose.Description != "" {
		params.Description = stripego.String(req.Purpose.Description)
	}
	if req.Payer.Email != "" {
		params.ReceiptEmail = stripego.String(req.Payer.Email)
	}
	params.Context = ctx
	params.AddMetadata("reference", req.Reference)
	params.AddMetadata("payer_id", req.Payer.ID)
	if req.Purpose.CorrelationID != "" {
		params.AddMetadata("correlation_id", req.Purpose.CorrelationID)
	}
	params.SetIdempotencyKey(idempotencyKey(req))

	pi, err := c.intents.New(params)
	if err != nil {
		return gateway.SessionResult{}, mapError(ctx, err)
	}

	var raw json.RawMessage
	if pi.LastResponse != nil {
		raw = payment.RawJSON(pi.LastResponse.RawJSON)
	}
	if pi.ID == "" || pi.ClientSecret == "" {
		return gateway.SessionResult{}, httpclient.Malformed(payment.ProviderStripe, http.StatusOK, raw,
			"payment intent response is missing id or client secret")
	}

	return gateway.SessionResult{
		SessionID:         pi.ID,
		ClientSecret:      pi.ClientSecret,
		ProviderReference: pi.ID,
		Raw:               raw,
	}, nil
}

// idempotencyKey falls back to the reference, which is unique per call.
func idempotencyKey(req gateway.SessionRequest) string {
	if req.IdempotencyKey != "" {
		return req.IdempotencyKey
	}
	return req.Reference
}

func mapError(ctx context.Context, err error) error {
	var se *stripego.Error
	if errors.As(err, &se) {
		raw, _ := json.Marshal(se)
		msg := se.Msg
		if msg == "" {
			msg = string(se.Type)
		}
		return httpclient.StatusError(payment.ProviderStripe, se.HTTPStatusCode, msg, raw)
	}

	var urlErr *url.Error
	var netErr net.Error
	if ctx.Err() != nil || errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return httpclient.TransportError(ctx, payment.ProviderStripe, err)
	}

	// the SDK reports undecodable bodies as plain errors
	return &payment.ProviderError{
		Provider: payment.ProviderStripe,
		Kind:     payment.KindMalformed,
		Message:  err.Error(),
	}
}
