package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"paygate/internal/domain/gateway"
	"paygate/internal/domain/payment"
	"paygate/internal/external/httpclient"
)

const initializePath = "/transaction/initialize"

type Config struct {
	SecretKey  string
	APIBaseURL string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client initializes hosted-page transactions. Paystack has no idempotency
// header; the unique reference is its dedupe key.
type Client struct {
	secretKey string
	url       string
	http      *http.Client
	timeout   time.Duration
}

func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = httpclient.New()
	}
	return &Client{
		secretKey: cfg.SecretKey,
		url:       cfg.APIBaseURL + initializePath,
		http:      hc,
		timeout:   cfg.Timeout,
	}
}

func (c *Client) Provider() payment.Provider {
	return payment.ProviderPaystack
}

type metadata struct {
	PayerID       string `json:"payer_id"`
	CorrelationID string `json:"correlation_id,omitempty"`
	Description   string `json:"description,omitempty"`
	CancelAction  string `json:"cancel_action,omitempty"`
}

type initializeRequest struct {
	Email       string   `json:"email"`
	Amount      int64    `json:"amount"`
	Currency    string   `json:"currency"`
	Reference   string   `json:"reference"`
	CallbackURL string   `json:"callback_url,omitempty"`
	Metadata    metadata `json:"metadata"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

func (c *Client) CreateSession(ctx context.Context, req gateway.SessionRequest) (gateway.SessionResult, error) {
	ctx, cancel := httpclient.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(initializeRequest{
		Email:       req.Payer.Email,
		Amount:      req.Amount.Minor,
		Currency:    req.Amount.Currency,
		Reference:   req.Reference,
		CallbackURL: req.CallbackURL,
		Metadata: metadata{
			PayerID:       req.Payer.ID,
			CorrelationID: req.Purpose.CorrelationID,
			Description:   req.Purpose.Description,
			CancelAction:  req.CancelURL,
		},
	})
	if err != nil {
		return gateway.SessionResult{}, fmt.Errorf("marshal initialize: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return gateway.SessionResult{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return gateway.SessionResult{}, httpclient.TransportError(ctx, payment.ProviderPaystack, err)
	}
	raw, err := httpclient.ReadBody(resp)
	if err != nil {
		return gateway.SessionResult{}, httpclient.TransportError(ctx, payment.ProviderPaystack, err)
	}

	var out initializeResponse
	decodeErr := json.Unmarshal(raw, &out)

	if !httpclient.Success(resp.StatusCode) {
		return gateway.SessionResult{}, httpclient.StatusError(payment.ProviderPaystack, resp.StatusCode, out.Message, raw)
	}
	if decodeErr != nil {
		return gateway.SessionResult{}, httpclient.Malformed(payment.ProviderPaystack, resp.StatusCode, raw, "decode initialize: %v", decodeErr)
	}
	// Paystack reports some rejections as 200 with status=false
	if !out.Status {
		return gateway.SessionResult{}, &payment.ProviderError{
			Provider:   payment.ProviderPaystack,
			Kind:       payment.KindRejected,
			Message:    out.Message,
			StatusCode: resp.StatusCode,
			Raw:        payment.RawJSON(raw),
		}
	}
	if out.Data.AuthorizationURL == "" || out.Data.AccessCode == "" {
		return gateway.SessionResult{}, httpclient.Malformed(payment.ProviderPaystack, resp.StatusCode, raw,
			"initialize response is missing authorization_url or access_code")
	}

	providerRef := out.Data.Reference
	if providerRef == "" {
		providerRef = req.Reference
	}
	return gateway.SessionResult{
		SessionID:         out.Data.AccessCode,
		RedirectURL:       out.Data.AuthorizationURL,
		ProviderReference: providerRef,
		Raw:               payment.RawJSON(raw),
	}, nil
}
