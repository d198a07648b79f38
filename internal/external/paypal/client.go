package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"paygate/internal/domain/gateway"
	"paygate/internal/domain/payment"
	"paygate/internal/external/httpclient"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	tokenPath = "/v1/oauth2/token"
	orderPath = "/v2/checkout/orders"

	relApprove     = "approve"
	relPayerAction = "payer-action"
)

type Config struct {
	ClientID       string
	ClientSecret   string
	APIBaseURL     string
	BrandName      string
	TokenTimeout   time.Duration
	SessionTimeout time.Duration
	HTTPClient     *http.Client
}

// Client creates Orders v2 orders. Every CreateSession fetches a fresh token;
// nothing is cached between calls.
type Client struct {
	baseURL        string
	brandName      string
	oauth          clientcredentials.Config
	http           *http.Client
	tokenTimeout   time.Duration
	sessionTimeout time.Duration
}

func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = httpclient.New()
	}
	return &Client{
		baseURL:   cfg.APIBaseURL,
		brandName: cfg.BrandName,
		oauth: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.APIBaseURL + tokenPath,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		http:           hc,
		tokenTimeout:   cfg.TokenTimeout,
		sessionTimeout: cfg.SessionTimeout,
	}
}

func (c *Client) Provider() payment.Provider {
	return payment.ProviderPayPal
}

type orderAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	ReferenceID string      `json:"reference_id"`
	CustomID    string      `json:"custom_id,omitempty"`
	Description string      `json:"description,omitempty"`
	Amount      orderAmount `json:"amount"`
}

type applicationContext struct {
	BrandName          string `json:"brand_name,omitempty"`
	ReturnURL          string `json:"return_url"`
	CancelURL          string `json:"cancel_url"`
	UserAction         string `json:"user_action"`
	ShippingPreference string `json:"shipping_preference"`
}

type orderRequest struct {
	Intent             string             `json:"intent"`
	PurchaseUnits      []purchaseUnit     `json:"purchase_units"`
	ApplicationContext applicationContext `json:"application_context"`
}

type link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []link `json:"links"`
}

type errorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	DebugID string `json:"debug_id"`
}

func (c *Client) CreateSession(ctx context.Context, req gateway.SessionRequest) (gateway.SessionResult, error) {
	token, err := c.token(ctx)
	if err != nil {
		return gateway.SessionResult{}, err
	}
	return c.createOrder(ctx, token, req)
}

func (c *Client) token(ctx context.Context) (string, error) {
	ctx, cancel := httpclient.WithTimeout(ctx, c.tokenTimeout)
	defer cancel()

	tok, err := c.oauth.Token(context.WithValue(ctx, oauth2.HTTPClient, c.http))
	if err != nil {
		return "", tokenError(ctx, err)
	}
	if tok.AccessToken == "" {
		return "", &payment.TokenAcquisitionError{
			Provider: payment.ProviderPayPal,
			Kind:     payment.KindMalformed,
			Message:  "token response has no access_token",
		}
	}
	return tok.AccessToken, nil
}

func tokenError(ctx context.Context, err error) error {
	out := &payment.TokenAcquisitionError{Provider: payment.ProviderPayPal, Message: err.Error()}

	var retrieveErr *oauth2.RetrieveError
	var urlErr *url.Error
	var netErr net.Error
	switch {
	case errors.As(err, &retrieveErr):
		if retrieveErr.Response != nil {
			out.StatusCode = retrieveErr.Response.StatusCode
		}
		out.Kind = payment.KindFromStatus(out.StatusCode)
		out.Raw = payment.RawJSON(retrieveErr.Body)
		if retrieveErr.ErrorCode != "" {
			out.Message = retrieveErr.ErrorCode
			if retrieveErr.ErrorDescription != "" {
				out.Message += ": " + retrieveErr.ErrorDescription
			}
		}
	case ctx.Err() != nil || errors.As(err, &urlErr) || errors.As(err, &netErr):
		out.Kind = httpclient.TransportKind(ctx, err)
	default:
		// 2xx with a body oauth2 could not parse
		out.Kind = payment.KindMalformed
	}
	return out
}

func (c *Client) createOrder(ctx context.Context, token string, req gateway.SessionRequest) (gateway.SessionResult, error) {
	ctx, cancel := httpclient.WithTimeout(ctx, c.sessionTimeout)
	defer cancel()

	body, err := json.Marshal(orderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			ReferenceID: req.Reference,
			CustomID:    req.Reference,
			Description: req.Purpose.Description,
			Amount:      orderAmount{CurrencyCode: req.Amount.Currency, Value: req.Amount.Value()},
		}},
		ApplicationContext: applicationContext{
			BrandName:          c.brandName,
			ReturnURL:          req.CallbackURL,
			CancelURL:          req.CancelURL,
			UserAction:         "PAY_NOW",
			ShippingPreference: "NO_SHIPPING",
		},
	})
	if err != nil {
		return gateway.SessionResult{}, fmt.Errorf("marshal order: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+orderPath, bytes.NewReader(body))
	if err != nil {
		return gateway.SessionResult{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("PayPal-Request-Id", requestID(req))
	httpReq.Header.Set("Prefer", "return=representation")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return gateway.SessionResult{}, httpclient.TransportError(ctx, payment.ProviderPayPal, err)
	}
	raw, err := httpclient.ReadBody(resp)
	if err != nil {
		return gateway.SessionResult{}, httpclient.TransportError(ctx, payment.ProviderPayPal, err)
	}

	if !httpclient.Success(resp.StatusCode) {
		var e errorResponse
		_ = json.Unmarshal(raw, &e)
		msg := e.Message
		if e.Name != "" {
			msg = e.Name + ": " + e.Message
		}
		return gateway.SessionResult{}, httpclient.StatusError(payment.ProviderPayPal, resp.StatusCode, msg, raw)
	}

	var out orderResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return gateway.SessionResult{}, httpclient.Malformed(payment.ProviderPayPal, resp.StatusCode, raw, "decode order: %v", err)
	}
	if out.ID == "" {
		return gateway.SessionResult{}, httpclient.Malformed(payment.ProviderPayPal, resp.StatusCode, raw, "order response has no id")
	}
	approve := approvalLink(out.Links)
	if approve == "" {
		return gateway.SessionResult{}, httpclient.Malformed(payment.ProviderPayPal, resp.StatusCode, raw, "order %s has no approval link", out.ID)
	}

	return gateway.SessionResult{
		SessionID:         out.ID,
		RedirectURL:       approve,
		ProviderReference: out.ID,
		Raw:               payment.RawJSON(raw),
	}, nil
}

func approvalLink(links []link) string {
	var fallback string
	for _, l := range links {
		switch l.Rel {
		case relApprove:
			return l.Href
		case relPayerAction:
			fallback = l.Href
		}
	}
	return fallback
}

func requestID(req gateway.SessionRequest) string {
	if req.IdempotencyKey != "" {
		return req.IdempotencyKey
	}
	return req.Reference
}
