package handlers

import (
	"net/http"
	"strings"

	"paygate/internal/domain/checkout"
	"paygate/internal/domain/payment"
	"paygate/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	ReplayedHeader       = "Idempotent-Replayed"

	maxIdempotencyKeyLen = 255
)

type CheckoutHandler struct {
	service *checkout.Service
}

func NewCheckoutHandler(s *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{service: s}
}

type CreateSessionRequest struct {
	Provider      string          `json:"provider"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PayerID       string          `json:"payer_id"`
	PayerEmail    string          `json:"payer_email"`
	Description   string          `json:"description"`
	CorrelationID string          `json:"correlation_id"`
}

func (r CreateSessionRequest) toPaymentRequest(idempotencyKey string) payment.PaymentRequest {
	provider := payment.Provider(strings.ToLower(strings.TrimSpace(r.Provider)))
	currency := strings.TrimSpace(r.Currency)
	if currency == "" {
		currency = provider.DefaultCurrency()
	}
	return payment.PaymentRequest{
		Provider: provider,
		Amount:   r.Amount,
		Currency: currency,
		Payer: payment.Payer{
			ID:    strings.TrimSpace(r.PayerID),
			Email: strings.TrimSpace(r.PayerEmail),
		},
		Purpose: payment.Purpose{
			Description:   r.Description,
			CorrelationID: strings.TrimSpace(r.CorrelationID),
		},
		IdempotencyKey: idempotencyKey,
	}
}

// Create answers 201 for a new session and 200 when an idempotency key
// replays an earlier one.
func (h *CheckoutHandler) Create(c *gin.Context) {
	var body CreateSessionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	if len(key) > maxIdempotencyKeyLen {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "idempotency key is longer than 255 characters"})
		return
	}

	req := body.toPaymentRequest(key)
	if req.Provider.Valid() {
		metrics.TagProvider(c, req.Provider.String())
	}

	session, err := h.service.Start(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	if session.Replayed {
		c.Header(ReplayedHeader, "true")
		c.JSON(http.StatusOK, session)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *CheckoutHandler) Get(c *gin.Context) {
	reference := c.Param("reference")
	if reference == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing reference"})
		return
	}

	session, err := h.service.Get(c.Request.Context(), reference)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

type ListParams struct {
	PayerID  string `form:"payer_id"`
	Provider string `form:"provider"`
	Limit    int    `form:"limit" binding:"omitempty,min=0"`
	Offset   int    `form:"offset" binding:"omitempty,min=0"`
}

type ListResponse struct {
	Sessions []checkout.Session `json:"sessions"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
}

func (h *CheckoutHandler) List(c *gin.Context) {
	var params ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query: " + err.Error()})
		return
	}

	q, err := checkout.Query{
		PayerID:  params.PayerID,
		Provider: payment.Provider(strings.ToLower(params.Provider)),
		Limit:    params.Limit,
		Offset:   params.Offset,
	}.Normalize()
	if err != nil {
		writeError(c, err)
		return
	}

	sessions, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	if sessions == nil {
		sessions = []checkout.Session{}
	}

	c.JSON(http.StatusOK, ListResponse{Sessions: sessions, Limit: q.Limit, Offset: q.Offset})
}
