package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"paygate/internal/controller/apperror"
	"paygate/internal/domain/payment"

	"github.com/gin-gonic/gin"
)

// ErrorResponse never carries credentials or client secrets.
type ErrorResponse struct {
	Error    string   `json:"error"`
	Kind     string   `json:"kind,omitempty"`
	Provider string   `json:"provider,omitempty"`
	Fields   []string `json:"fields,omitempty"`
}

const (
	msgConfiguration = "payment provider is not configured"
	msgToken         = "payment provider authentication failed"
	msgProvider      = "payment provider error"
	msgUnavailable   = "payment provider is temporarily unavailable"
	msgInternal      = "internal error"
)

// writeError answers with the typed kind and a fixed message for 5xx
// outcomes. The full error only goes to the log.
func writeError(c *gin.Context, err error) {
	status, body := mapError(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		slog.ErrorContext(c.Request.Context(), "checkout request failed",
			slog.Int("status", status),
			slog.String("kind", body.Kind),
			slog.String("provider", body.Provider),
			slog.String("error", err.Error()),
		)
	}
	c.JSON(status, body)
}

func mapError(err error) (int, ErrorResponse) {
	var (
		validationErr *payment.ValidationError
		configErr     *payment.ConfigurationError
		tokenErr      *payment.TokenAcquisitionError
		providerErr   *payment.ProviderError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity, ErrorResponse{
			Error:  err.Error(),
			Kind:   "validation",
			Fields: []string{validationErr.Field},
		}
	case errors.As(err, &configErr):
		return http.StatusInternalServerError, ErrorResponse{
			Error:    msgConfiguration,
			Kind:     "configuration",
			Provider: string(configErr.Provider),
		}
	case errors.As(err, &tokenErr):
		return upstreamStatus(tokenErr.Kind), ErrorResponse{
			Error:    upstreamMessage(tokenErr.Kind, msgToken),
			Kind:     string(tokenErr.Kind),
			Provider: string(tokenErr.Provider),
		}
	case errors.As(err, &providerErr):
		return upstreamStatus(providerErr.Kind), ErrorResponse{
			Error:    upstreamMessage(providerErr.Kind, msgProvider),
			Kind:     string(providerErr.Kind),
			Provider: string(providerErr.Provider),
		}
	case errors.Is(err, apperror.ErrIdempotencyInProgress):
		return http.StatusConflict, ErrorResponse{Error: apperror.ErrIdempotencyInProgress.Error(), Kind: "idempotency_in_progress"}
	case errors.Is(err, apperror.ErrIdempotencyKeyReused):
		return http.StatusConflict, ErrorResponse{Error: apperror.ErrIdempotencyKeyReused.Error(), Kind: "idempotency_key_reused"}
	case errors.Is(err, apperror.ErrSessionNotFound):
		return http.StatusNotFound, ErrorResponse{Error: apperror.ErrSessionNotFound.Error()}
	case errors.Is(err, apperror.ErrInvalidSessionsQuery):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error()}
	case errors.Is(err, apperror.ErrStorageDisabled):
		return http.StatusNotImplemented, ErrorResponse{Error: apperror.ErrStorageDisabled.Error()}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: msgInternal}
	}
}

func upstreamStatus(kind payment.ErrorKind) int {
	if kind == payment.KindUnavailable {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

func upstreamMessage(kind payment.ErrorKind, msg string) string {
	if kind == payment.KindUnavailable {
		return msgUnavailable
	}
	return msg
}
