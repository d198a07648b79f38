// Package httpclient holds the HTTP plumbing shared by the provider adapters.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"paygate/internal/domain/payment"
)

// maxBody caps how much of a provider response is read into memory.
const maxBody = 1 << 20

// New returns a client without a global timeout. Per-step deadlines come from
// the request context.
func New() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        50,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 5 * time.Second,
		},
	}
}

// ReadBody drains and closes the response body.
func ReadBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(io.LimitReader(resp.Body, maxBody))
}

// TransportKind classifies an error returned by http.Client.Do.
func TransportKind(ctx context.Context, err error) payment.ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return payment.KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return payment.KindTimeout
	}
	return payment.KindNetwork
}

// Success reports a 2xx status.
func Success(status int) bool {
	return status >= 200 && status < 300
}

// TransportError wraps a failed round trip as a ProviderError.
func TransportError(ctx context.Context, provider payment.Provider, err error) *payment.ProviderError {
	return &payment.ProviderError{
		Provider: provider,
		Kind:     TransportKind(ctx, err),
		Message:  err.Error(),
	}
}

// StatusError wraps a non-2xx response as a ProviderError.
func StatusError(provider payment.Provider, status int, message string, body []byte) *payment.ProviderError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &payment.ProviderError{
		Provider:   provider,
		Kind:       payment.KindFromStatus(status),
		Message:    message,
		StatusCode: status,
		Raw:        payment.RawJSON(body),
	}
}

// Malformed reports a 2xx response the adapter could not use.
func Malformed(provider payment.Provider, status int, body []byte, format string, args ...any) *payment.ProviderError {
	return &payment.ProviderError{
		Provider:   provider,
		Kind:       payment.KindMalformed,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: status,
		Raw:        payment.RawJSON(body),
	}
}

// WithTimeout applies d when positive.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
