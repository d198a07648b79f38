// Package correlation carries the request correlation id across HTTP, logs
// and Kafka headers.
package correlation

import (
	"context"

	"github.com/google/uuid"
)

const HeaderName = "X-Correlation-ID"

const KafkaHeaderName = "X-Correlation-ID"

const maxLen = 128

type contextKey struct{}

// FromContext returns "" when no id is set.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return ""
}

func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func NewID() string {
	return uuid.New().String()
}

// Valid accepts non-empty printable ASCII ids up to 128 bytes, so inbound
// headers cannot inject control characters into logs.
func Valid(id string) bool {
	if id == "" || len(id) > maxLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
