package checkout

import (
	"strconv"
	"strings"

	"paygate/internal/domain/payment"

	"github.com/cespare/xxhash/v2"
)

// ReplayKey scopes an idempotency key to one payer. Fingerprint identifies
// the request the key was first used with.
type ReplayKey struct {
	PayerID     string
	Key         string
	Fingerprint string
}

func newReplayKey(req payment.PaymentRequest) ReplayKey {
	return ReplayKey{
		PayerID:     req.Payer.ID,
		Key:         req.IdempotencyKey,
		Fingerprint: Fingerprint(req),
	}
}

// Fingerprint hashes the fields that define a checkout: provider, amount,
// currency, payer and correlation id. Equal amounts with different scales
// ("49.9" and "49.90") hash the same.
func Fingerprint(req payment.PaymentRequest) string {
	parts := []string{
		strings.ToLower(strings.TrimSpace(string(req.Provider))),
		req.Amount.String(),
		strings.ToUpper(strings.TrimSpace(req.Currency)),
		req.Payer.ID,
		req.Purpose.CorrelationID,
	}
	h := xxhash.New()
	for _, p := range parts {
		// length prefix keeps field boundaries unambiguous
		_, _ = h.WriteString(strconv.Itoa(len(p)))
		_, _ = h.WriteString(":")
		_, _ = h.WriteString(p)
	}
	return strconv.FormatUint(h.Sum64(), 16)
}
