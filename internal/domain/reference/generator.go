// Package reference builds the opaque tracking token that ties an internal
// payment request to a provider session.
package reference

import (
	"encoding/hex"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"paygate/internal/domain/payment"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

const (
	generalScope        = "general"
	maxCorrelationChars = 40

	defaultSeparator = '_'
)

var prefixes = map[payment.Provider]string{
	payment.ProviderStripe:   "stp",
	payment.ProviderPayPal:   "ppl",
	payment.ProviderPaystack: "pstk",
}

// Paystack only accepts alphanumerics plus '-', '.' and '='. The scope may
// itself contain '-', so '.' keeps the parts splittable.
var separators = map[string]byte{
	"pstk": '.',
}

// Prefix returns the reference prefix used for a provider.
func Prefix(p payment.Provider) string {
	if prefix, ok := prefixes[p]; ok {
		return prefix
	}
	return "ref"
}

// Generator is safe for concurrent use. The sequence only guarantees
// in-process uniqueness; the random part covers multiple processes.
type Generator struct {
	seq atomic.Uint64
	now func() time.Time
}

func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// Separator returns the byte joining the parts of a reference with this prefix.
func Separator(prefix string) byte {
	if sep, ok := separators[prefix]; ok {
		return sep
	}
	return defaultSeparator
}

// Generate returns {prefix}_{correlation|general}_{suffix}, with '.' in place
// of '_' for Paystack. The payer id only contributes a fingerprint, never its
// raw value.
func (g *Generator) Generate(prefix, payerID, correlationID string) string {
	scope := sanitize(correlationID)
	if scope == "" {
		scope = generalScope
	}
	sep := Separator(prefix)

	var b strings.Builder
	b.Grow(len(prefix) + len(scope) + 40)
	b.WriteString(prefix)
	b.WriteByte(sep)
	b.WriteString(scope)
	b.WriteByte(sep)
	b.WriteString(g.suffix(payerID))
	return b.String()
}

func (g *Generator) suffix(payerID string) string {
	id := uuid.New()
	fp := xxhash.Sum64String(payerID)

	var b strings.Builder
	b.WriteString(strconv.FormatInt(g.now().UnixNano(), 36))
	b.WriteString(strconv.FormatUint(g.seq.Add(1), 36))
	b.WriteString(strconv.FormatUint(fp&0xffffff, 16))
	b.WriteString(hex.EncodeToString(id[:6]))
	return b.String()
}

// sanitize reduces the correlation id to [A-Za-z0-9-], which excludes both
// separators and is accepted by every provider.
func sanitize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	out := make([]byte, 0, min(len(s), maxCorrelationChars))
	for i := 0; i < len(s) && len(out) < maxCorrelationChars; i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
			out = append(out, c)
		default:
			out = append(out, '-')
		}
	}
	return string(out)
}
