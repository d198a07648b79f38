package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation is matched by every *ValidationError (bad caller input, not retryable)
	ErrValidation = errors.New("validation error")

	// ErrConfiguration is matched by every *ConfigurationError (missing or invalid credentials)
	ErrConfiguration = errors.New("configuration error")

	// ErrProvider is matched by every *ProviderError (processor rejected or returned a bad response)
	ErrProvider = errors.New("provider error")

	// ErrTokenAcquisition is matched by every *TokenAcquisitionError (auth handshake with the processor failed)
	ErrTokenAcquisition = errors.New("token acquisition error")
)

// ErrorKind classifies provider-side failures for operators and retry policies.
type ErrorKind string

const (
	KindNetwork     ErrorKind = "network"
	KindTimeout     ErrorKind = "timeout"
	KindAuth        ErrorKind = "auth"
	KindRejected    ErrorKind = "rejected"
	KindUpstream    ErrorKind = "upstream"
	KindMalformed   ErrorKind = "malformed"
	KindUnavailable ErrorKind = "unavailable"
)

// Retryable reports whether a caller-level retry may succeed.
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindNetwork, KindTimeout, KindUpstream, KindUnavailable:
		return true
	default:
		return false
	}
}

// KindFromStatus maps a non-2xx HTTP status to an ErrorKind.
func KindFromStatus(status int) ErrorKind {
	switch {
	case status == 401 || status == 403:
		return KindAuth
	case status == 408:
		return KindTimeout
	case status >= 500:
		return KindUpstream
	default:
		return KindRejected
	}
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

type ConfigurationError struct {
	Provider Provider
	Missing  []string
	Invalid  []string
}

func (e *ConfigurationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return fmt.Sprintf("configuration: %s: %s", e.Provider, strings.Join(parts, "; "))
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// Fields returns missing and invalid field names together.
func (e *ConfigurationError) Fields() []string {
	out := make([]string, 0, len(e.Missing)+len(e.Invalid))
	out = append(out, e.Missing...)
	return append(out, e.Invalid...)
}

type ProviderError struct {
	Provider   Provider
	Kind       ErrorKind
	Message    string
	StatusCode int
	Raw        json.RawMessage
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s: %s (status %d): %s", e.Provider, e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %s: %s: %s", e.Provider, e.Kind, e.Message)
}

func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}

func (e *ProviderError) Retryable() bool {
	return e.Kind.Retryable()
}

type TokenAcquisitionError struct {
	Provider   Provider
	Kind       ErrorKind
	Message    string
	StatusCode int
	Raw        json.RawMessage
}

func (e *TokenAcquisitionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("token %s: %s (status %d): %s", e.Provider, e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("token %s: %s: %s", e.Provider, e.Kind, e.Message)
}

func (e *TokenAcquisitionError) Is(target error) bool {
	return target == ErrTokenAcquisition
}

func (e *TokenAcquisitionError) Retryable() bool {
	return e.Kind.Retryable()
}

// KindOf extracts the ErrorKind from provider-side errors, or "" for anything else.
func KindOf(err error) ErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	var te *TokenAcquisitionError
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}

// RawJSON keeps a provider body as JSON when it is valid, otherwise as a JSON string.
func RawJSON(body []byte) json.RawMessage {
	if len(body) == 0 {
		return nil
	}
	if json.Valid(body) {
		return append(json.RawMessage(nil), body...)
	}
	quoted, _ := json.Marshal(string(body))
	return quoted
}
