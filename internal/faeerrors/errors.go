// Package faeerrors implements the error taxonomy shared by the provider
// adapters, agent loop, session store, and host channel.
package faeerrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind categorizes a runtime failure for retry, failover, and surfacing
// decisions.
type Kind string

const (
	KindNetworkTransient     Kind = "network_transient"
	KindProviderRateLimit    Kind = "provider_rate_limit"
	KindProviderServer       Kind = "provider_server"
	KindProviderAuth         Kind = "provider_auth"
	KindProviderProtocol     Kind = "provider_protocol"
	KindToolValidation       Kind = "tool_validation"
	KindToolExecution        Kind = "tool_execution"
	KindToolTimeout          Kind = "tool_timeout"
	KindSessionNotFound      Kind = "session_not_found"
	KindSessionCorrupted     Kind = "session_corrupted"
	KindSessionSchemaMismatch Kind = "session_schema_mismatch"
	KindContractVersion      Kind = "contract_version"
	KindPermissionDenied     Kind = "permission_denied"
	KindCircuitBreakerOpen   Kind = "circuit_breaker_open"
	KindMaxTurnsExceeded     Kind = "max_turns_exceeded"
	KindUnknown              Kind = "unknown"
)

// IsRetryable reports whether a failure of this kind should feed the
// breaker/retry layer.
func (k Kind) IsRetryable() bool {
	switch k {
	case KindNetworkTransient, KindProviderRateLimit, KindProviderServer:
		return true
	default:
		return false
	}
}

// ShouldFailover reports whether a failure of this kind warrants trying a
// different provider or model rather than retrying the same one.
func (k Kind) ShouldFailover() bool {
	switch k {
	case KindProviderAuth:
		return true
	default:
		return false
	}
}

// FaeError is the structured error type carried through the runtime. It
// mirrors the builder-method style used by the donor's provider errors.
type FaeError struct {
	Kind       Kind
	Message    string
	SessionID  string
	ToolName   string
	Field      string
	RetryAfter int // seconds; zero if not applicable
	Cause      error
}

func (e *FaeError) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s]", e.Kind))
	if e.SessionID != "" {
		parts = append(parts, fmt.Sprintf("session=%s", e.SessionID))
	}
	if e.ToolName != "" {
		parts = append(parts, fmt.Sprintf("tool=%s", e.ToolName))
	}
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, " ")
}

func (e *FaeError) Unwrap() error { return e.Cause }

// New creates a FaeError of the given kind wrapping cause.
func New(kind Kind, message string, cause error) *FaeError {
	return &FaeError{Kind: kind, Message: message, Cause: cause}
}

func (e *FaeError) WithSessionID(id string) *FaeError { e.SessionID = id; return e }
func (e *FaeError) WithToolName(name string) *FaeError { e.ToolName = name; return e }
func (e *FaeError) WithField(field string) *FaeError  { e.Field = field; return e }
func (e *FaeError) WithRetryAfter(secs int) *FaeError { e.RetryAfter = secs; return e }

// As extracts a *FaeError from an error chain.
func As(err error) (*FaeError, bool) {
	var fe *FaeError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// IsRetryable checks whether err (raw or FaeError) should be retried.
func IsRetryable(err error) bool {
	if fe, ok := As(err); ok {
		return fe.Kind.IsRetryable()
	}
	return ClassifyError(err).IsRetryable()
}

// ShouldFailover checks whether err warrants a provider/model switch.
func ShouldFailover(err error) bool {
	if fe, ok := As(err); ok {
		return fe.Kind.ShouldFailover()
	}
	return ClassifyError(err).ShouldFailover()
}

// ClassifyError inspects a raw error's text and returns the best-guess Kind.
// This is the fallback classifier used when a provider adapter has not
// already wrapped the error into a FaeError.
func ClassifyError(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	s := strings.ToLower(err.Error())

	switch {
	case strings.Contains(s, "timeout") || strings.Contains(s, "deadline exceeded") ||
		strings.Contains(s, "context deadline") || strings.Contains(s, "etimedout"):
		return KindNetworkTransient
	case strings.Contains(s, "rate limit") || strings.Contains(s, "rate_limit") ||
		strings.Contains(s, "too many requests") || strings.Contains(s, "429") ||
		strings.Contains(s, "529"):
		return KindProviderRateLimit
	case strings.Contains(s, "unauthorized") || strings.Contains(s, "invalid api key") ||
		strings.Contains(s, "authentication") || strings.Contains(s, "401") || strings.Contains(s, "403"):
		return KindProviderAuth
	case strings.Contains(s, "malformed") || strings.Contains(s, "unknown event") ||
		strings.Contains(s, "invalid json"):
		return KindProviderProtocol
	case strings.Contains(s, "connection reset") || strings.Contains(s, "connection refused") ||
		strings.Contains(s, "tls handshake"):
		return KindNetworkTransient
	case strings.Contains(s, "internal server") || strings.Contains(s, "server error") ||
		strings.Contains(s, "500") || strings.Contains(s, "502") ||
		strings.Contains(s, "503") || strings.Contains(s, "504"):
		return KindProviderServer
	default:
		return KindUnknown
	}
}

// ClassifyStatusCode maps an HTTP status code to a Kind, used by provider
// adapters after a response is received.
func ClassifyStatusCode(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindProviderAuth
	case status == http.StatusTooManyRequests:
		return KindProviderRateLimit
	case status >= 500:
		return KindProviderServer
	case status == http.StatusBadRequest:
		return KindProviderProtocol
	default:
		return KindUnknown
	}
}

var (
	ErrSecretResolverUnsupported = errors.New("faeerrors: secret resolver kind not supported")
)
