package rates

import (
	"errors"
	"fxetl/internal/adapters/httpclient"
	"net/http"
	"strings"
)

// FallbackBase is the base currency forced onto a request when it degrades
// to the free provider, or when a keyed provider restricts the original base.
const FallbackBase = "EUR"

// FailureKind buckets a provider failure for the fallback decision.
type FailureKind int

const (
	// FailureGeneric covers timeouts, retry exhaustion, unrecognized
	// payloads and anything else that is not base-related.
	FailureGeneric FailureKind = iota
	// FailureAuth is an HTTP 401 or 403 from a keyed provider.
	FailureAuth
	// FailureRestriction is a plan restriction on the requested base
	// currency, reported as an error code or in prose.
	FailureRestriction
)

// Classify buckets err into the failure kinds the fallback tree branches on.
// Restriction detection string-matches the provider message; every such
// match lives here and nowhere else.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureGeneric
	}

	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden {
			return FailureAuth
		}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "base") && (strings.Contains(msg, "restrict") || strings.Contains(msg, "105")) {
		return FailureRestriction
	}
	return FailureGeneric
}
