package logger

import (
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxPayloadRunes caps how much of a message body is logged.
const MaxPayloadRunes = 64

// Keys whose values carry message bodies.
var payloadKeys = map[string]bool{
	"payload": true,
	"last":    true,
	"display": true,
}

// Keys whose values are endpoints that may embed credentials.
var endpointKeys = map[string]bool{
	"endpoint":     true,
	"metrics_addr": true,
}

var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
}

const redactedValue = "***REDACTED***"

func redact(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redact(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}

	if a.Value.Kind() != slog.KindString {
		return a
	}

	key := strings.ToLower(a.Key)
	val := a.Value.String()

	switch {
	case payloadKeys[key]:
		return slog.String(a.Key, TruncatePayload(val))
	case endpointKeys[key]:
		return slog.String(a.Key, StripUserinfo(val))
	case val != "" && IsSensitiveKey(key):
		return slog.String(a.Key, redactedValue)
	}
	return a
}

// TruncatePayload shortens s to MaxPayloadRunes runes, appending "…"
// and the original byte length when cut.
func TruncatePayload(s string) string {
	if utf8.RuneCountInString(s) <= MaxPayloadRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == MaxPayloadRunes {
			return s[:i] + "…(" + strconv.Itoa(len(s)) + " bytes)"
		}
		n++
	}
	return s
}

// StripUserinfo removes user:password@ from an endpoint URL.
// Values that do not parse as URLs are returned unchanged.
func StripUserinfo(endpoint string) string {
	if !strings.Contains(endpoint, "@") {
		return endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.User == nil {
		return endpoint
	}
	u.User = nil
	return u.String()
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
