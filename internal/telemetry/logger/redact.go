package logger

import (
	"log/slog"
	"net/http"
	"strings"
)

const (
	redacted     = "***REDACTED***"
	bearerScheme = "Bearer "
)

// sensitiveKeys are matched as substrings of the lower-cased attribute key.
var sensitiveKeys = []string{"password", "passphrase", "secret", "token", "credential", "authorization", "cookie"}

// IsSensitiveKey reports whether an attribute or header named key must not
// be logged in clear.
func IsSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}

// MaskBearer keeps the scheme and the last four characters of a bearer
// credential longer than eight characters.
func MaskBearer(value string) string {
	cred := strings.TrimPrefix(value, bearerScheme)
	if len(cred) <= 8 {
		return bearerScheme + "***"
	}
	return bearerScheme + "***" + cred[len(cred)-4:]
}

// redact is a slog ReplaceAttr; group members arrive one by one.
func redact(_ []string, a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		v := a.Value.String()
		switch {
		case strings.HasPrefix(v, bearerScheme):
			return slog.String(a.Key, MaskBearer(v))
		case v != "" && IsSensitiveKey(a.Key):
			return slog.String(a.Key, redacted)
		}

	case slog.KindAny:
		if h, ok := a.Value.Any().(http.Header); ok {
			return slog.Any(a.Key, redactHeader(h))
		}
	}
	return a
}

// redactHeader returns a copy of h safe to log.
func redactHeader(h http.Header) http.Header {
	out := h.Clone()
	for k, vs := range out {
		if !IsSensitiveKey(k) {
			continue
		}
		for i, v := range vs {
			if strings.HasPrefix(v, bearerScheme) {
				vs[i] = MaskBearer(v)
			} else {
				vs[i] = redacted
			}
		}
	}
	return out
}
