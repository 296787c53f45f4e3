package transport

import (
	"net/http"

	"github.com/yndnr/ecoply-go/internal/core/domain"
	"github.com/yndnr/ecoply-go/internal/session"
)

// RequestAuthorizer attaches the stored token as a bearer credential.
//
// The token is read from src on every request, so a session opened or
// closed in between is picked up immediately. An unreadable store rejects
// the request instead of sending it anonymously.
func RequestAuthorizer(src session.TokenSource) RequestInterceptor {
	return func(req *http.Request) (*http.Request, error) {
		token, ok, err := src.Get()
		if err != nil {
			return nil, domain.ErrCredentialUnreadable.WithCause(err)
		}
		if ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return req, nil
	}
}
