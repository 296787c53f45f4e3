package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/yndnr/ecoply-go/internal/core/domain"
	"github.com/yndnr/ecoply-go/internal/transport"
)

// AuthService implements session.AuthAPI over HTTP.
type AuthService struct {
	client *transport.Client
}

// NewAuthService creates an AuthService.
func NewAuthService(c *transport.Client) *AuthService {
	return &AuthService{client: c}
}

// Login exchanges credentials for a token.
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	var out transport.Envelope[domain.AuthResult]
	if err := s.client.Post(ctx, LoginPath, creds, &out); err != nil {
		return nil, credentialsError(err)
	}
	return &out.Data, nil
}

// Register creates an account and returns its first token.
func (s *AuthService) Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error) {
	var out transport.Envelope[domain.AuthResult]
	if err := s.client.Post(ctx, SignupPath, reg, &out); err != nil {
		return nil, credentialsError(err)
	}
	return &out.Data, nil
}

// CurrentPrincipal fetches the profile of the token holder.
func (s *AuthService) CurrentPrincipal(ctx context.Context) (*domain.Principal, error) {
	var out transport.Envelope[domain.Principal]
	if err := s.client.Get(ctx, MePath, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// credentialsError maps a 401 from the auth endpoints, which is how the
// server answers bad credentials, to ErrInvalidCredentials carrying the
// server message. The APIError is left out of the chain because a 401
// APIError also matches ErrSessionExpired.
func credentialsError(err error) error {
	var apiErr *transport.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		return domain.ErrInvalidCredentials.WithDetails(apiErr.Message)
	}
	return err
}
