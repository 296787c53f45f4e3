package session

import "github.com/yndnr/ecoply-go/internal/core/domain"

// SessionView exposes whether a session exists. It is a projection of
// the credential store and holds no state of its own.
type SessionView struct {
	store TokenSource
}

// IsAuthenticated reports whether a non-empty token is stored.
// An unreadable store counts as anonymous.
func (v SessionView) IsAuthenticated() bool {
	_, ok, err := v.store.Get()
	return err == nil && ok
}

// Token returns the stored token, if any.
func (v SessionView) Token() (string, bool) {
	token, ok, err := v.store.Get()
	if err != nil {
		return "", false
	}
	return token, ok
}

// ProfileView exposes the cached principal and values derived from it.
type ProfileView struct {
	m *Manager
}

// Principal returns a copy of the cached principal, or nil when none is
// loaded or the session has ended.
func (v ProfileView) Principal() *domain.Principal {
	return v.m.snapshot()
}

// Name returns the principal's name, or "" when not loaded.
func (v ProfileView) Name() string {
	if p := v.m.snapshot(); p != nil {
		return p.Name
	}
	return ""
}

// Role returns the principal's role, or "" when not loaded.
func (v ProfileView) Role() domain.Role {
	if p := v.m.snapshot(); p != nil {
		return p.Role
	}
	return ""
}

// IsBuyer reports whether the principal trades as a buyer.
func (v ProfileView) IsBuyer() bool {
	return v.Role() == domain.RoleBuyer
}

// IsSupplier reports whether the principal trades as a supplier.
func (v ProfileView) IsSupplier() bool {
	return v.Role() == domain.RoleSupplier
}

// Submarket returns the submarket of the principal's agent.
func (v ProfileView) Submarket() string {
	if p := v.m.snapshot(); p != nil {
		return p.Agent.Submarket
	}
	return ""
}
