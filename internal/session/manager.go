package session

import (
	"context"
	"sync"

	"github.com/yndnr/ecoply-go/internal/core/domain"
	"github.com/yndnr/ecoply-go/internal/telemetry/logger"
	"github.com/yndnr/ecoply-go/internal/telemetry/metric"
)

// AuthAPI is the slice of the marketplace API the session depends on.
type AuthAPI interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error)
	CurrentPrincipal(ctx context.Context) (*domain.Principal, error)
}

// Manager is the session aggregate: the stored token and the cached
// principal. All writes to either half go through its methods.
//
// The principal is only ever non-nil while the store holds a token.
type Manager struct {
	store   CredentialStore
	api     AuthAPI
	logger  logger.Logger
	metrics *metric.Registry

	mu        sync.Mutex
	principal *domain.Principal
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger for the manager.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithMetrics records session transitions in r.
func WithMetrics(r *metric.Registry) Option {
	return func(m *Manager) {
		m.metrics = r
	}
}

// NewManager creates a session manager over store, talking to api.
func NewManager(store CredentialStore, api AuthAPI, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		api:    api,
		logger: logger.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "session")
	return m
}

// Login authenticates with creds and opens a session.
//
// On failure nothing is written and the API error is returned unchanged.
func (m *Manager) Login(ctx context.Context, creds domain.Credentials) (*domain.Principal, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	res, err := m.api.Login(ctx, creds)
	if err != nil {
		m.logger.WithContext(ctx).Debug("login rejected", "email", creds.Email, "error", err)
		return nil, err
	}
	return m.open(ctx, "login", res)
}

// Register creates an account and opens a session for it.
func (m *Manager) Register(ctx context.Context, reg domain.Registration) (*domain.Principal, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	res, err := m.api.Register(ctx, reg)
	if err != nil {
		m.logger.WithContext(ctx).Debug("registration rejected", "email", reg.Email, "error", err)
		return nil, err
	}
	return m.open(ctx, "register", res)
}

// open commits token and principal together.
func (m *Manager) open(ctx context.Context, method string, res *domain.AuthResult) (*domain.Principal, error) {
	if res == nil {
		return nil, domain.ErrMalformedResponse.WithDetails("auth response carried no token")
	}
	if err := ValidateToken(res.Token); err != nil {
		return nil, domain.ErrMalformedResponse.WithDetails("auth response carried no usable token")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Set(res.Token); err != nil {
		return nil, domain.ErrCredentialUnwritable.WithCause(err)
	}
	p := res.Principal
	m.principal = &p

	m.metrics.SessionOpened(method)
	m.logger.WithContext(ctx).Info("session opened", "method", method, "role", string(p.Role))
	return p.Clone(), nil
}

// Logout closes the session without contacting the server.
// Calling it while anonymous is a no-op.
func (m *Manager) Logout() error {
	closed, err := m.close("logout")
	if closed {
		m.logger.Info("session closed", "reason", "logout")
	}
	return err
}

// Expire is the forced logout applied when the server rejects the
// session. It reports whether a stored token was actually removed, so
// concurrent rejections can tell which one performed the transition.
func (m *Manager) Expire() (bool, error) {
	closed, err := m.close("expired")
	if closed {
		m.logger.Warn("session expired by server")
	}
	return closed, err
}

func (m *Manager) close(reason string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.principal = nil
	_, had, err := m.store.Get()
	if err != nil {
		// An unreadable token is still a session on disk; clearing it closes it.
		m.logger.Warn("credential store unreadable while closing session", "reason", reason, "error", err)
		had = true
	}
	if err := m.store.Clear(); err != nil {
		return false, domain.ErrCredentialUnwritable.WithCause(err)
	}
	if had {
		m.metrics.SessionClosed(reason)
	}
	return had, nil
}

// FetchCurrentPrincipal refreshes the cached principal from the server.
//
// It fails with ErrNotAuthenticated before any network call when no token
// is stored. The token itself is never modified.
func (m *Manager) FetchCurrentPrincipal(ctx context.Context) (*domain.Principal, error) {
	token, ok, err := m.store.Get()
	if err != nil {
		return nil, domain.ErrCredentialUnreadable.WithCause(err)
	}
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}

	p, err := m.api.CurrentPrincipal(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// The session may have been closed or replaced while the call was in flight.
	current, ok, err := m.store.Get()
	if err != nil {
		return nil, domain.ErrCredentialUnreadable.WithCause(err)
	}
	if !ok || current != token {
		m.principal = nil
		return nil, domain.ErrNotAuthenticated.WithDetails("session changed while fetching profile")
	}

	m.principal = p.Clone()
	return p.Clone(), nil
}

// UpdatePrincipal merges patch into the cached principal without
// revalidating against the server.
func (m *Manager) UpdatePrincipal(patch domain.PrincipalPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.reconcileLocked() {
		return domain.ErrNotAuthenticated
	}
	if m.principal == nil {
		return domain.ErrProfileNotLoaded
	}
	m.principal.Apply(patch)
	return nil
}

// Session returns the read-only authentication view.
func (m *Manager) Session() SessionView {
	return SessionView{store: m.store}
}

// Profile returns the read-only principal view.
func (m *Manager) Profile() ProfileView {
	return ProfileView{m: m}
}

// snapshot returns a copy of the cached principal, or nil.
func (m *Manager) snapshot() *domain.Principal {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.reconcileLocked() {
		return nil
	}
	return m.principal.Clone()
}

// reconcileLocked drops a principal whose token is gone and reports
// whether a token is stored. The store always wins over memory.
func (m *Manager) reconcileLocked() bool {
	_, ok, err := m.store.Get()
	if err != nil || !ok {
		m.principal = nil
		return false
	}
	return true
}
