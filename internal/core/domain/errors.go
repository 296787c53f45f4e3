package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error areas. A code reads EC-<AREA>-<NNNN>.
const (
	AreaArgument   = "ARG"
	AreaAuth       = "AUTH"
	AreaCredential = "CRED"
	AreaNavigation = "NAV"
	AreaTransport  = "NET"
)

// DomainError is a client error carrying a stable code. Errors compare
// equal under errors.Is when their codes match, whatever the details.
type DomainError struct {
	Code    string
	Message string
	Details string
	Cause   error
}

// NewDomainError returns an error with code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func define(area string, n int, message string) *DomainError {
	return NewDomainError(fmt.Sprintf("EC-%s-%04d", area, n), message)
}

func (e *DomainError) Error() string {
	var b strings.Builder
	b.WriteString("[" + e.Code + "] " + e.Message)
	if e.Details != "" {
		b.WriteString(": " + e.Details)
	}
	return b.String()
}

func (e *DomainError) Unwrap() error { return e.Cause }

func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// Area returns the AREA part of the code, or "" for a malformed code.
func (e *DomainError) Area() string {
	parts := strings.Split(e.Code, "-")
	if len(parts) != 3 {
		return ""
	}
	return parts[1]
}

// WithDetails returns a copy of e with details set.
func (e *DomainError) WithDetails(details string) *DomainError {
	c := *e
	c.Details = details
	return &c
}

// WithCause returns a copy of e wrapping cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	c := *e
	c.Cause = cause
	return &c
}

// Code returns the code of the first DomainError in err's chain, or "".
func Code(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// exitCodes maps an error area to a process exit status.
var exitCodes = map[string]int{
	AreaArgument:   2,
	AreaAuth:       3,
	AreaNavigation: 4,
	AreaTransport:  5,
	AreaCredential: 6,
}

// ExitCode returns the process exit status for err: 0 for nil, a
// per-area status for domain errors and 1 for anything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var de *DomainError
	if errors.As(err, &de) {
		if code, ok := exitCodes[de.Area()]; ok {
			return code
		}
	}
	return 1
}

// Session.
var (
	// ErrInvalidCredentials is the auth endpoint rejecting a login or
	// registration payload.
	ErrInvalidCredentials = define(AreaAuth, 4010, "invalid credentials")
	// ErrNotAuthenticated is raised before any network call when no token
	// is stored.
	ErrNotAuthenticated = define(AreaAuth, 4011, "not authenticated")
	// ErrSessionExpired is a 401 received on an authenticated call.
	ErrSessionExpired   = define(AreaAuth, 4012, "session expired")
	ErrProfileNotLoaded = define(AreaAuth, 4040, "profile not loaded")
)

// Credential storage.
var (
	ErrCredentialUnreadable = define(AreaCredential, 5001, "credential store unreadable")
	ErrCredentialUnwritable = define(AreaCredential, 5002, "credential store unwritable")
	// ErrCredentialSealed means a sealed token could not be opened with the
	// configured passphrase.
	ErrCredentialSealed = define(AreaCredential, 4030, "credential sealed with a different passphrase")
)

// Transport.
var (
	// ErrTransportFailure is a network failure or a 5xx response.
	ErrTransportFailure  = define(AreaTransport, 5030, "transport failure")
	ErrMalformedResponse = define(AreaTransport, 5020, "malformed response")
	// ErrRequestRejected is a request interceptor refusing to dispatch.
	ErrRequestRejected = define(AreaTransport, 4000, "request rejected before dispatch")
)

// Navigation.
var (
	ErrUnknownRoute = define(AreaNavigation, 4040, "unknown route")
	// ErrRedirectLoop means guards kept redirecting without settling.
	ErrRedirectLoop = define(AreaNavigation, 5080, "redirect loop")
	// ErrNavigationBlocked means a guard redirected away from the target.
	ErrNavigationBlocked = define(AreaNavigation, 4030, "navigation redirected")
)

// Arguments.
var (
	ErrInvalidArgument = define(AreaArgument, 1001, "invalid argument")
	ErrMissingArgument = define(AreaArgument, 1002, "missing required argument")
)
