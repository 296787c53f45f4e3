package navigation

import "github.com/yndnr/ecoply-go/internal/session"

// AuthGuard gates routes on the stored token.
//
// It reads src directly rather than any cached session state, so it sees
// a logout or forced expiry immediately. An unreadable store counts as
// no token.
//
//	requires auth  token  target is login  outcome
//	yes            no     -                redirect to login
//	yes            yes    -                proceed
//	no             yes    yes              redirect to landing
//	no             any    no               proceed
func AuthGuard(src session.TokenSource, login, landing string) Guard {
	return func(to, _ Location) Decision {
		_, ok, err := src.Get()
		authed := err == nil && ok

		if to.RequiresAuth() && !authed {
			return RedirectTo(login)
		}
		if authed && to.Name() == login {
			return RedirectTo(landing)
		}
		return Proceed()
	}
}
