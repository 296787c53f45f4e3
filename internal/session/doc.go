// Package session owns the client's authenticated session.
//
// The package is the only writer of the bearer token and the cached
// principal:
//
//   - credential.go: CredentialStore contract and an in-memory store
//   - manager.go: Manager, the aggregate behind login/register/logout
//   - view.go: read-only SessionView and ProfileView facades
//
// The token's durable copy lives in a CredentialStore; the manager keeps
// the principal next to it and moves both halves under one lock. Readers
// re-derive authentication from the store on every call, so a token
// cleared by another component is observed on the next read.
package session
