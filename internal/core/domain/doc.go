// Package domain defines the core domain models for the Ecoply client.
//
// Domain models are plain value objects without IO dependencies or
// framework coupling. This package contains:
//
//   - Principal: the authenticated user's profile (identity, role, address, agent)
//   - Credentials / Registration: payloads that open a session
//   - AuthResult: the token + principal pair returned by the auth endpoints
//   - Errors: structured error codes shared by every client layer
package domain
