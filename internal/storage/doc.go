// Package storage provides durable CredentialStore backends.
//
// Backends:
//
//   - file.go: single file under the user's config dir, optionally sealed
//   - badger.go: Badger v3 KV database holding one key
//   - seal.go: passphrase-based sealing (Argon2id + XChaCha20-Poly1305)
//   - open.go: backend selection from configuration
//
// Every backend survives process restarts and is scoped to the local
// user account. None of them enforces expiry; a token is kept until it is
// cleared by logout or by a server rejection.
package storage
