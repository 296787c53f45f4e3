// Package navigation implements the client's screen router.
//
// Each CLI screen is a named Route. Navigation resolves a target
// Location, runs the before-each guards, follows redirects until a
// guard lets the attempt proceed, and only then commits the final
// Location as current.
package navigation
