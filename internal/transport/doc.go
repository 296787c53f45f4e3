// Package transport is the HTTP layer between the client and the
// marketplace API.
//
// A Pipeline is an http.RoundTripper that runs ordered request
// interceptors before dispatch and ordered response interceptors after
// it. The session core installs two of them:
//
//   - RequestAuthorizer attaches the stored bearer token.
//   - UnauthorizedResponder turns a delivered 401 into a forced logout
//     and a redirect to the login route.
//
// Observability interceptors (RequestID, Throttle, Logging, Metrics) are
// layered around them by the application wiring.
package transport
