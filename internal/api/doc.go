// Package api is the typed client for the Ecoply marketplace REST API.
//
// Every service sends through a *transport.Client, so authorization and
// forced logout are handled by the transport pipeline and never here.
package api
