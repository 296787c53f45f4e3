// Package main provides the entry point for ecoply-cli.
//
// The CLI is a client for the Ecoply energy marketplace:
//
//   - Account access (login, register, logout, whoami, status)
//   - Offer browsing, publishing and purchasing
//   - Purchase, sale and contract listings
//   - Local configuration management
//
// Usage:
//
//	ecoply-cli [global flags] command [flags]
//	ecoply-cli login --email ana@example.com
//	ecoply-cli -o json offers list --energy-type solar
//	ecoply-cli repl
//
// The CLI supports both single-command mode and interactive REPL mode.
package main
