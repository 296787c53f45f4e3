// Package confloader loads layered configuration with koanf.
//
// Priority (highest to lowest):
//
//  1. Overrides (command-line flags)
//  2. Environment variables (ECOPLY_ prefix)
//  3. Configuration file (YAML)
//  4. Defaults
//
// Watcher reports changes to a configuration file through fsnotify.
package confloader
