// Package logger wraps log/slog for the CLI's diagnostic output on stderr.
//
// Every logger shares one level, so a config reload can change it with
// SetLevel. Attributes with a sensitive key are redacted, Bearer values
// are masked to their last four characters, and http.Header values are
// logged with their credential headers masked.
package logger
