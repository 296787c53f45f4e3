// Package output renders command results as a table, JSON or YAML.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/yndnr/ecoply-go/internal/core/domain"
)

// Format represents the output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formatter formats data for output.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("output format %q: want table, json or yaml", s))
	}
}

// NewFormatter creates a formatter for the given format.
func NewFormatter(format Format, wide bool) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TableFormatter{Wide: wide}
	}
}

// plain unwraps a Table into records for the structured encoders.
func plain(data any) any {
	switch t := data.(type) {
	case *Table:
		if t != nil {
			return t.records()
		}
	case Table:
		return (&t).records()
	}
	return data
}
