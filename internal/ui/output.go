package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects how list commands render.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formats lists the accepted values of --output.
var Formats = []Format{FormatTable, FormatJSON, FormatYAML}

// ParseFormat validates an --output value. Empty means table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unsupported output format %q (use table, json or yaml)", s)
}

// Listing is something a list command can print.
type Listing struct {
	Title   string
	Headers []string
	Rows    [][]string
	// Data is encoded for json and yaml.
	Data any
}

// Render writes l in format f.
func Render(w io.Writer, f Format, l Listing) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(l.Data)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(l.Data); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := io.WriteString(w, Table(l.Title, l.Headers, l.Rows))
		return err
	}
}
