package openapi

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Format selects a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the encoding from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// JSON encodes the document with two-space indentation. Object keys are
// sorted.
func (d *Document) JSON() ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("openapi: document is nil")
	}
	return json.MarshalIndent(d.Body, "", "  ")
}

// YAML encodes the document as YAML. Object keys are sorted.
func (d *Document) YAML() ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("openapi: document is nil")
	}
	return yaml.Marshal(d.Body)
}

// Encode writes the document to w in format.
func (d *Document) Encode(w io.Writer, format Format) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON, "":
		data, err = d.JSON()
	case FormatYAML:
		data, err = d.YAML()
	default:
		return fmt.Errorf("openapi: unknown format %q", format)
	}
	if err != nil {
		return fmt.Errorf("openapi: encode %s: %w", format, err)
	}
	_, err = w.Write(data)
	return err
}
