// Package report renders, persists and validates run summaries.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Sumatoshi-tech/seqpipe/pkg/pipeline"
)

// Format is an output rendering.
type Format string

// Output formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat accepts text, json or yaml (yml); empty means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Document is the persisted outcome of one run.
type Document struct {
	Command string           `json:"command"           yaml:"command"`
	RunID   string           `json:"run_id,omitempty"  yaml:"run_id,omitempty"`
	Summary pipeline.Summary `json:"summary"           yaml:"summary"`
	// Details holds the handler's own report, if any.
	Details pipeline.Report `json:"details,omitempty" yaml:"details,omitempty"`
}

// Render writes doc to w in the given format.
func Render(w io.Writer, doc Document, format Format) error {
	switch format {
	case FormatText:
		return renderText(w, doc)
	case FormatJSON:
		return jsonCodec.Encode(w, doc)
	case FormatYAML:
		return yamlCodec.Encode(w, doc)
	}

	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
