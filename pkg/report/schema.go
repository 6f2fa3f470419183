package report

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/summary.schema.json
var summarySchema []byte

// ErrSchemaViolation is returned when a summary does not match the schema.
var ErrSchemaViolation = errors.New("summary does not match schema")

// Violation is one schema error.
type Violation struct {
	Field       string
	Description string
}

func (v Violation) String() string {
	return v.Field + ": " + v.Description
}

// Schema returns the JSON schema summaries are validated against.
func Schema() []byte {
	return bytes.Clone(summarySchema)
}

// Check validates JSON data against the summary schema and lists every
// violation. An error is returned only when data is not JSON at all.
func Check(data []byte) ([]Violation, error) {
	var doc any

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	err := dec.Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(summarySchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	violations := make([]Violation, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		violations = append(violations, Violation{Field: re.Field(), Description: re.Description()})
	}

	return violations, nil
}

// Validate is Check folded into a single error wrapping ErrSchemaViolation.
func Validate(data []byte) error {
	violations, err := Check(data)
	if err != nil {
		return err
	}

	if len(violations) == 0 {
		return nil
	}

	msgs := make([]string, len(violations))
	for i, v := range violations {
		msgs[i] = v.String()
	}

	return fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(msgs, "; "))
}
