package syntax

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/chosenoffset/jsregex/pkg/jsregex/syntax/schema"
)

// SchemaViolation is one schema error found in a tree document.
type SchemaViolation struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

func (v SchemaViolation) String() string {
	return v.Field + ": " + v.Description
}

// ValidateDocument checks a tree document against the embedded schema. A
// nil slice with a nil error means the document is valid.
func ValidateDocument(data []byte, format Format) ([]SchemaViolation, error) {
	var doc any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema.TreeSchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	violations := make([]SchemaViolation, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		violations = append(violations, SchemaViolation{Field: verr.Field(), Description: verr.Description()})
	}
	return violations, nil
}
