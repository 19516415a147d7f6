// Package source decodes call arguments from JSON and YAML documents. A
// document that is an array supplies positional arguments, an object
// supplies keyword arguments.
package source

import (
	"bytes"
	"fmt"
	"io"

	"github.com/reoring/datafunc/schema"
)

// Arguments are the raw values of one call.
type Arguments struct {
	Positional []any
	Keyword    map[string]any
}

// Driver decodes one document into raw values: nil, bool, int64, float64,
// string, []any and map[string]any.
type Driver interface {
	Decode(r io.Reader) (any, error)
	Name() string
}

// JSON decodes a JSON argument document.
func JSON(data []byte) (Arguments, error) { return Read(JSONDriver(), bytes.NewReader(data)) }

// YAML decodes a YAML argument document.
func YAML(data []byte) (Arguments, error) { return Read(YAMLDriver(), bytes.NewReader(data)) }

// Read decodes an argument document from r with d. Failures are
// schema.Issues with code parse_error (undecodable input) or invalid_type
// (a document that is neither an array nor an object).
func Read(d Driver, r io.Reader) (Arguments, error) {
	v, err := d.Decode(r)
	if err != nil {
		return Arguments{}, schema.Issues{schema.NewIssue("/", schema.CodeParseError, d.Name(), err)}
	}
	return FromValue(v)
}

// FromValue splits an already decoded document into arguments.
func FromValue(v any) (Arguments, error) {
	switch t := v.(type) {
	case nil:
		return Arguments{}, nil
	case []any:
		return Arguments{Positional: t}, nil
	case map[string]any:
		return Arguments{Keyword: t}, nil
	}
	cause := fmt.Errorf("source: expected an array or an object, got %T", v)
	return Arguments{}, schema.Issues{schema.NewIssue("/", schema.CodeInvalidType, "array or object", cause)}
}
