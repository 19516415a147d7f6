package source

import (
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// YAMLDriver returns a Driver backed by gopkg.in/yaml.v3. Mapping keys are
// converted to strings and ints widened to int64, so the result has the same
// shape as decoded JSON.
func YAMLDriver() Driver { return yamlDriver{} }

type yamlDriver struct{}

func (yamlDriver) Name() string { return "yaml" }

func (yamlDriver) Decode(r io.Reader) (any, error) {
	dec := yaml.NewDecoder(r)
	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("source: more than one YAML document")
		}
		return nil, err
	}
	return normalizeYAML(v), nil
}

func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeYAML(e)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = normalizeYAML(e)
		}
		return out
	case []any:
		for i, e := range t {
			t[i] = normalizeYAML(e)
		}
		return t
	case int:
		return int64(t)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	}
	return v
}
