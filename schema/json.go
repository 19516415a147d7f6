package schema

import (
	"bytes"
	"errors"
	"io"
	"strconv"

	"github.com/goccy/go-json"
)

// DecodeJSON decodes one JSON document into raw values. Integral numbers
// become int64, or uint64 above the int64 range; the rest become float64.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("schema: trailing data after JSON document")
		}
		return nil, err
	}
	return NormalizeNumbers(v), nil
}

// NormalizeNumbers replaces json.Number values inside maps and slices by
// int64, by uint64 when above the int64 range, or by float64.
func NormalizeNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = NormalizeNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = NormalizeNumbers(e)
		}
		return t
	case numberLike:
		if i, err := strconv.ParseInt(t.String(), 10, 64); err == nil {
			return i
		}
		if u, err := strconv.ParseUint(t.String(), 10, 64); err == nil {
			return u
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	}
	return v
}
