package schema

import (
	"encoding"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// numberLike matches json.Number from either JSON package.
type numberLike interface {
	Int64() (int64, error)
	Float64() (float64, error)
	String() string
}

// rawString returns the string content of any string-kinded raw value other
// than a JSON number.
func rawString(raw any) (string, bool) {
	if _, isNum := raw.(numberLike); isNum {
		return "", false
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// numeric classifies a raw value as signed, unsigned or float.
type numeric struct {
	kind byte // 'i', 'u', 'f'
	i    int64
	u    uint64
	f    float64
}

func toNumeric(raw any) (numeric, bool, error) {
	if n, ok := raw.(numberLike); ok {
		if i, err := n.Int64(); err == nil {
			return numeric{kind: 'i', i: i}, true, nil
		}
		f, err := n.Float64()
		if err != nil {
			return numeric{}, false, err
		}
		return numeric{kind: 'f', f: f}, true, nil
	}
	if s, ok := rawString(raw); ok {
		s = strings.TrimSpace(s)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return numeric{kind: 'i', i: i}, true, nil
		}
		if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return numeric{kind: 'u', u: u}, true, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return numeric{}, false, err
		}
		return numeric{kind: 'f', f: f}, true, nil
	}
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return numeric{kind: 'i', i: rv.Int()}, true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return numeric{kind: 'u', u: rv.Uint()}, true, nil
	case reflect.Float32, reflect.Float64:
		return numeric{kind: 'f', f: rv.Float()}, true, nil
	}
	return numeric{}, false, nil
}

type boolNode struct{ t reflect.Type }

func (n boolNode) load(st *state, path string, raw any) (reflect.Value, bool) {
	out := reflect.New(n.t).Elem()
	if raw == nil {
		st.fail(path, CodeNullNotAllowed, "", nil)
		return out, false
	}
	if rv := reflect.ValueOf(raw); rv.Kind() == reflect.Bool {
		out.SetBool(rv.Bool())
		return out, true
	}
	if s, ok := rawString(raw); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err == nil {
			out.SetBool(b)
			return out, true
		}
		st.fail(path, CodeInvalidType, "boolean", err)
		return out, false
	}
	st.fail(path, CodeInvalidType, "boolean", nil)
	return out, false
}

func (n boolNode) dump(_ *state, _ string, v reflect.Value) (any, bool) { return v.Bool(), true }

type intNode struct{ t reflect.Type }

func (n intNode) load(st *state, path string, raw any) (reflect.Value, bool) {
	out := reflect.New(n.t).Elem()
	if raw == nil {
		st.fail(path, CodeNullNotAllowed, "", nil)
		return out, false
	}
	if _, isBool := raw.(bool); isBool {
		st.fail(path, CodeInvalidType, "integer", nil)
		return out, false
	}
	num, ok, err := toNumeric(raw)
	if !ok {
		st.fail(path, CodeInvalidType, "integer", err)
		return out, false
	}
	var i int64
	switch num.kind {
	case 'i':
		i = num.i
	case 'u':
		if num.u > math.MaxInt64 {
			st.fail(path, CodeOverflow, "", nil)
			return out, false
		}
		i = int64(num.u)
	case 'f':
		if !isFinite(num.f) || num.f != math.Trunc(num.f) {
			st.fail(path, CodeInvalidType, "integer", nil)
			return out, false
		}
		if num.f >= math.MaxInt64 || num.f < math.MinInt64 {
			st.fail(path, CodeOverflow, "", nil)
			return out, false
		}
		i = int64(num.f)
	}
	if out.OverflowInt(i) {
		st.fail(path, CodeOverflow, "", nil)
		return out, false
	}
	out.SetInt(i)
	return out, true
}

func (n intNode) dump(_ *state, _ string, v reflect.Value) (any, bool) { return v.Int(), true }

type uintNode struct{ t reflect.Type }

func (n uintNode) load(st *state, path string, raw any) (reflect.Value, bool) {
	out := reflect.New(n.t).Elem()
	if raw == nil {
		st.fail(path, CodeNullNotAllowed, "", nil)
		return out, false
	}
	if _, isBool := raw.(bool); isBool {
		st.fail(path, CodeInvalidType, "integer", nil)
		return out, false
	}
	num, ok, err := toNumeric(raw)
	if !ok {
		st.fail(path, CodeInvalidType, "integer", err)
		return out, false
	}
	var u uint64
	switch num.kind {
	case 'i':
		if num.i < 0 {
			st.fail(path, CodeOverflow, "", nil)
			return out, false
		}
		u = uint64(num.i)
	case 'u':
		u = num.u
	case 'f':
		if !isFinite(num.f) || num.f != math.Trunc(num.f) {
			st.fail(path, CodeInvalidType, "integer", nil)
			return out, false
		}
		if num.f < 0 || num.f >= math.MaxUint64 {
			st.fail(path, CodeOverflow, "", nil)
			return out, false
		}
		u = uint64(num.f)
	}
	if out.OverflowUint(u) {
		st.fail(path, CodeOverflow, "", nil)
		return out, false
	}
	out.SetUint(u)
	return out, true
}

func (n uintNode) dump(_ *state, _ string, v reflect.Value) (any, bool) { return v.Uint(), true }

type floatNode struct{ t reflect.Type }

func (n floatNode) load(st *state, path string, raw any) (reflect.Value, bool) {
	out := reflect.New(n.t).Elem()
	if raw == nil {
		st.fail(path, CodeNullNotAllowed, "", nil)
		return out, false
	}
	if _, isBool := raw.(bool); isBool {
		st.fail(path, CodeInvalidType, "number", nil)
		return out, false
	}
	num, ok, err := toNumeric(raw)
	if !ok {
		st.fail(path, CodeInvalidType, "number", err)
		return out, false
	}
	var f float64
	switch num.kind {
	case 'i':
		f = float64(num.i)
	case 'u':
		f = float64(num.u)
	case 'f':
		f = num.f
	}
	if !isFinite(f) {
		st.fail(path, CodeInvalidFormat, "finite number", nil)
		return out, false
	}
	if out.OverflowFloat(f) {
		st.fail(path, CodeOverflow, "", nil)
		return out, false
	}
	out.SetFloat(f)
	return out, true
}

func (n floatNode) dump(st *state, path string, v reflect.Value) (any, bool) {
	f := v.Float()
	if !isFinite(f) {
		st.fail(path, CodeInvalidFormat, "finite number", nil)
		return nil, false
	}
	return f, true
}

type stringNode struct{ t reflect.Type }

func (n stringNode) load(st *state, path string, raw any) (reflect.Value, bool) {
	out := reflect.New(n.t).Elem()
	if raw == nil {
		st.fail(path, CodeNullNotAllowed, "", nil)
		return out, false
	}
	// json.Number is string-kinded, so a string field keeps its literal text.
	if rv := reflect.ValueOf(raw); rv.Kind() == reflect.String {
		out.SetString(rv.String())
		return out, true
	}
	st.fail(path, CodeInvalidType, "string", nil)
	return out, false
}

func (n stringNode) dump(_ *state, _ string, v reflect.Value) (any, bool) { return v.String(), true }

// jsonNode delegates to the type's own MarshalJSON/UnmarshalJSON.
type jsonNode struct{ t reflect.Type }

func (n jsonNode) load(st *state, path string, raw any) (reflect.Value, bool) {
	if raw != nil && reflect.TypeOf(raw) == n.t {
		return reflect.ValueOf(raw), true
	}
	ptr := reflect.New(n.t)
	b, err := json.Marshal(raw)
	if err == nil {
		err = json.Unmarshal(b, ptr.Interface())
	}
	if err != nil {
		st.fail(path, CodeInvalidFormat, n.t.String(), err)
		return ptr.Elem(), false
	}
	return ptr.Elem(), true
}

func (n jsonNode) dump(st *state, path string, v reflect.Value) (any, bool) {
	// addressable copy so pointer-receiver MarshalJSON is honored
	ptr := reflect.New(n.t)
	ptr.Elem().Set(v)
	b, err := json.Marshal(ptr.Interface())
	if err != nil {
		st.fail(path, CodeInvalidFormat, n.t.String(), err)
		return nil, false
	}
	out, err := DecodeJSON(b)
	if err != nil {
		st.fail(path, CodeParseError, "", err)
		return nil, false
	}
	return out, true
}

// textNode delegates to MarshalText/UnmarshalText (net.IP, big.Float, ...).
type textNode struct{ t reflect.Type }

func (n textNode) load(st *state, path string, raw any) (reflect.Value, bool) {
	if raw != nil && reflect.TypeOf(raw) == n.t {
		return reflect.ValueOf(raw), true
	}
	ptr := reflect.New(n.t)
	s, ok := rawString(raw)
	if !ok {
		if num, isNum := raw.(numberLike); isNum {
			s, ok = num.String(), true
		}
	}
	if !ok {
		if raw == nil {
			st.fail(path, CodeNullNotAllowed, "", nil)
		} else {
			st.fail(path, CodeInvalidType, "string", nil)
		}
		return ptr.Elem(), false
	}
	if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
		st.fail(path, CodeInvalidFormat, n.t.String(), err)
		return ptr.Elem(), false
	}
	return ptr.Elem(), true
}

func (n textNode) dump(st *state, path string, v reflect.Value) (any, bool) {
	ptr := reflect.New(n.t)
	ptr.Elem().Set(v)
	b, err := ptr.Interface().(encoding.TextMarshaler).MarshalText()
	if err != nil {
		st.fail(path, CodeInvalidFormat, n.t.String(), err)
		return nil, false
	}
	return string(b), true
}
