package schema

import (
	"context"
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/goccy/go-json"
)

// node converts between raw values and values of one Go type.
// load and dump record issues on st and report ok=false on failure.
type node interface {
	load(st *state, path string, raw any) (reflect.Value, bool)
	dump(st *state, path string, v reflect.Value) (any, bool)
}

type state struct {
	ctx      context.Context
	failFast bool
	issues   Issues
}

func newState(ctx context.Context) *state {
	if ctx == nil {
		ctx = context.Background()
	}
	return &state{ctx: ctx, failFast: IsFailFast(ctx)}
}

func (st *state) fail(path, code, expected string, cause error) {
	st.issues = AppendIssues(st.issues, NewIssue(path, code, expected, cause))
}

// stop reports whether aggregate nodes should give up early.
func (st *state) stop() bool { return st.failFast && len(st.issues) > 0 }

func (st *state) err() error {
	if len(st.issues) == 0 {
		return nil
	}
	return st.issues
}

// UnsupportedTypeError is returned by For when a field type has no raw form.
type UnsupportedTypeError struct {
	Type reflect.Type
	Path string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("schema: unsupported type %s at %s", e.Type, e.Path)
}

// ErrRecursiveSchema is returned by JSONSchema for self-referencing records.
var ErrRecursiveSchema = errors.New("schema: recursive types cannot be projected to JSON Schema")

var (
	timeType            = reflect.TypeOf(time.Time{})
	durationType        = reflect.TypeOf(time.Duration(0))
	jsonMarshalerType   = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	jsonUnmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// compiler builds node trees; struct nodes are registered before their fields
// are compiled so self-referencing types terminate.
type compiler struct {
	structs   map[reflect.Type]*structNode
	building  map[reflect.Type]bool
	recursive bool
}

func newCompiler() *compiler {
	return &compiler{structs: map[reflect.Type]*structNode{}, building: map[reflect.Type]bool{}}
}

func implementsEither(t, iface reflect.Type) bool {
	return t.Implements(iface) || reflect.PointerTo(t).Implements(iface)
}

func (c *compiler) compile(t reflect.Type, path string) (node, error) {
	switch {
	case t == timeType:
		return timeNode{}, nil
	case t == durationType:
		return durationNode{}, nil
	case t.Kind() == reflect.Interface:
		if t.NumMethod() != 0 {
			return nil, &UnsupportedTypeError{Type: t, Path: path}
		}
		return anyNode{t: t}, nil
	case t.Kind() != reflect.Pointer &&
		reflect.PointerTo(t).Implements(jsonUnmarshalerType) && implementsEither(t, jsonMarshalerType):
		return jsonNode{t: t}, nil
	case t.Kind() != reflect.Pointer &&
		reflect.PointerTo(t).Implements(textUnmarshalerType) && implementsEither(t, textMarshalerType):
		return textNode{t: t}, nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return boolNode{t: t}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return intNode{t: t}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return uintNode{t: t}, nil
	case reflect.Float32, reflect.Float64:
		return floatNode{t: t}, nil
	case reflect.String:
		return stringNode{t: t}, nil
	case reflect.Pointer:
		elem, err := c.compile(t.Elem(), path)
		if err != nil {
			return nil, err
		}
		return ptrNode{t: t, elem: elem}, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 && !implementsEither(t.Elem(), textMarshalerType) {
			return bytesNode{t: t}, nil
		}
		elem, err := c.compile(t.Elem(), path+"/*")
		if err != nil {
			return nil, err
		}
		return sliceNode{t: t, elem: elem}, nil
	case reflect.Array:
		elem, err := c.compile(t.Elem(), path+"/*")
		if err != nil {
			return nil, err
		}
		return arrayNode{t: t, elem: elem}, nil
	case reflect.Map:
		switch t.Key().Kind() {
		case reflect.String,
			reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		default:
			return nil, &UnsupportedTypeError{Type: t, Path: path}
		}
		elem, err := c.compile(t.Elem(), path+"/*")
		if err != nil {
			return nil, err
		}
		return mapNode{t: t, elem: elem}, nil
	case reflect.Struct:
		return c.compileStruct(t, path)
	}
	return nil, &UnsupportedTypeError{Type: t, Path: path}
}

func (c *compiler) compileStruct(t reflect.Type, path string) (*structNode, error) {
	if sn, ok := c.structs[t]; ok {
		if c.building[t] {
			c.recursive = true
		}
		return sn, nil
	}
	sn := &structNode{t: t, byKey: map[string]int{}}
	c.structs[t] = sn
	c.building[t] = true
	defer delete(c.building, t)

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		key := ResolveStructKey(sf)
		if key == "-" || key == "" {
			continue
		}
		if _, dup := sn.byKey[key]; dup {
			return nil, fmt.Errorf("schema: duplicate key %q in %s", key, t)
		}
		fn, err := c.compile(sf.Type, pointerAppend(path, key))
		if err != nil {
			return nil, err
		}
		sn.byKey[key] = len(sn.fields)
		sn.fields = append(sn.fields, structField{
			key:       key,
			index:     i,
			node:      fn,
			optional:  isOptionalField(sf),
			omitEmpty: hasTagOption(sf.Tag.Get("json"), "omitempty"),
		})
	}
	return sn, nil
}
