package schema

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/goccy/go-json"
	invopop "github.com/invopop/jsonschema"
)

// Object is a reusable load/dump converter for one struct type.
// It is immutable after For returns and safe for concurrent use.
type Object struct {
	typ       reflect.Type
	root      *structNode
	recursive bool
}

// For compiles the schema for struct type t. Unsupported field types are
// reported here rather than at conversion time.
func For(t reflect.Type) (*Object, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: For requires a struct type, got %v", t)
	}
	c := newCompiler()
	root, err := c.compileStruct(t, "/")
	if err != nil {
		return nil, err
	}
	return &Object{typ: t, root: root, recursive: c.recursive}, nil
}

// MustFor is like For but panics on error.
func MustFor(t reflect.Type) *Object {
	o, err := For(t)
	if err != nil {
		panic(err)
	}
	return o
}

// Type returns the struct type the schema converts to and from.
func (o *Object) Type() reflect.Type { return o.typ }

// Keys lists the external field keys in declaration order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.root.fields))
	for i, f := range o.root.fields {
		keys[i] = f.key
	}
	return keys
}

// Load converts a raw string-keyed mapping into a value of Type(). The error,
// if any, is Issues.
func (o *Object) Load(ctx context.Context, raw any) (reflect.Value, error) {
	st := newState(ctx)
	v, _ := o.root.load(st, "/", raw)
	if err := st.err(); err != nil {
		return reflect.Value{}, err
	}
	return v, nil
}

// Dump converts v (a value of Type(), a pointer to one, or a mapping that
// loads into one) to its raw form.
func (o *Object) Dump(ctx context.Context, v any) (map[string]any, error) {
	st := newState(ctx)
	rv, _ := o.root.load(st, "/", v)
	if err := st.err(); err != nil {
		return nil, err
	}
	out, _ := o.root.dump(st, "/", rv)
	if err := st.err(); err != nil {
		return nil, err
	}
	return out.(map[string]any), nil
}

// DumpValue renders a value of Type() without the coercion step.
func (o *Object) DumpValue(ctx context.Context, v reflect.Value) (map[string]any, error) {
	if v.Type() != o.typ {
		return nil, Issues{NewIssue("/", CodeInvalidType, o.typ.String(), nil)}
	}
	st := newState(ctx)
	out, _ := o.root.dump(st, "/", v)
	if err := st.err(); err != nil {
		return nil, err
	}
	return out.(map[string]any), nil
}

// JSONSchema projects the dumped form of the record into JSON Schema.
func (o *Object) JSONSchema() ([]byte, error) {
	if o.recursive {
		return nil, ErrRecursiveSchema
	}
	r := &invopop.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		Mapper:         mapSchemaType,
	}
	return json.Marshal(r.ReflectFromType(o.typ))
}

func mapSchemaType(t reflect.Type) *invopop.Schema {
	if t == reflect.TypeOf(time.Duration(0)) {
		return &invopop.Schema{Type: "string", Format: "duration"}
	}
	return nil
}
