package datafunc

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"runtime"
	"strings"

	"github.com/reoring/datafunc/schema"
)

// returnField is the key of the single synthetic field of the return record.
// Parameter names are identifiers, so no parameter record can be confused
// with it.
const returnField = "_return"

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// Schemas is the record type synthesized for a parameter list or a result,
// together with the schema derived from it.
type Schemas struct {
	Record     reflect.Type   // synthesized struct, one field per hinted name
	SchemaType reflect.Type   // Go type of Instance
	Instance   *schema.Object // reused for every call
}

// JSONSchema projects the raw form of the record into JSON Schema.
func (s Schemas) JSONSchema() ([]byte, error) { return s.Instance.JSONSchema() }

func newSchemas(fields []schema.Field) (Schemas, error) {
	rt, err := schema.Record(fields)
	if err != nil {
		return Schemas{}, err
	}
	obj, err := schema.For(rt)
	if err != nil {
		return Schemas{}, err
	}
	return Schemas{Record: rt, SchemaType: reflect.TypeOf(obj), Instance: obj}, nil
}

// Func wraps a typed Go function so it can be called with raw,
// JSON-compatible values. A Func is immutable and safe for concurrent use.
type Func struct {
	fn       any
	fv       reflect.Value
	ft       reflect.Type
	method   bool
	name     string
	doc      string
	logger   *slog.Logger
	params   []Parameter
	inIndex  []int // reflect In() index of params[i]
	ctxIndex int   // reflect In() index of an injected context.Context, or -1
	hinted   []string
	types    map[string]reflect.Type

	returnType   reflect.Type // nil when the function returns no value
	returnsError bool

	paramSchemas  Schemas
	returnSchemas *Schemas
}

// New wraps fn. Construction is memoized: wrapping the same function value
// with the same options returns the same *Func.
func New(fn any, opts ...Option) (*Func, error) {
	return cached(fn, newConfig(opts))
}

// MustNew is like New but panics on error.
func MustNew(fn any, opts ...Option) *Func {
	f, err := New(fn, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

func build(fn any, c *config) (*Func, error) {
	fv := reflect.ValueOf(fn)
	if fn == nil || fv.Kind() != reflect.Func || fv.IsNil() {
		return nil, definitionErr(c.name, "", ErrInvalidDeclaration, "expected a non-nil function, got %T", fn)
	}
	ft := fv.Type()
	f := &Func{
		fn:       fn,
		fv:       fv,
		ft:       ft,
		method:   c.method,
		name:     c.name,
		doc:      c.doc,
		logger:   c.logger,
		ctxIndex: -1,
	}
	if f.name == "" {
		f.name = funcName(fv)
	}

	first := 0
	if c.method {
		if ft.NumIn() == 0 {
			return nil, definitionErr(f.name, "", ErrInvalidDeclaration, "method form requires a receiver parameter")
		}
		first = 1
	}
	if ft.NumIn() > first && ft.In(first) == contextType {
		f.ctxIndex = first
	}
	for i := 0; i < ft.NumIn(); i++ {
		if i != f.ctxIndex {
			f.inIndex = append(f.inIndex, i)
		}
	}

	if err := f.declareParams(c); err != nil {
		return nil, err
	}
	if err := f.resolveTypes(); err != nil {
		return nil, err
	}
	if err := f.checkKinds(); err != nil {
		return nil, err
	}

	fields := make([]schema.Field, len(f.hinted))
	for i, name := range f.hinted {
		fields[i] = schema.Field{Name: name, Type: f.types[name]}
	}
	ps, err := newSchemas(fields)
	if err != nil {
		return nil, &DefinitionError{Func: f.name, Msg: err.Error(), Err: schemaErr(err)}
	}
	f.paramSchemas = ps
	if f.returnType != nil {
		rs, err := newSchemas([]schema.Field{{Name: returnField, Type: f.returnType}})
		if err != nil {
			return nil, &DefinitionError{Func: f.name, Param: "return", Msg: err.Error(), Err: schemaErr(err)}
		}
		f.returnSchemas = &rs
	}

	f.log().Debug("datafunc: wrapper constructed",
		"func", f.name, "params", f.hinted, "method", f.method, "signature", f.Signature())
	return f, nil
}

// schemaErr keeps both the schema error and ErrUnsupportedType reachable.
func schemaErr(err error) error {
	var ute *schema.UnsupportedTypeError
	if errors.As(err, &ute) {
		return &unsupportedErr{err: ute}
	}
	return err
}

type unsupportedErr struct{ err *schema.UnsupportedTypeError }

func (e *unsupportedErr) Error() string   { return e.err.Error() }
func (e *unsupportedErr) Unwrap() []error { return []error{ErrUnsupportedType, e.err} }

func (f *Func) declareParams(c *config) error {
	n := len(f.inIndex)
	if len(c.names) > n {
		return definitionErr(f.name, "", ErrInvalidDeclaration,
			"%d parameter names declared for %d parameters", len(c.names), n)
	}
	if len(c.names) < n {
		pos := len(c.names)
		return definitionErr(f.name, "", ErrMissingAnnotation,
			"missing annotation for parameter %d (%s)", pos, f.ft.In(f.inIndex[pos]))
	}
	seen := make(map[string]bool, n)
	for i, name := range c.names {
		if !isIdentifier(name) {
			return definitionErr(f.name, name, ErrInvalidDeclaration, "invalid parameter name %q", name)
		}
		if seen[name] {
			return definitionErr(f.name, name, ErrInvalidDeclaration, "duplicate parameter name %q", name)
		}
		seen[name] = true
		p := Parameter{Name: name, Kind: PositionalOrKeyword}
		if k, ok := c.kinds[name]; ok {
			p.Kind = k
		}
		if f.ft.IsVariadic() && f.inIndex[i] == f.ft.NumIn()-1 {
			p.Kind = VarPositional
		}
		if d, ok := c.defaults[name]; ok {
			p.Default, p.HasDefault = d, true
		}
		f.params = append(f.params, p)
	}
	for name := range c.kinds {
		if !seen[name] {
			return definitionErr(f.name, name, ErrInvalidDeclaration, "kind set for undeclared parameter %s", name)
		}
	}
	for name := range c.defaults {
		if !seen[name] {
			return definitionErr(f.name, name, ErrInvalidDeclaration, "default set for undeclared parameter %s", name)
		}
	}
	f.hinted = append([]string(nil), c.names...)
	if f.method {
		f.hinted = f.hinted[1:]
	}
	return nil
}

// resolveTypes fills the type of every hinted parameter and the result. The
// empty interface carries no type and counts as a missing annotation.
func (f *Func) resolveTypes() error {
	f.types = make(map[string]reflect.Type, len(f.hinted)+1)
	offset := 0
	if f.method {
		offset = 1
	}
	for i, name := range f.hinted {
		t := f.ft.In(f.inIndex[i+offset])
		if isUntyped(t) {
			return definitionErr(f.name, name, ErrMissingAnnotation, "missing annotation for %s", name)
		}
		f.types[name] = t
	}

	switch f.ft.NumOut() {
	case 0:
	case 1:
		if f.ft.Out(0) == errorType {
			f.returnsError = true
		} else {
			f.returnType = f.ft.Out(0)
		}
	case 2:
		if f.ft.Out(1) != errorType {
			return definitionErr(f.name, "return", ErrInvalidDeclaration,
				"second result must be error, got %s", f.ft.Out(1))
		}
		f.returnType, f.returnsError = f.ft.Out(0), true
	default:
		return definitionErr(f.name, "return", ErrInvalidDeclaration,
			"expected at most one result besides error, got %d results", f.ft.NumOut())
	}
	if f.returnType != nil && isUntyped(f.returnType) {
		return definitionErr(f.name, "return", ErrMissingAnnotation, "missing annotation for return")
	}
	f.types["return"] = f.returnType
	return nil
}

func (f *Func) checkKinds() error {
	for i, p := range f.params {
		receiver := f.method && i == 0
		switch {
		case receiver && !p.Kind.positional():
			return definitionErr(f.name, p.Name, ErrInvalidKind,
				"receiver %s is of invalid kind: %s", p.Name, p.Kind)
		case !receiver && p.Kind != PositionalOrKeyword && p.Kind != KeywordOnly:
			return definitionErr(f.name, p.Name, ErrInvalidKind,
				"parameter %s is of invalid kind: %s", p.Name, p.Kind)
		}
	}
	var sawDefault bool
	for i, p := range f.params {
		if i > 0 && p.Kind.order() < f.params[i-1].Kind.order() {
			return definitionErr(f.name, p.Name, ErrInvalidDeclaration,
				"parameter %s of kind %s follows kind %s", p.Name, p.Kind, f.params[i-1].Kind)
		}
		if !p.Kind.positional() {
			continue
		}
		if p.HasDefault {
			sawDefault = true
		} else if sawDefault {
			return definitionErr(f.name, p.Name, ErrInvalidDeclaration,
				"non-default parameter %s follows default parameter", p.Name)
		}
	}
	return nil
}

func isUntyped(t reflect.Type) bool {
	return t.Kind() == reflect.Interface && t.NumMethod() == 0
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// funcName trims the import path from the runtime symbol name, so
// "github.com/x/pkg.(*T).M-fm" becomes "pkg.(*T).M-fm".
func funcName(fv reflect.Value) string {
	rf := runtime.FuncForPC(fv.Pointer())
	if rf == nil {
		return fv.Type().String()
	}
	name := rf.Name()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func (f *Func) log() *slog.Logger {
	if f.logger != nil {
		return f.logger
	}
	return slog.Default()
}

// Fn returns the wrapped function.
func (f *Func) Fn() any { return f.fn }

// IsMethod reports whether the first parameter is a receiver excluded from
// conversion.
func (f *Func) IsMethod() bool { return f.method }

// Name returns the display name.
func (f *Func) Name() string { return f.name }

// Doc returns the documentation string given with Doc.
func (f *Func) Doc() string { return f.doc }

// HintedNames returns the names of the converted parameters in order.
func (f *Func) HintedNames() []string { return append([]string(nil), f.hinted...) }

// Parameters returns the declared parameters, receiver included.
func (f *Func) Parameters() []Parameter { return append([]Parameter(nil), f.params...) }

// Types maps every hinted name to its type, plus "return" to the result type
// (nil when the function returns no value).
func (f *Func) Types() map[string]reflect.Type {
	out := make(map[string]reflect.Type, len(f.types))
	for k, v := range f.types {
		out[k] = v
	}
	return out
}

// Params returns the parameter schemas.
func (f *Func) Params() Schemas { return f.paramSchemas }

// Return returns the result schemas, or nil when the function returns no value.
func (f *Func) Return() *Schemas { return f.returnSchemas }

// Signature renders the declared parameters and results, e.g.
// "(x int, y string) bool".
func (f *Func) Signature() string {
	b := &strings.Builder{}
	b.WriteByte('(')
	for i, p := range f.params {
		if i > 0 {
			b.WriteString(", ")
		}
		t := f.ft.In(f.inIndex[i])
		b.WriteString(p.Name)
		b.WriteByte(' ')
		if p.Kind == VarPositional {
			b.WriteString("..." + t.Elem().String())
		} else {
			b.WriteString(t.String())
		}
	}
	b.WriteByte(')')
	switch {
	case f.returnType != nil && f.returnsError:
		b.WriteString(" (" + f.returnType.String() + ", error)")
	case f.returnType != nil:
		b.WriteString(" " + f.returnType.String())
	case f.returnsError:
		b.WriteString(" error")
	}
	return b.String()
}
