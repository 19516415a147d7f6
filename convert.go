package datafunc

import (
	"context"
	"reflect"
)

// Call binds args and kwargs, loads the hinted values into their declared
// types, invokes the function and dumps its result. An error returned by the
// wrapped function itself is returned as is.
func (f *Func) Call(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
	b, rec, err := f.loadArguments(ctx, args, kwargs)
	if err != nil {
		return nil, err
	}
	in, err := f.callArgs(ctx, b, rec)
	if err != nil {
		return nil, err
	}

	out := f.fv.Call(in)
	if f.returnsError {
		if e := out[len(out)-1]; !e.IsNil() {
			return nil, e.Interface().(error)
		}
	}
	if f.returnSchemas == nil {
		return nil, nil
	}
	rv := reflect.New(f.returnSchemas.Record).Elem()
	rv.Field(0).Set(out[0])
	raw, err := f.returnSchemas.Instance.DumpValue(ctx, rv)
	if err != nil {
		return nil, &ReturnError{Func: f.name, Cause: err}
	}
	return raw[returnField], nil
}

// callArgs lays out the reflect arguments in declaration order.
func (f *Func) callArgs(ctx context.Context, b *bound, rec reflect.Value) ([]reflect.Value, error) {
	in := make([]reflect.Value, f.ft.NumIn())
	if f.ctxIndex >= 0 {
		if ctx == nil {
			ctx = context.Background()
		}
		in[f.ctxIndex] = reflect.ValueOf(ctx)
	}
	hinted := 0
	for i, p := range f.params {
		slot := f.inIndex[i]
		if f.method && i == 0 {
			rv, err := receiverValue(f.ft.In(slot), b.values[p.Name])
			if err != nil {
				return nil, &ArgumentError{Func: f.name, Cause: bindErr(p.Name, ErrReceiverType, "%v", err)}
			}
			in[slot] = rv
			continue
		}
		in[slot] = rec.Field(hinted)
		hinted++
	}
	return in, nil
}

type receiverMismatch struct {
	want reflect.Type
	got  any
}

func (e receiverMismatch) Error() string {
	return "receiver of type " + typeString(e.got) + " is not assignable to " + e.want.String()
}

func typeString(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}

func receiverValue(t reflect.Type, v any) (reflect.Value, error) {
	if v == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, receiverMismatch{want: t}
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(t) {
		return reflect.Value{}, receiverMismatch{want: t, got: v}
	}
	return rv, nil
}

// LoadArguments binds args and kwargs and returns every parameter by name,
// with hinted values loaded into their declared types.
func (f *Func) LoadArguments(ctx context.Context, args []any, kwargs map[string]any) (map[string]any, error) {
	b, rec, err := f.loadArguments(ctx, args, kwargs)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(b.values))
	for k, v := range b.values {
		out[k] = v
	}
	for i, name := range f.hinted {
		out[name] = rec.Field(i).Interface()
	}
	return out, nil
}

func (f *Func) loadArguments(ctx context.Context, args []any, kwargs map[string]any) (*bound, reflect.Value, error) {
	b, err := f.bind(args, kwargs)
	if err != nil {
		return nil, reflect.Value{}, &ArgumentError{Func: f.name, Cause: err}
	}
	rec, err := f.paramSchemas.Instance.Load(ctx, b.hinted(f.hinted))
	if err != nil {
		return nil, reflect.Value{}, &ArgumentError{Func: f.name, Cause: err}
	}
	return b, rec, nil
}

// DumpArguments binds typed args and kwargs and returns the raw form of the
// hinted parameters. The receiver is not included.
func (f *Func) DumpArguments(ctx context.Context, args []any, kwargs map[string]any) (map[string]any, error) {
	b, err := f.bind(args, kwargs)
	if err != nil {
		return nil, &ArgumentError{Func: f.name, Cause: err}
	}
	raw, err := f.paramSchemas.Instance.Dump(ctx, b.hinted(f.hinted))
	if err != nil {
		return nil, &ArgumentError{Func: f.name, Cause: err}
	}
	return raw, nil
}

// DumpResult converts a typed result to its raw form. It returns nil when the
// function returns no value.
func (f *Func) DumpResult(ctx context.Context, v any) (any, error) {
	if f.returnSchemas == nil {
		return nil, nil
	}
	raw, err := f.returnSchemas.Instance.Dump(ctx, map[string]any{returnField: v})
	if err != nil {
		return nil, &ReturnError{Func: f.name, Cause: err}
	}
	return raw[returnField], nil
}

// LoadResult converts a raw result to the declared result type. It returns
// nil when the function returns no value.
func (f *Func) LoadResult(ctx context.Context, raw any) (any, error) {
	if f.returnSchemas == nil {
		return nil, nil
	}
	rv, err := f.returnSchemas.Instance.Load(ctx, map[string]any{returnField: raw})
	if err != nil {
		return nil, &ReturnError{Func: f.name, Cause: err}
	}
	return rv.Field(0).Interface(), nil
}
