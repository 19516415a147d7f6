package datafunc

import (
	"context"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/datafunc/source"
)

// Decorator wraps functions with a stored configuration.
type Decorator func(fn any, opts ...Option) (*Func, error)

// Decorate returns a Decorator that applies opts, followed by any options
// given at wrap time, to every function it wraps.
//
//	wrap := datafunc.Decorate(datafunc.Method())
//	double := wrap.Must((*Calc).Double, datafunc.Params("c", "x"))
func Decorate(opts ...Option) Decorator {
	stored := append([]Option(nil), opts...)
	return func(fn any, more ...Option) (*Func, error) {
		all := make([]Option, 0, len(stored)+len(more))
		all = append(all, stored...)
		all = append(all, more...)
		return New(fn, all...)
	}
}

// Must is like calling d but panics on error.
func (d Decorator) Must(fn any, opts ...Option) *Func {
	f, err := d(fn, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// Bound is a method-form wrapper with its receiver fixed.
type Bound struct {
	f    *Func
	recv any
}

// Bind fixes the receiver of a method-form wrapper. Calls on the result
// prepend recv to the positional arguments.
func (f *Func) Bind(recv any) *Bound { return &Bound{f: f, recv: recv} }

// Call is Func.Call with the receiver prepended.
func (b *Bound) Call(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
	all := make([]any, 0, len(args)+1)
	all = append(all, b.recv)
	all = append(all, args...)
	return b.f.Call(ctx, all, kwargs)
}

// CallJSON is Func.CallJSON with the receiver prepended.
func (b *Bound) CallJSON(ctx context.Context, doc []byte) ([]byte, error) {
	return b.f.callDocument(ctx, []any{b.recv}, doc, source.JSON, json.Marshal)
}

// CallYAML is Func.CallYAML with the receiver prepended.
func (b *Bound) CallYAML(ctx context.Context, doc []byte) ([]byte, error) {
	return b.f.callDocument(ctx, []any{b.recv}, doc, source.YAML, yaml.Marshal)
}

// Name returns the display name of the wrapper.
func (b *Bound) Name() string { return b.f.Name() }

// Doc returns the documentation string of the wrapper.
func (b *Bound) Doc() string { return b.f.Doc() }

// Func returns the unbound wrapper.
func (b *Bound) Func() *Func { return b.f }

// Receiver returns the fixed receiver.
func (b *Bound) Receiver() any { return b.recv }
