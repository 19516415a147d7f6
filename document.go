package datafunc

import (
	"context"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/datafunc/source"
)

// CallJSON calls the function with arguments from a JSON document (an array
// for positional arguments, an object for keyword arguments) and encodes the
// raw result as JSON. A function that returns no value yields "null".
func (f *Func) CallJSON(ctx context.Context, doc []byte) ([]byte, error) {
	return f.callDocument(ctx, nil, doc, source.JSON, json.Marshal)
}

// CallYAML is CallJSON for YAML documents.
func (f *Func) CallYAML(ctx context.Context, doc []byte) ([]byte, error) {
	return f.callDocument(ctx, nil, doc, source.YAML, yaml.Marshal)
}

func (f *Func) callDocument(
	ctx context.Context,
	prefix []any,
	doc []byte,
	decode func([]byte) (source.Arguments, error),
	encode func(any) ([]byte, error),
) ([]byte, error) {
	args, err := decode(doc)
	if err != nil {
		return nil, &ArgumentError{Func: f.name, Cause: err}
	}
	positional := args.Positional
	if len(prefix) > 0 {
		positional = append(append([]any(nil), prefix...), positional...)
	}
	out, err := f.Call(ctx, positional, args.Keyword)
	if err != nil {
		return nil, err
	}
	b, err := encode(out)
	if err != nil {
		return nil, &ReturnError{Func: f.name, Cause: err}
	}
	return b, nil
}
