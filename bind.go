package datafunc

import (
	"maps"
	"slices"
)

// bound is the result of matching call arguments to the declared parameters.
type bound struct {
	values map[string]any // every declared parameter, receiver included
}

// hinted returns the subset of values the parameter schema converts.
func (b *bound) hinted(names []string) map[string]any {
	out := make(map[string]any, len(names))
	for _, n := range names {
		out[n] = b.values[n]
	}
	return out
}

// bind matches args and kwargs against the parameter list the way a call
// expression would: positional values fill positional parameters in order,
// keywords fill the rest by name, and defaults cover what is left.
func (f *Func) bind(args []any, kwargs map[string]any) (*bound, error) {
	b := &bound{values: make(map[string]any, len(f.params))}

	i := 0
	for _, p := range f.params {
		if i >= len(args) || !p.Kind.positional() {
			break
		}
		if _, dup := kwargs[p.Name]; dup && p.Kind != PositionalOnly {
			return nil, bindErr(p.Name, ErrMultipleValues, "multiple values for argument '%s'", p.Name)
		}
		b.values[p.Name] = args[i]
		i++
	}
	if i < len(args) {
		return nil, bindErr("", ErrTooManyArguments, "too many positional arguments")
	}

	for _, p := range f.params {
		if _, done := b.values[p.Name]; done {
			continue
		}
		v, ok := kwargs[p.Name]
		switch {
		case ok && p.Kind == PositionalOnly:
			return nil, bindErr(p.Name, ErrPositionalOnly,
				"'%s' parameter is positional only, but was passed as a keyword", p.Name)
		case ok:
			b.values[p.Name] = v
		case p.HasDefault:
			b.values[p.Name] = p.Default
		default:
			return nil, bindErr(p.Name, ErrMissingArgument, "missing a required argument: '%s'", p.Name)
		}
	}

	for _, k := range slices.Sorted(maps.Keys(kwargs)) {
		if !f.declared(k) {
			return nil, bindErr(k, ErrUnexpectedArgument, "got an unexpected keyword argument '%s'", k)
		}
	}
	return b, nil
}

// declared reports whether name can be passed as a keyword.
func (f *Func) declared(name string) bool {
	for _, p := range f.params {
		if p.Name == name {
			return p.Kind != PositionalOnly
		}
	}
	return false
}
