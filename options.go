package datafunc

import (
	"fmt"
	"log/slog"
)

// ParamKind mirrors the calling conventions a parameter can have.
type ParamKind int

const (
	PositionalOrKeyword ParamKind = iota
	KeywordOnly
	PositionalOnly
	VarPositional
	VarKeyword
)

func (k ParamKind) String() string {
	switch k {
	case PositionalOrKeyword:
		return "POSITIONAL_OR_KEYWORD"
	case KeywordOnly:
		return "KEYWORD_ONLY"
	case PositionalOnly:
		return "POSITIONAL_ONLY"
	case VarPositional:
		return "VAR_POSITIONAL"
	case VarKeyword:
		return "VAR_KEYWORD"
	}
	return fmt.Sprintf("ParamKind(%d)", int(k))
}

// order is the position a kind may take in a parameter list.
func (k ParamKind) order() int {
	switch k {
	case PositionalOnly:
		return 0
	case PositionalOrKeyword:
		return 1
	case VarPositional:
		return 2
	case KeywordOnly:
		return 3
	default:
		return 4
	}
}

func (k ParamKind) positional() bool { return k == PositionalOnly || k == PositionalOrKeyword }

// Parameter is one declared parameter of a wrapped function.
type Parameter struct {
	Name       string
	Kind       ParamKind
	Default    any
	HasDefault bool
}

// Option configures New and Decorate.
type Option func(*config)

type config struct {
	method   bool
	names    []string
	kinds    map[string]ParamKind
	defaults map[string]any
	name     string
	doc      string
	logger   *slog.Logger
}

func newConfig(opts []Option) *config {
	c := &config{kinds: map[string]ParamKind{}, defaults: map[string]any{}}
	for _, o := range opts {
		if o != nil {
			o(c)
		}
	}
	return c
}

// fingerprint identifies the declaration for the construction cache.
func (c *config) fingerprint() string {
	return fmt.Sprintf("%t|%q|%v|%#v|%q|%q", c.method, c.names, c.kinds, c.defaults, c.name, c.doc)
}

// Method marks the function as taking a receiver first (a method expression
// such as (*T).M). The receiver is passed through without conversion.
func Method() Option { return func(c *config) { c.method = true } }

// Params declares parameter names in order. Go keeps no parameter names at
// run time, so every parameter (receiver included, injected context.Context
// excluded) needs one.
func Params(names ...string) Option {
	return func(c *config) { c.names = append(c.names, names...) }
}

// Default gives the named parameter a default value, applied when the call
// does not supply it. Defaults are converted like any other argument.
func Default(name string, v any) Option {
	return func(c *config) { c.defaults[name] = v }
}

// Kind sets the calling convention of the named parameter.
func Kind(name string, k ParamKind) Option {
	return func(c *config) { c.kinds[name] = k }
}

// KeywordOnlyParams marks the named parameters as keyword-only.
func KeywordOnlyParams(names ...string) Option {
	return func(c *config) {
		for _, n := range names {
			c.kinds[n] = KeywordOnly
		}
	}
}

// Named overrides the display name derived from the runtime symbol.
func Named(name string) Option { return func(c *config) { c.name = name } }

// Doc attaches a documentation string to the wrapper and its bound forms.
func Doc(doc string) Option { return func(c *config) { c.doc = doc } }

// WithLogger sets the logger used for debug output. Defaults to slog.Default().
// The logger is not part of the construction cache key: wrapping a function
// again with the same declaration returns the cached wrapper, which keeps
// the logger of its first construction.
func WithLogger(l *slog.Logger) Option { return func(c *config) { c.logger = l } }
