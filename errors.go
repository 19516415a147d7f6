package datafunc

import (
	"errors"
	"fmt"
)

// Construction errors. They are returned by New when the function itself is
// malformed and are never wrapped in ArgumentError or ReturnError.
var (
	ErrMissingAnnotation  = errors.New("datafunc: missing annotation")
	ErrInvalidKind        = errors.New("datafunc: invalid parameter kind")
	ErrInvalidDeclaration = errors.New("datafunc: invalid declaration")
	ErrUnsupportedType    = errors.New("datafunc: unsupported type")
)

// Binding errors, the causes of an ArgumentError when a call does not fit the
// parameter list.
var (
	ErrMissingArgument    = errors.New("datafunc: missing argument")
	ErrUnexpectedArgument = errors.New("datafunc: unexpected argument")
	ErrMultipleValues     = errors.New("datafunc: multiple values for argument")
	ErrTooManyArguments   = errors.New("datafunc: too many positional arguments")
	ErrPositionalOnly     = errors.New("datafunc: positional-only argument passed as keyword")
	ErrReceiverType       = errors.New("datafunc: receiver type mismatch")
)

// DefinitionError reports a malformed wrapped function, detected at
// construction time.
type DefinitionError struct {
	Func  string // display name of the wrapped function
	Param string // offending parameter, "return" for the result, "" when not specific
	Msg   string
	Err   error // one of the Err* construction sentinels, or the schema error
}

func (e *DefinitionError) Error() string { return "datafunc: " + e.Msg }

func (e *DefinitionError) Unwrap() error { return e.Err }

// BindError reports a call whose arguments cannot be bound to the parameters.
type BindError struct {
	Param string
	Msg   string
	Err   error
}

func (e *BindError) Error() string { return e.Msg }

func (e *BindError) Unwrap() error { return e.Err }

// ArgumentError is returned by Call, LoadArguments and DumpArguments when
// the arguments cannot be bound or converted. Cause holds the BindError or
// schema.Issues that triggered it.
type ArgumentError struct {
	Func  string
	Cause error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("datafunc: invalid arguments for %s: %v", e.Func, e.Cause)
}

func (e *ArgumentError) Unwrap() error { return e.Cause }

// ReturnError is returned by Call, LoadResult and DumpResult when the result
// cannot be converted.
type ReturnError struct {
	Func  string
	Cause error
}

func (e *ReturnError) Error() string {
	return fmt.Sprintf("datafunc: invalid return value for %s: %v", e.Func, e.Cause)
}

func (e *ReturnError) Unwrap() error { return e.Cause }

func definitionErr(fn, param string, sentinel error, format string, args ...any) *DefinitionError {
	return &DefinitionError{Func: fn, Param: param, Msg: fmt.Sprintf(format, args...), Err: sentinel}
}

func bindErr(param string, sentinel error, format string, args ...any) *BindError {
	return &BindError{Param: param, Msg: fmt.Sprintf(format, args...), Err: sentinel}
}
