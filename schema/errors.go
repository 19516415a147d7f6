package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/datafunc/i18n"
)

// Issue codes
const (
	CodeInvalidType    = "invalid_type"
	CodeRequired       = "required"
	CodeUnknownKey     = "unknown_key"
	CodeNullNotAllowed = "null_not_allowed"
	CodeTooShort       = "too_short"
	CodeTooLong        = "too_long"
	CodeInvalidFormat  = "invalid_format"
	CodeParseError     = "parse_error"
	CodeOverflow       = "overflow"
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: expected type or format name.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"expected":"integer"})
	// for i18n and observability.
	Params map[string]any
}

// Unwrap returns the underlying cause, if any.
func (it Issue) Unwrap() error { return it.Cause }

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /x: not a valid integer
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Message != "" {
			fmt.Fprintf(b, ": %s", it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Paths lists the JSON Pointers of all issues in order.
func (iss Issues) Paths() []string {
	out := make([]string, 0, len(iss))
	for _, it := range iss {
		out = append(out, it.Path)
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// NewIssue builds an Issue whose message comes from the current translator.
// expected, when set, names the expected type or format.
func NewIssue(path, code, expected string, cause error) Issue {
	var data map[string]string
	var params map[string]any
	if expected != "" {
		data = map[string]string{"expected": expected}
		params = map[string]any{"expected": expected}
	}
	return Issue{
		Path:    path,
		Code:    code,
		Message: i18n.T(code, data),
		Hint:    expected,
		Cause:   cause,
		Params:  params,
	}
}
