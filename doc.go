// Package datafunc wraps typed Go functions so they can be called with plain
// JSON-compatible values.
//
// - Arguments are bound to declared parameter names (positional, keyword, defaults)
// - Hinted arguments are loaded into the declared Go types through a synthesized record schema
// - Results are dumped back to raw values (nil, bool, numbers, string, []any, map[string]any)
// - Failures are *ArgumentError, *ReturnError or, at construction, *DefinitionError
//
// Design policy:
// - The load/dump engine lives in schema/, wire formats in codec/, document decoding in source/.
// - Wrappers are immutable and memoized per function and declaration.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	add := datafunc.MustNew(func(d time.Time, days int) time.Time {
//		return d.AddDate(0, 0, days)
//	}, datafunc.Params("d", "days"))
//
//	out, err := add.Call(ctx, []any{"2020-01-01T00:00:00Z", "3"}, nil)
//	// out == "2020-01-04T00:00:00Z"
//
//	raw, err := add.CallJSON(ctx, []byte(`{"d": "2020-01-01", "days": 1}`))
package datafunc
