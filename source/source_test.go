package source_test

import (
	"reflect"
	"testing"

	"github.com/reoring/datafunc/schema"
	"github.com/reoring/datafunc/source"
)

func TestJSON_ArrayIsPositional(t *testing.T) {
	args, err := source.JSON([]byte(`[1, "two", 3.5, null, {"a": [true]}]`))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := []any{int64(1), "two", 3.5, nil, map[string]any{"a": []any{true}}}
	if !reflect.DeepEqual(args.Positional, want) {
		t.Fatalf("positional: got %#v want %#v", args.Positional, want)
	}
	if args.Keyword != nil {
		t.Fatalf("keyword should be nil, got %#v", args.Keyword)
	}
}

func TestJSON_ObjectIsKeyword(t *testing.T) {
	args, err := source.JSON([]byte(`{"x": "2020-01-01T00:00:00", "n": 12345678901234}`))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := map[string]any{"x": "2020-01-01T00:00:00", "n": int64(12345678901234)}
	if !reflect.DeepEqual(args.Keyword, want) {
		t.Fatalf("keyword: got %#v want %#v", args.Keyword, want)
	}
}

func TestJSON_Errors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		code string
	}{
		{"syntax", `{"x": `, schema.CodeParseError},
		{"trailing", `[1] [2]`, schema.CodeParseError},
		{"scalar", `42`, schema.CodeInvalidType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := source.JSON([]byte(tc.in))
			iss, ok := schema.AsIssues(err)
			if !ok || len(iss) != 1 {
				t.Fatalf("expected one issue, got %v", err)
			}
			if iss[0].Code != tc.code {
				t.Fatalf("code: got %s want %s", iss[0].Code, tc.code)
			}
		})
	}
}

func TestJSON_NullIsEmpty(t *testing.T) {
	args, err := source.JSON([]byte(`null`))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if args.Positional != nil || args.Keyword != nil {
		t.Fatalf("expected empty arguments, got %#v", args)
	}
}

func TestYAML_Shapes(t *testing.T) {
	args, err := source.YAML([]byte("x: 5\nitems:\n  - 1\n  - two\nnested:\n  1: one\n"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := map[string]any{
		"x":      int64(5),
		"items":  []any{int64(1), "two"},
		"nested": map[string]any{"1": "one"},
	}
	if !reflect.DeepEqual(args.Keyword, want) {
		t.Fatalf("keyword: got %#v want %#v", args.Keyword, want)
	}

	args, err = source.YAML([]byte("- a\n- 2.5\n"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !reflect.DeepEqual(args.Positional, []any{"a", 2.5}) {
		t.Fatalf("positional: got %#v", args.Positional)
	}
}

func TestYAML_Errors(t *testing.T) {
	_, err := source.YAML([]byte("a: [1, 2\n"))
	if iss, ok := schema.AsIssues(err); !ok || iss[0].Code != schema.CodeParseError {
		t.Fatalf("expected parse_error, got %v", err)
	}
	_, err = source.YAML([]byte("a: 1\n---\nb: 2\n"))
	if iss, ok := schema.AsIssues(err); !ok || iss[0].Code != schema.CodeParseError {
		t.Fatalf("expected parse_error for multiple documents, got %v", err)
	}
}

func TestDrivers_Names(t *testing.T) {
	if got := source.JSONDriver().Name(); got != "go-json" {
		t.Fatalf("json driver name: %s", got)
	}
	if got := source.YAMLDriver().Name(); got != "yaml" {
		t.Fatalf("yaml driver name: %s", got)
	}
}
