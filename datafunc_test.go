package datafunc_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/reoring/datafunc"
)

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Calc struct{ calls int }

func (c *Calc) Double(x int) int {
	c.calls++
	return x * 2
}

func TestSimple(t *testing.T) {
	nextYear := datafunc.MustNew(func(dt time.Time) time.Time {
		return dt.AddDate(1, 0, 0)
	}, datafunc.Params("dt"))

	out, err := nextYear.Call(context.Background(), []any{"2019-01-02T00:00:00"}, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out != "2020-01-02T00:00:00Z" {
		t.Fatalf("got %#v", out)
	}
}

func TestUnboundMethod(t *testing.T) {
	double := datafunc.MustNew((*Calc).Double, datafunc.Method(), datafunc.Params("c", "x"))
	ctx := context.Background()

	c := &Calc{}
	out, err := double.Call(ctx, []any{c, "3"}, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out != int64(6) {
		t.Fatalf("got %#v", out)
	}
	if c.calls != 1 {
		t.Fatalf("receiver not passed through: calls=%d", c.calls)
	}

	bound, err := double.Bind(c).Call(ctx, []any{"3"}, nil)
	if err != nil || bound != int64(6) {
		t.Fatalf("bound call: got %#v, %v", bound, err)
	}
	if got := double.HintedNames(); !reflect.DeepEqual(got, []string{"x"}) {
		t.Fatalf("hinted names: %v", got)
	}
	if !double.IsMethod() {
		t.Fatalf("expected method form")
	}
}

func TestUnboundMethod_ReceiverTypeMismatch(t *testing.T) {
	double := datafunc.MustNew((*Calc).Double, datafunc.Method(), datafunc.Params("c", "x"))
	_, err := double.Call(context.Background(), []any{"not a calc", 3}, nil)
	var ae *datafunc.ArgumentError
	if !errors.As(err, &ae) || !errors.Is(err, datafunc.ErrReceiverType) {
		t.Fatalf("expected receiver type error, got %v", err)
	}
}

func TestBoundMethodValue(t *testing.T) {
	c := &Calc{}
	double := datafunc.MustNew(c.Double, datafunc.Params("x"))
	out, err := double.Call(context.Background(), []any{"3"}, nil)
	if err != nil || out != int64(6) {
		t.Fatalf("got %#v, %v", out, err)
	}
}

func TestAttributes(t *testing.T) {
	fn := func(x int, y string) bool { return false }
	foo := datafunc.MustNew(fn, datafunc.Params("x", "y"), datafunc.Doc("compares x and y"))

	if reflect.ValueOf(foo.Fn()).Pointer() != reflect.ValueOf(fn).Pointer() {
		t.Fatalf("Fn does not return the wrapped function")
	}
	if foo.IsMethod() {
		t.Fatalf("unexpected method form")
	}
	wantTypes := map[string]reflect.Type{
		"x":      reflect.TypeOf(0),
		"y":      reflect.TypeOf(""),
		"return": reflect.TypeOf(false),
	}
	if got := foo.Types(); !reflect.DeepEqual(got, wantTypes) {
		t.Fatalf("types: got %v want %v", got, wantTypes)
	}
	if got := foo.Signature(); got != "(x int, y string) bool" {
		t.Fatalf("signature: %q", got)
	}
	if got := foo.HintedNames(); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Fatalf("hinted names: %v", got)
	}
	if foo.Doc() != "compares x and y" {
		t.Fatalf("doc: %q", foo.Doc())
	}
	if !strings.Contains(foo.Name(), "TestAttributes") {
		t.Fatalf("name should derive from the symbol: %q", foo.Name())
	}

	ps := foo.Params()
	if ps.Record.Field(0).Tag.Get("json") != "x" {
		t.Fatalf("first record field should be x: %v", ps.Record.Field(0))
	}
	if ps.Instance.Type() != ps.Record || ps.SchemaType != reflect.TypeOf(ps.Instance) {
		t.Fatalf("schemas triple is inconsistent")
	}
	rs := foo.Return()
	if rs == nil || rs.Record.Field(0).Tag.Get("json") != "_return" {
		t.Fatalf("return record should have a single _return field")
	}
	if rs.Record.Field(0).Type != reflect.TypeOf(false) {
		t.Fatalf("return field type: %v", rs.Record.Field(0).Type)
	}
}

func TestNamedOption(t *testing.T) {
	foo := datafunc.MustNew(func(x int) int { return x }, datafunc.Params("x"), datafunc.Named("identity"))
	if foo.Name() != "identity" {
		t.Fatalf("name: %q", foo.Name())
	}
	_, err := foo.Call(context.Background(), []any{"abc"}, nil)
	if err == nil || !strings.Contains(err.Error(), "identity") {
		t.Fatalf("error should name the function: %v", err)
	}
}

func TestMissingAnnotation(t *testing.T) {
	_, err := datafunc.New(func(x any, y int) int { return y }, datafunc.Params("x", "y"))
	if !errors.Is(err, datafunc.ErrMissingAnnotation) || !strings.Contains(err.Error(), "missing annotation for x") {
		t.Fatalf("expected missing annotation for x, got %v", err)
	}

	_, err = datafunc.New(func(x, y int) any { return x + y }, datafunc.Params("x", "y"))
	if !errors.Is(err, datafunc.ErrMissingAnnotation) || !strings.Contains(err.Error(), "missing annotation for return") {
		t.Fatalf("expected missing annotation for return, got %v", err)
	}

	_, err = datafunc.New(func(x, y int) int { return x + y }, datafunc.Params("x"))
	if !errors.Is(err, datafunc.ErrMissingAnnotation) {
		t.Fatalf("undeclared parameter should be a missing annotation, got %v", err)
	}
	var de *datafunc.DefinitionError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DefinitionError, got %T", err)
	}
}

func TestInvalidParameterKind(t *testing.T) {
	_, err := datafunc.New(func(args ...int) []int { return args }, datafunc.Params("args"))
	if !errors.Is(err, datafunc.ErrInvalidKind) ||
		!strings.Contains(err.Error(), "parameter args is of invalid kind: VAR_POSITIONAL") {
		t.Fatalf("expected VAR_POSITIONAL error, got %v", err)
	}

	_, err = datafunc.New(func(args map[string]int) map[string]int { return args },
		datafunc.Params("args"), datafunc.Kind("args", datafunc.VarKeyword))
	if !errors.Is(err, datafunc.ErrInvalidKind) ||
		!strings.Contains(err.Error(), "parameter args is of invalid kind: VAR_KEYWORD") {
		t.Fatalf("expected VAR_KEYWORD error, got %v", err)
	}
}

func TestDeclarationErrors(t *testing.T) {
	cases := []struct {
		name string
		fn   any
		opts []datafunc.Option
		want error
	}{
		{"nil", nil, nil, datafunc.ErrInvalidDeclaration},
		{"not a func", 42, nil, datafunc.ErrInvalidDeclaration},
		{"too many names", func(x int) {}, []datafunc.Option{datafunc.Params("x", "y")}, datafunc.ErrInvalidDeclaration},
		{"duplicate names", func(x, y int) {}, []datafunc.Option{datafunc.Params("x", "x")}, datafunc.ErrInvalidDeclaration},
		{"bad name", func(x int) {}, []datafunc.Option{datafunc.Params("1x")}, datafunc.ErrInvalidDeclaration},
		{"second result not error", func() (int, int) { return 0, 0 }, nil, datafunc.ErrInvalidDeclaration},
		{"three results", func() (int, int, error) { return 0, 0, nil }, nil, datafunc.ErrInvalidDeclaration},
		{"method without receiver", func() {}, []datafunc.Option{datafunc.Method()}, datafunc.ErrInvalidDeclaration},
		{"default order", func(x, y int) {}, []datafunc.Option{datafunc.Params("x", "y"), datafunc.Default("x", 1)}, datafunc.ErrInvalidDeclaration},
		{"keyword-only order", func(x, y int) {}, []datafunc.Option{datafunc.Params("x", "y"), datafunc.KeywordOnlyParams("x")}, datafunc.ErrInvalidDeclaration},
		{"default for unknown", func(x int) {}, []datafunc.Option{datafunc.Params("x"), datafunc.Default("z", 1)}, datafunc.ErrInvalidDeclaration},
		{"unsupported type", func(c chan int) {}, []datafunc.Option{datafunc.Params("c")}, datafunc.ErrUnsupportedType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := datafunc.New(tc.fn, tc.opts...)
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
			var ae *datafunc.ArgumentError
			if errors.As(err, &ae) {
				t.Fatalf("construction errors must not be ArgumentError")
			}
		})
	}
}

func TestNew_CollidingFieldNames(t *testing.T) {
	foo, err := datafunc.New(func(a, b, c int) int { return a*100 + b*10 + c },
		datafunc.Params("A_2", "a", "A"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got := foo.Params().Instance.Keys(); !reflect.DeepEqual(got, []string{"A_2", "a", "A"}) {
		t.Fatalf("keys: %v", got)
	}
	out, err := foo.Call(context.Background(), nil, map[string]any{"A_2": 1, "a": 2, "A": 3})
	if err != nil || out != int64(123) {
		t.Fatalf("got %#v, %v", out, err)
	}
}

func TestMustNew_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	datafunc.MustNew(func(x any) {}, datafunc.Params("x"))
}

func TestDecorate(t *testing.T) {
	wrap := datafunc.Decorate(datafunc.Method())
	double := wrap.Must((*Calc).Double, datafunc.Params("c", "x"))
	if !double.IsMethod() {
		t.Fatalf("stored options not applied")
	}
	again, err := wrap((*Calc).Double, datafunc.Params("c", "x"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if again != double {
		t.Fatalf("decorating twice should return the same wrapper")
	}
	b := double.Bind(&Calc{})
	if b.Name() != double.Name() || b.Func() != double {
		t.Fatalf("bound form should expose the wrapper")
	}
}

func TestParamsJSONSchema(t *testing.T) {
	foo := datafunc.MustNew(func(p Point, label string) {}, datafunc.Params("p", "label"))
	b, err := foo.Params().JSONSchema()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	s := string(b)
	for _, want := range []string{`"p"`, `"label"`, `"x"`, `"y"`} {
		if !strings.Contains(s, want) {
			t.Fatalf("schema %s should mention %s", s, want)
		}
	}
	if foo.Return() != nil {
		t.Fatalf("no-value function should have no return schemas")
	}
}
