package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/reoring/datafunc"
)

type point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// builtins are the functions the CLI can call.
func builtins(logger *slog.Logger) map[string]*datafunc.Func {
	opt := datafunc.WithLogger(logger)
	return map[string]*datafunc.Func{
		"next-year": datafunc.MustNew(func(dt time.Time) time.Time {
			return dt.AddDate(1, 0, 0)
		}, datafunc.Params("dt"), datafunc.Named("next-year"), datafunc.Doc("same instant one year later"), opt),
		"add-days": datafunc.MustNew(func(d time.Time, days int) time.Time {
			return d.AddDate(0, 0, days)
		}, datafunc.Params("d", "days"), datafunc.Default("days", 1), datafunc.Named("add-days"),
			datafunc.Doc("shift a date by days (default 1)"), opt),
		"translate": datafunc.MustNew(func(p point, dx, dy int) point {
			return point{X: p.X + dx, Y: p.Y + dy}
		}, datafunc.Params("p", "dx", "dy"), datafunc.Default("dy", 0), datafunc.Named("translate"),
			datafunc.Doc("move a point by (dx, dy)"), opt),
		"sleep": datafunc.MustNew(func(ctx context.Context, d time.Duration) (string, error) {
			select {
			case <-time.After(d):
				return "slept " + d.String(), nil
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}, datafunc.Params("d"), datafunc.Named("sleep"), datafunc.Doc("wait for a Go duration"), opt),
	}
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "list":
		listCmd(os.Args[2:])
	case "call":
		callCmd(os.Args[2:])
	case "schema":
		schemaCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "datafunc CLI\n\nUsage:\n  datafunc list\n  datafunc call -func NAME [-yaml] [-args DOC] [-timeout 5s]\n  datafunc schema -func NAME [-return]\n\nNotes:\n  - Without -args the argument document is read from stdin.\n  - An array document supplies positional arguments, an object keyword arguments.")
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	_ = fs.Parse(args)
	funcs := builtins(newLogger(false))
	names := make([]string, 0, len(funcs))
	for n := range funcs {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		f := funcs[n]
		fmt.Printf("%-10s %s\n           %s\n", n, f.Signature(), f.Doc())
	}
}

func callCmd(args []string) {
	fs := flag.NewFlagSet("call", flag.ExitOnError)
	var name, doc string
	var useYAML, verbose bool
	var timeout time.Duration
	fs.StringVar(&name, "func", "", "function to call (see list)")
	fs.StringVar(&doc, "args", "", "argument document; read from stdin when empty")
	fs.BoolVar(&useYAML, "yaml", false, "read and write YAML instead of JSON")
	fs.DurationVar(&timeout, "timeout", 0, "cancel the call after this long")
	fs.BoolVar(&verbose, "v", false, "enable debug logs")
	_ = fs.Parse(args)
	f := lookup(name, verbose)

	in := []byte(doc)
	if doc == "" {
		var err error
		if in, err = io.ReadAll(os.Stdin); err != nil {
			fatalf("reading stdin: %v", err)
		}
	}

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	call := f.CallJSON
	if useYAML {
		call = f.CallYAML
	}
	out, err := call(ctx, in)
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Println(strings.TrimRight(string(out), "\n"))
}

func schemaCmd(args []string) {
	fs := flag.NewFlagSet("schema", flag.ExitOnError)
	var name string
	var ret bool
	fs.StringVar(&name, "func", "", "function to describe (see list)")
	fs.BoolVar(&ret, "return", false, "print the result schema instead of the parameter schema")
	_ = fs.Parse(args)
	f := lookup(name, false)

	s := f.Params()
	if ret {
		if f.Return() == nil {
			fatalf("%s returns no value", name)
		}
		s = *f.Return()
	}
	b, err := s.JSONSchema()
	if err != nil {
		fatalf("schema: %v", err)
	}
	fmt.Println(string(b))
}

func lookup(name string, verbose bool) *datafunc.Func {
	if name == "" {
		usage()
		os.Exit(2)
	}
	f, ok := builtins(newLogger(verbose))[name]
	if !ok {
		fatalf("unknown function %q", name)
	}
	return f
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
