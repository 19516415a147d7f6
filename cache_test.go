package datafunc_test

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/reoring/datafunc"
)

func identity(x int) int { return x }

func TestCaching(t *testing.T) {
	a := datafunc.MustNew(identity, datafunc.Params("x"))
	b := datafunc.MustNew(identity, datafunc.Params("x"))
	if a != b {
		t.Fatalf("wrapping the same function twice should return the same wrapper")
	}

	c := datafunc.MustNew(identity, datafunc.Params("y"))
	if c == a {
		t.Fatalf("a different declaration must not share the wrapper")
	}
	d := datafunc.MustNew(identity, datafunc.Params("x"), datafunc.Doc("other"))
	if d == a {
		t.Fatalf("a different doc must not share the wrapper")
	}
}

func TestCaching_DistinctClosures(t *testing.T) {
	mk := func(n int) func(x int) int { return func(x int) int { return x + n } }
	one := datafunc.MustNew(mk(1), datafunc.Params("x"))
	two := datafunc.MustNew(mk(2), datafunc.Params("x"))
	if one == two {
		t.Fatalf("closures over different values must not share a wrapper")
	}
}

func TestCaching_Concurrent(t *testing.T) {
	datafunc.ResetCache()
	const n = 32
	got := make([]*datafunc.Func, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = datafunc.MustNew(identity, datafunc.Params("x"))
		}(i)
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		if got[i] != got[0] {
			t.Fatalf("concurrent construction produced different wrappers")
		}
	}
}

func TestCaching_FailuresAreNotCached(t *testing.T) {
	bad := func(x any) {}
	if _, err := datafunc.New(bad, datafunc.Params("x")); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := datafunc.New(bad, datafunc.Params("x")); err == nil {
		t.Fatalf("expected the error again")
	}
}

func TestResetCache(t *testing.T) {
	a := datafunc.MustNew(identity, datafunc.Params("x"))
	datafunc.ResetCache()
	b := datafunc.MustNew(identity, datafunc.Params("x"))
	if a == b {
		t.Fatalf("ResetCache should force a new wrapper")
	}
}

func TestCaching_FirstLoggerWins(t *testing.T) {
	datafunc.ResetCache()
	var first, second bytes.Buffer
	debug := &slog.HandlerOptions{Level: slog.LevelDebug}

	a := datafunc.MustNew(identity, datafunc.Params("x"), datafunc.WithLogger(slog.New(slog.NewTextHandler(&first, debug))))
	b := datafunc.MustNew(identity, datafunc.Params("x"), datafunc.WithLogger(slog.New(slog.NewTextHandler(&second, debug))))
	if a != b {
		t.Fatalf("the logger must not change the cache key")
	}
	if !strings.Contains(first.String(), "wrapper constructed") {
		t.Fatalf("first logger should see the construction: %q", first.String())
	}
	if second.Len() != 0 {
		t.Fatalf("second logger should see nothing: %q", second.String())
	}
}
