package datafunc

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"

	"golang.org/x/sync/singleflight"
)

var (
	wrappers sync.Map // key string -> *Func
	building singleflight.Group
)

// funcIdentity returns the address of the closure object behind fn. Two
// evaluations of the same function literal that capture different variables
// have different identities; a top-level function always has the same one.
// Cached wrappers hold fn, so the address cannot be reused while its entry
// exists.
func funcIdentity(fn any) uintptr {
	return uintptr((*[2]unsafe.Pointer)(unsafe.Pointer(&fn))[1])
}

func cacheKey(fn any, c *config) string {
	return fmt.Sprintf("%x|%s|%s", funcIdentity(fn), reflect.TypeOf(fn), c.fingerprint())
}

func cached(fn any, c *config) (*Func, error) {
	if fn == nil || reflect.TypeOf(fn).Kind() != reflect.Func {
		return build(fn, c)
	}
	key := cacheKey(fn, c)
	if f, ok := wrappers.Load(key); ok {
		return f.(*Func), nil
	}
	v, err, _ := building.Do(key, func() (any, error) {
		if f, ok := wrappers.Load(key); ok {
			return f, nil
		}
		f, err := build(fn, c)
		if err != nil {
			return nil, err
		}
		wrappers.Store(key, f)
		return f, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Func), nil
}

// ResetCache drops every memoized wrapper. Wrappers already returned stay
// valid.
func ResetCache() {
	wrappers.Range(func(k, _ any) bool {
		wrappers.Delete(k)
		return true
	})
}
