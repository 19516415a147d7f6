package schema

import (
	"encoding/base64"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"time"

	"github.com/reoring/datafunc/codec"
)

type timeNode struct{}

func (timeNode) load(st *state, path string, raw any) (reflect.Value, bool) {
	switch t := raw.(type) {
	case time.Time:
		return reflect.ValueOf(t), true
	case *time.Time:
		if t != nil {
			return reflect.ValueOf(*t), true
		}
	}
	if raw == nil {
		st.fail(path, CodeNullNotAllowed, "", nil)
		return reflect.ValueOf(time.Time{}), false
	}
	c := codec.Time()
	s, ok := rawString(raw)
	if !ok {
		st.fail(path, CodeInvalidType, c.Format(), nil)
		return reflect.ValueOf(time.Time{}), false
	}
	t, err := c.Decode(st.ctx, s)
	if err != nil {
		st.fail(path, CodeInvalidFormat, c.Format(), err)
		return reflect.ValueOf(time.Time{}), false
	}
	return reflect.ValueOf(t), true
}

func (timeNode) dump(st *state, path string, v reflect.Value) (any, bool) {
	s, err := codec.Time().Encode(st.ctx, v.Interface().(time.Time))
	if err != nil {
		st.fail(path, CodeInvalidFormat, "datetime", err)
		return nil, false
	}
	return s, true
}

type durationNode struct{}

func (durationNode) load(st *state, path string, raw any) (reflect.Value, bool) {
	zero := reflect.ValueOf(time.Duration(0))
	if d, ok := raw.(time.Duration); ok {
		return reflect.ValueOf(d), true
	}
	if raw == nil {
		st.fail(path, CodeNullNotAllowed, "", nil)
		return zero, false
	}
	c := codec.Duration()
	if s, ok := rawString(raw); ok {
		d, err := c.Decode(st.ctx, s)
		if err != nil {
			st.fail(path, CodeInvalidFormat, c.Format(), err)
			return zero, false
		}
		return reflect.ValueOf(d), true
	}
	num, ok, err := toNumeric(raw)
	if !ok {
		st.fail(path, CodeInvalidType, c.Format(), err)
		return zero, false
	}
	var d time.Duration
	switch num.kind {
	case 'i':
		d = time.Duration(num.i)
	case 'u':
		d, err = codec.DurationFromNumber(float64(num.u))
	case 'f':
		d, err = codec.DurationFromNumber(num.f)
	}
	if err != nil {
		st.fail(path, CodeOverflow, "", err)
		return zero, false
	}
	return reflect.ValueOf(d), true
}

func (durationNode) dump(st *state, _ string, v reflect.Value) (any, bool) {
	s, _ := codec.Duration().Encode(st.ctx, time.Duration(v.Int()))
	return s, true
}

// anyNode passes raw values through untouched.
type anyNode struct{ t reflect.Type }

func (n anyNode) load(_ *state, _ string, raw any) (reflect.Value, bool) {
	out := reflect.New(n.t).Elem()
	if raw != nil {
		out.Set(reflect.ValueOf(raw))
	}
	return out, true
}

func (n anyNode) dump(_ *state, _ string, v reflect.Value) (any, bool) {
	if v.IsNil() {
		return nil, true
	}
	return v.Elem().Interface(), true
}

type ptrNode struct {
	t    reflect.Type
	elem node
}

func (n ptrNode) load(st *state, path string, raw any) (reflect.Value, bool) {
	if raw == nil {
		return reflect.Zero(n.t), true
	}
	rv := reflect.ValueOf(raw)
	if rv.Type() == n.t {
		return rv, true
	}
	ev, ok := n.elem.load(st, path, raw)
	if !ok {
		return reflect.Zero(n.t), false
	}
	p := reflect.New(n.t.Elem())
	p.Elem().Set(ev)
	return p, true
}

func (n ptrNode) dump(st *state, path string, v reflect.Value) (any, bool) {
	if v.IsNil() {
		return nil, true
	}
	return n.elem.dump(st, path, v.Elem())
}

func isList(rv reflect.Value) bool {
	return rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array
}

type sliceNode struct {
	t    reflect.Type
	elem node
}

func (n sliceNode) load(st *state, path string, raw any) (reflect.Value, bool) {
	if raw == nil {
		st.fail(path, CodeNullNotAllowed, "", nil)
		return reflect.Zero(n.t), false
	}
	rv := reflect.ValueOf(raw)
	if !isList(rv) {
		st.fail(path, CodeInvalidType, "list", nil)
		return reflect.Zero(n.t), false
	}
	out := reflect.MakeSlice(n.t, rv.Len(), rv.Len())
	ok := true
	for i := 0; i < rv.Len(); i++ {
		ev, eok := n.elem.load(st, pointerAppend(path, strconv.Itoa(i)), rv.Index(i).Interface())
		if !eok {
			ok = false
			if st.stop() {
				break
			}
			continue
		}
		out.Index(i).Set(ev)
	}
	return out, ok
}

func (n sliceNode) dump(st *state, path string, v reflect.Value) (any, bool) {
	out := make([]any, v.Len())
	ok := true
	for i := 0; i < v.Len(); i++ {
		ev, eok := n.elem.dump(st, pointerAppend(path, strconv.Itoa(i)), v.Index(i))
		if !eok {
			ok = false
			if st.stop() {
				break
			}
		}
		out[i] = ev
	}
	return out, ok
}

// bytesNode carries byte slices as standard base64 strings.
type bytesNode struct{ t reflect.Type }

func (n bytesNode) load(st *state, path string, raw any) (reflect.Value, bool) {
	if raw == nil {
		st.fail(path, CodeNullNotAllowed, "", nil)
		return reflect.Zero(n.t), false
	}
	if rv := reflect.ValueOf(raw); rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		b := append([]byte(nil), rv.Bytes()...)
		return reflect.ValueOf(b).Convert(n.t), true
	}
	s, ok := rawString(raw)
	if !ok {
		st.fail(path, CodeInvalidType, "base64 string", nil)
		return reflect.Zero(n.t), false
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		st.fail(path, CodeInvalidFormat, "base64 string", err)
		return reflect.Zero(n.t), false
	}
	return reflect.ValueOf(b).Convert(n.t), true
}

func (n bytesNode) dump(_ *state, _ string, v reflect.Value) (any, bool) {
	return base64.StdEncoding.EncodeToString(v.Bytes()), true
}

type arrayNode struct {
	t    reflect.Type
	elem node
}

func (n arrayNode) load(st *state, path string, raw any) (reflect.Value, bool) {
	out := reflect.New(n.t).Elem()
	if raw == nil {
		st.fail(path, CodeNullNotAllowed, "", nil)
		return out, false
	}
	rv := reflect.ValueOf(raw)
	if !isList(rv) {
		st.fail(path, CodeInvalidType, "list", nil)
		return out, false
	}
	if rv.Len() < n.t.Len() {
		st.fail(path, CodeTooShort, "", nil)
		return out, false
	}
	if rv.Len() > n.t.Len() {
		st.fail(path, CodeTooLong, "", nil)
		return out, false
	}
	ok := true
	for i := 0; i < rv.Len(); i++ {
		ev, eok := n.elem.load(st, pointerAppend(path, strconv.Itoa(i)), rv.Index(i).Interface())
		if !eok {
			ok = false
			if st.stop() {
				break
			}
			continue
		}
		out.Index(i).Set(ev)
	}
	return out, ok
}

func (n arrayNode) dump(st *state, path string, v reflect.Value) (any, bool) {
	return sliceNode{t: n.t, elem: n.elem}.dump(st, path, v)
}

type mapNode struct {
	t    reflect.Type
	elem node
}

// rawKeys returns the string keys of a raw mapping in sorted order.
func rawKeys(rv reflect.Value) ([]string, map[string]reflect.Value) {
	byKey := make(map[string]reflect.Value, rv.Len())
	keys := make([]string, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key()
		if k.Kind() == reflect.Interface && !k.IsNil() {
			k = k.Elem()
		}
		var ks string
		if k.Kind() == reflect.String {
			ks = k.String()
		} else {
			ks = fmt.Sprint(k.Interface())
		}
		byKey[ks] = iter.Value()
		keys = append(keys, ks)
	}
	sort.Strings(keys)
	return keys, byKey
}

func (n mapNode) key(s string) (reflect.Value, error) {
	kt := n.t.Key()
	kv := reflect.New(kt).Elem()
	switch kt.Kind() {
	case reflect.String:
		kv.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(s, 10, kt.Bits())
		if err != nil {
			return kv, err
		}
		kv.SetInt(i)
	default:
		u, err := strconv.ParseUint(s, 10, kt.Bits())
		if err != nil {
			return kv, err
		}
		kv.SetUint(u)
	}
	return kv, nil
}

func (n mapNode) load(st *state, path string, raw any) (reflect.Value, bool) {
	if raw == nil {
		st.fail(path, CodeNullNotAllowed, "", nil)
		return reflect.Zero(n.t), false
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Map {
		st.fail(path, CodeInvalidType, "mapping", nil)
		return reflect.Zero(n.t), false
	}
	keys, byKey := rawKeys(rv)
	out := reflect.MakeMapWithSize(n.t, len(keys))
	ok := true
	for _, k := range keys {
		p := pointerAppend(path, k)
		kv, err := n.key(k)
		if err != nil {
			st.fail(p, CodeInvalidType, "integer key", err)
			ok = false
		} else if ev, eok := n.elem.load(st, p, byKey[k].Interface()); eok {
			out.SetMapIndex(kv, ev)
		} else {
			ok = false
		}
		if !ok && st.stop() {
			break
		}
	}
	return out, ok
}

func (n mapNode) dump(st *state, path string, v reflect.Value) (any, bool) {
	out := make(map[string]any, v.Len())
	ok := true
	iter := v.MapRange()
	for iter.Next() {
		k := iter.Key()
		var ks string
		switch k.Kind() {
		case reflect.String:
			ks = k.String()
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			ks = strconv.FormatInt(k.Int(), 10)
		default:
			ks = strconv.FormatUint(k.Uint(), 10)
		}
		ev, eok := n.elem.dump(st, pointerAppend(path, ks), iter.Value())
		if !eok {
			ok = false
			if st.stop() {
				break
			}
			continue
		}
		out[ks] = ev
	}
	return out, ok
}

type structField struct {
	key       string
	index     int
	node      node
	optional  bool
	omitEmpty bool
}

// structNode maps a string-keyed raw mapping onto struct fields. Unknown keys
// and missing required keys are issues.
type structNode struct {
	t      reflect.Type
	fields []structField
	byKey  map[string]int
}

func (n *structNode) load(st *state, path string, raw any) (reflect.Value, bool) {
	out := reflect.New(n.t).Elem()
	if raw == nil {
		st.fail(path, CodeNullNotAllowed, "", nil)
		return out, false
	}
	rv := reflect.ValueOf(raw)
	if rv.Type() == n.t {
		return rv, true
	}
	if rv.Kind() == reflect.Pointer && rv.Type().Elem() == n.t && !rv.IsNil() {
		return rv.Elem(), true
	}
	if rv.Kind() != reflect.Map {
		st.fail(path, CodeInvalidType, "mapping", nil)
		return out, false
	}
	keys, byKey := rawKeys(rv)
	ok := true
	for _, k := range keys {
		if _, known := n.byKey[k]; !known {
			st.fail(pointerAppend(path, k), CodeUnknownKey, "", nil)
			ok = false
			if st.stop() {
				return out, false
			}
		}
	}
	for _, f := range n.fields {
		p := pointerAppend(path, f.key)
		rawVal, present := byKey[f.key]
		if !present {
			if !f.optional {
				st.fail(p, CodeRequired, "", nil)
				ok = false
			}
		} else if fv, fok := f.node.load(st, p, rawVal.Interface()); fok {
			out.Field(f.index).Set(fv)
		} else {
			ok = false
		}
		if !ok && st.stop() {
			break
		}
	}
	return out, ok
}

func (n *structNode) dump(st *state, path string, v reflect.Value) (any, bool) {
	out := make(map[string]any, len(n.fields))
	ok := true
	for _, f := range n.fields {
		fv := v.Field(f.index)
		if f.omitEmpty && fv.IsZero() {
			continue
		}
		dv, fok := f.node.dump(st, pointerAppend(path, f.key), fv)
		if !fok {
			ok = false
			if st.stop() {
				break
			}
			continue
		}
		out[f.key] = dv
	}
	return out, ok
}
