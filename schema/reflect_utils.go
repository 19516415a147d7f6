package schema

import (
	"reflect"
	"strings"
)

// ResolveStructKey applies the repository-wide rule to resolve a struct field's
// external key.
// Priority: schema:"name=..." > json tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	if gt := sf.Tag.Get("schema"); gt != "" {
		for _, p := range strings.Split(gt, ",") {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(p, "name=") {
				return strings.TrimPrefix(p, "name=")
			}
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			if i == 0 {
				return sf.Name
			}
			return jt[:i]
		}
		return jt
	}
	return sf.Name
}

// isOptionalField reports whether a missing key is acceptable for sf: pointer
// fields and fields tagged omitempty.
func isOptionalField(sf reflect.StructField) bool {
	if sf.Type.Kind() == reflect.Pointer {
		return true
	}
	return hasTagOption(sf.Tag.Get("json"), "omitempty")
}

func hasTagOption(tag, opt string) bool {
	if tag == "" {
		return false
	}
	parts := strings.Split(tag, ",")
	for _, p := range parts[1:] {
		if strings.TrimSpace(p) == opt {
			return true
		}
	}
	return false
}

// pointerAppend appends a reference token to a JSON Pointer (RFC 6901).
func pointerAppend(base, token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	token = strings.ReplaceAll(token, "/", "~1")
	if base == "/" {
		return "/" + token
	}
	return base + "/" + token
}
