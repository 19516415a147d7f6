package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"unicode"
)

// Field describes one named, typed entry of a synthesized record.
type Field struct {
	Name string
	Type reflect.Type
}

// Record synthesizes an anonymous struct type holding fields in order. Each Go
// field is exported and tagged with its external name, so ResolveStructKey and
// JSON tooling both see Name.
func Record(fields []Field) (reflect.Type, error) {
	used := make(map[string]bool, len(fields))
	seen := make(map[string]bool, len(fields))
	sfs := make([]reflect.StructField, 0, len(fields))
	for i, f := range fields {
		if !isIdentifier(f.Name) {
			return nil, fmt.Errorf("schema: invalid field name %q", f.Name)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("schema: duplicate field name %q", f.Name)
		}
		seen[f.Name] = true
		if f.Type == nil {
			return nil, fmt.Errorf("schema: field %q has no type", f.Name)
		}
		base := exportedName(f.Name)
		goName := base
		for n := i; used[goName]; n++ {
			goName = base + "_" + strconv.Itoa(n)
		}
		used[goName] = true
		sfs = append(sfs, reflect.StructField{
			Name: goName,
			Type: f.Type,
			Tag:  reflect.StructTag(fmt.Sprintf(`json:%q schema:%q`, f.Name, "name="+f.Name)),
		})
	}
	return reflect.StructOf(sfs), nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

func exportedName(name string) string {
	rs := []rune(name)
	rs[0] = unicode.ToUpper(rs[0])
	if !unicode.IsUpper(rs[0]) {
		return "X" + name
	}
	return string(rs)
}
