package crate

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/zoobzio/sentinel"
)

// recordTag is the struct tag naming a field's record key.
const recordTag = "record"

func init() {
	sentinel.Tag(recordTag)
}

// typePlan describes how to walk a struct type's fields.
type typePlan struct {
	fields []fieldPlan
}

// fieldPlan describes a single mapped field.
type fieldPlan struct {
	index    []int  // reflect.Value.FieldByIndex access path
	key      string // record key
	optional bool   // pointer or interface field: nil is omitted, missing is tolerated
	system   bool   // reserved system-fields blob
}

// buildPlan creates a field plan for rt from its sentinel metadata.
func buildPlan(rt reflect.Type, spec sentinel.Metadata) (*typePlan, error) {
	if rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%s is not a struct", rt)
	}

	plan := &typePlan{fields: make([]fieldPlan, 0, len(spec.Fields))}

	seen := make(map[string]string, len(spec.Fields))
	for _, field := range spec.Fields {
		tag := field.Tags[recordTag]
		if tag == "-" {
			continue
		}

		key, _, _ := strings.Cut(tag, ",")
		if key == "" {
			key = defaultKey(field.Name)
		}

		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("fields %s and %s of %s both map to key %q", prev, field.Name, rt, key)
		}
		seen[key] = field.Name

		plan.fields = append(plan.fields, fieldPlan{
			index:    append([]int{}, field.Index...),
			key:      key,
			optional: field.Kind == sentinel.KindPointer || field.Kind == sentinel.KindInterface,
			system:   key == SystemFieldsKey,
		})
	}

	return plan, nil
}

// primePlan scans T with sentinel and caches the resulting plan, so later
// encodes and decodes of T never fall back to reflectMetadata.
func primePlan[T any]() {
	rt := reflect.TypeFor[T]()
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return
	}

	_, _ = loadPlan(rt, func(rt reflect.Type) sentinel.Metadata {
		spec, err := sentinel.TryScan[T]()
		if err != nil || !describes(spec, rt) {
			return reflectMetadata(rt)
		}
		return spec
	})
}

// lookupMetadata returns sentinel's metadata for rt when sentinel has
// already scanned exactly this type.
func lookupMetadata(rt reflect.Type) sentinel.Metadata {
	if spec, ok := sentinel.Lookup(rt.Name()); ok && describes(spec, rt) {
		return spec
	}
	return reflectMetadata(rt)
}

// describes reports whether spec was extracted from rt. Sentinel keys its
// cache by bare type name, so types from different packages, and types
// declared inside functions, can share an entry.
func describes(spec sentinel.Metadata, rt reflect.Type) bool {
	if rt.Name() == "" || spec.TypeName != rt.Name() || spec.PackageName != rt.PkgPath() {
		return false
	}

	exported := 0
	for i := 0; i < rt.NumField(); i++ {
		if rt.Field(i).IsExported() {
			exported++
		}
	}
	if exported != len(spec.Fields) {
		return false
	}

	for _, f := range spec.Fields {
		if len(f.Index) != 1 || f.Index[0] >= rt.NumField() {
			return false
		}
		sf := rt.Field(f.Index[0])
		if sf.Name != f.Name || sf.Type != f.ReflectType {
			return false
		}
	}
	return true
}

// reflectMetadata describes a type sentinel has not scanned. Sentinel can
// only scan through a type parameter, which RecordEncoder.Encode and
// RecordDecoder.Decode do not have.
func reflectMetadata(rt reflect.Type) sentinel.Metadata {
	spec := sentinel.Metadata{TypeName: rt.Name(), PackageName: rt.PkgPath()}
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		kind := sentinel.KindScalar
		switch sf.Type.Kind() {
		case reflect.Pointer:
			kind = sentinel.KindPointer
		case reflect.Interface:
			kind = sentinel.KindInterface
		}
		spec.Fields = append(spec.Fields, sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Kind:        kind,
			Tags:        map[string]string{recordTag: sf.Tag.Get(recordTag)},
		})
	}
	return spec
}

// defaultKey lower-cases a field name's leading initialism:
// Name → name, CreatedAt → createdAt, ID → id, URLPath → urlPath.
func defaultKey(name string) string {
	runes := []rune(name)
	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	if n > 1 && n < len(runes) && unicode.IsLower(runes[n]) {
		n--
	}
	for i := 0; i < n; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}
