package crate

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/sentinel"
)

func TestDefaultKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Name", "name"},
		{"CreatedAt", "createdAt"},
		{"ID", "id"},
		{"URLPath", "urlPath"},
		{"SystemFields", "systemFields"},
		{"X", "x"},
		{"already", "already"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := defaultKey(tt.in); got != tt.want {
				t.Errorf("defaultKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

type planned struct {
	SystemFields []byte
	Title        string `record:"heading"`
	Body         string `record:",omitempty"`
	Secret       string `record:"-"`
	Score        *int
	Note         any
	CreatedAt    time.Time
	cache        string
}

func planKeys(plan *typePlan) []string {
	keys := make([]string, 0, len(plan.fields))
	for _, f := range plan.fields {
		keys = append(keys, f.key)
	}
	return keys
}

func TestBuildPlan(t *testing.T) {
	rt := reflect.TypeFor[planned]()
	plan, err := buildPlan(rt, sentinel.Scan[planned]())
	if err != nil {
		t.Fatalf("buildPlan() error: %v", err)
	}

	want := []string{"systemFields", "heading", "body", "score", "note", "createdAt"}
	if got := planKeys(plan); !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}

	if !plan.fields[0].system {
		t.Error("systemFields should be marked system")
	}
	if !plan.fields[3].optional {
		t.Error("pointer field should be optional")
	}
	if !plan.fields[4].optional {
		t.Error("interface field should be optional")
	}
	if plan.fields[1].optional {
		t.Error("value field should not be optional")
	}
	if !reflect.DeepEqual(plan.fields[5].index, []int{6}) {
		t.Errorf("createdAt index = %v, want [6]", plan.fields[5].index)
	}
}

func TestBuildPlan_FollowsMetadata(t *testing.T) {
	rt := reflect.TypeFor[planned]()
	title, _ := rt.FieldByName("Title")

	spec := sentinel.Metadata{
		TypeName:    "planned",
		PackageName: rt.PkgPath(),
		Fields: []sentinel.FieldMetadata{{
			Name:        "Title",
			Index:       title.Index,
			Kind:        sentinel.KindScalar,
			ReflectType: title.Type,
			Tags:        map[string]string{recordTag: "subject"},
		}},
	}

	plan, err := buildPlan(rt, spec)
	if err != nil {
		t.Fatalf("buildPlan() error: %v", err)
	}
	if got := planKeys(plan); !reflect.DeepEqual(got, []string{"subject"}) {
		t.Errorf("keys = %v, want [subject]", got)
	}
}

type duplicated struct {
	First  string `record:"k"`
	Second string `record:"k"`
}

func TestBuildPlan_DuplicateKey(t *testing.T) {
	if _, err := buildPlan(reflect.TypeFor[duplicated](), sentinel.Scan[duplicated]()); err == nil {
		t.Error("buildPlan() should reject duplicate keys")
	}
}

func TestBuildPlan_NotStruct(t *testing.T) {
	if _, err := buildPlan(reflect.TypeFor[int](), sentinel.Metadata{}); err == nil {
		t.Error("buildPlan() should reject non-struct types")
	}
}

func TestPrimePlan_UsesSentinel(t *testing.T) {
	Reset()
	primePlan[*planned]()

	rt := reflect.TypeFor[planned]()
	spec, ok := sentinel.Lookup(rt.Name())
	if !ok {
		t.Fatal("primePlan() should scan the type with sentinel")
	}
	if !describes(spec, rt) {
		t.Fatalf("sentinel metadata %s.%s does not describe %s", spec.PackageName, spec.TypeName, rt)
	}
	if spec.Fields[1].Tags[recordTag] != "heading" {
		t.Errorf("sentinel record tag = %q, want heading", spec.Fields[1].Tags[recordTag])
	}

	indexes := make(map[string][]int, len(spec.Fields))
	for _, f := range spec.Fields {
		indexes[f.Name] = f.Index
	}

	plan, err := planFor(rt)
	if err != nil {
		t.Fatalf("planFor() error: %v", err)
	}
	for _, f := range plan.fields {
		name := rt.Field(f.index[0]).Name
		if !reflect.DeepEqual(indexes[name], f.index) {
			t.Errorf("%s: plan index %v, sentinel index %v", name, f.index, indexes[name])
		}
	}
}

func TestDescribes(t *testing.T) {
	spec := sentinel.Scan[planned]()

	if !describes(spec, reflect.TypeFor[planned]()) {
		t.Error("describes() should accept the scanned type")
	}

	foreign := spec
	foreign.PackageName = "example.com/other"
	if describes(foreign, reflect.TypeFor[planned]()) {
		t.Error("describes() should reject metadata from another package")
	}

	if describes(spec, reflect.TypeFor[struct{ Title string }]()) {
		t.Error("describes() should reject anonymous structs")
	}

	// Same name and package, different shape.
	type planned struct {
		Other int
	}
	if describes(spec, reflect.TypeFor[planned]()) {
		t.Error("describes() should reject a function-local type sharing the name")
	}
}

type unscanned struct {
	Label string `record:"tag"`
	Ref   any
}

func TestLookupMetadata_Unscanned(t *testing.T) {
	spec := lookupMetadata(reflect.TypeFor[unscanned]())

	if len(spec.Fields) != 2 {
		t.Fatalf("len(Fields) = %d, want 2", len(spec.Fields))
	}
	if spec.Fields[0].Tags[recordTag] != "tag" {
		t.Errorf("Label tag = %q, want tag", spec.Fields[0].Tags[recordTag])
	}
	if spec.Fields[1].Kind != sentinel.KindInterface {
		t.Errorf("Ref kind = %q, want interface", spec.Fields[1].Kind)
	}
}

func TestPlanFor_Caching(t *testing.T) {
	Reset()

	p1, err := planFor(reflect.TypeFor[planned]())
	if err != nil {
		t.Fatalf("planFor() error: %v", err)
	}
	p2, err := planFor(reflect.TypeFor[planned]())
	if err != nil {
		t.Fatalf("planFor() error: %v", err)
	}
	if p1 != p2 {
		t.Error("planFor() should return cached plan")
	}
}

func TestPlanFor_Concurrent(t *testing.T) {
	Reset()

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			in := planned{Title: fmt.Sprintf("t%d", i), Body: "b", CreatedAt: time.Unix(int64(i), 0).UTC()}
			rec, err := Marshal(ctx, in)
			if err != nil {
				t.Errorf("Marshal() error: %v", err)
				return
			}
			out, err := Unmarshal[planned](ctx, rec)
			if err != nil {
				t.Errorf("Unmarshal() error: %v", err)
				return
			}
			if out.Title != in.Title || !out.CreatedAt.Equal(in.CreatedAt) {
				t.Errorf("round trip = %+v, want %+v", out, in)
			}
		}(i)
	}
	wg.Wait()

	registryMu.RLock()
	defer registryMu.RUnlock()
	if _, ok := registry[reflect.TypeFor[planned]()]; !ok || len(registry) != 1 {
		t.Errorf("registry holds %d plans, want only planned", len(registry))
	}
}

func TestReset(t *testing.T) {
	p1, _ := planFor(reflect.TypeFor[planned]())

	Reset()

	p2, _ := planFor(reflect.TypeFor[planned]())
	if p1 == p2 {
		t.Error("Reset() should clear cache, new plan expected")
	}
}
