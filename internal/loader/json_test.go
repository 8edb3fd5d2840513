package loader

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/gridsheet/gridsheet/internal/options"
	"github.com/gridsheet/gridsheet/internal/sheet"
	"github.com/gridsheet/gridsheet/internal/testhelpers"
)

func colNames(s *sheet.Sheet) []string {
	var names []string
	for _, c := range s.Columns() {
		names = append(names, c.Name)
	}
	return names
}

func TestJSONLoader_ArrayOfObjects(t *testing.T) {
	path := testhelpers.TempFile(t, "data.json",
		`[{"name": "ada", "age": 36}, {"age": 41, "name": "grace", "city": "dc"}]`)
	opts := options.New()

	s, err := JSONLoader{}.Load(path, opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Name != "data" {
		t.Errorf("sheet Name = %q, want data", s.Name)
	}
	if s.NRows() != 2 {
		t.Fatalf("NRows = %d, want 2", s.NRows())
	}

	// columns follow field order of first appearance
	want := []string{"name", "age", "city"}
	if got := colNames(s); !reflect.DeepEqual(got, want) {
		t.Errorf("columns = %v, want %v", got, want)
	}

	name, _ := s.ColumnByName("name")
	age, _ := s.ColumnByName("age")
	city, _ := s.ColumnByName("city")
	if name.Type != sheet.StringType || age.Type != sheet.IntType {
		t.Errorf("deduced types = %v, %v, want string, int", name.Type, age.Type)
	}
	if got := name.DisplayValue(s.Rows[1]); got != "grace" {
		t.Errorf("row 1 name = %q, want grace", got)
	}
	if got := age.TypedValue(s.Rows[0]); got != int64(36) {
		t.Errorf("row 0 age = %v (%T), want int64(36)", got, got)
	}
	// a field absent from a row reads as nil
	if got := city.Value(s.Rows[0]); got != nil {
		t.Errorf("row 0 city = %v, want nil", got)
	}
}

func TestJSONLoader_SingleObject(t *testing.T) {
	path := testhelpers.TempFile(t, "one.json", `{"k": "v", "n": 1.5}`)
	s, err := JSONLoader{}.Load(path, options.New())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.NRows() != 1 {
		t.Fatalf("NRows = %d, want 1", s.NRows())
	}
	n, _ := s.ColumnByName("n")
	if n.Type != sheet.FloatType {
		t.Errorf("n Type = %v, want float", n.Type)
	}
	if got := n.TypedValue(s.Rows[0]); got != 1.5 {
		t.Errorf("n = %v, want 1.5", got)
	}
}

func TestJSONLoader_ScalarRowsGetValueColumn(t *testing.T) {
	path := testhelpers.TempFile(t, "nums.json", `[1, 2, 3]`)
	s, err := JSONLoader{}.Load(path, options.New())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := colNames(s); !reflect.DeepEqual(got, []string{"value"}) {
		t.Errorf("columns = %v, want [value]", got)
	}
	v, _ := s.ColumnByName("value")
	if got := v.TypedValue(s.Rows[2]); got != int64(3) {
		t.Errorf("row 2 = %v, want int64(3)", got)
	}
}

func TestJSONLoader_NestedValuesKeptWhole(t *testing.T) {
	path := testhelpers.TempFile(t, "nested.json",
		`[{"id": 1, "tags": ["a", "b"], "meta": {"x": 2}}]`)
	s, err := JSONLoader{}.Load(path, options.New())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	tags, _ := s.ColumnByName("tags")
	if got, ok := tags.Value(s.Rows[0]).([]any); !ok || len(got) != 2 {
		t.Errorf("tags = %v, want two-element slice", tags.Value(s.Rows[0]))
	}
	meta, _ := s.ColumnByName("meta")
	rec, ok := meta.Value(s.Rows[0]).(*Record)
	if !ok {
		t.Fatalf("meta = %T, want *Record", meta.Value(s.Rows[0]))
	}
	if rec.Field("x") != int64(2) {
		t.Errorf("meta.x = %v, want int64(2)", rec.Field("x"))
	}
}

func TestJSONLoader_FallsBackToJSONLines(t *testing.T) {
	path := testhelpers.TempFile(t, "rows.json",
		"{\"a\": 1}\n{\"a\": 2}\n\n{\"a\": 3}\n")
	s, err := JSONLoader{}.Load(path, options.New())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.NRows() != 3 {
		t.Errorf("NRows = %d, want 3 (blank lines skipped)", s.NRows())
	}
}

func TestJSONLinesLoader_LineErrors(t *testing.T) {
	path := testhelpers.TempFile(t, "bad.jsonl", "{\"a\": 1}\nnot json\n")
	_, err := JSONLinesLoader{}.Load(path, options.New())
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("Load() error = %v, want line 2 error", err)
	}
}

func TestFieldColumn_Setter(t *testing.T) {
	path := testhelpers.TempFile(t, "edit.json", `[{"name": "old"}]`)
	s, err := JSONLoader{}.Load(path, options.New())
	if err != nil {
		t.Fatal(err)
	}
	name, _ := s.ColumnByName("name")
	if err := name.SetValue(s.Rows[0], "new"); err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}
	if got := name.DisplayValue(s.Rows[0]); got != "new" {
		t.Errorf("name = %q after set, want new", got)
	}
}

func TestSaveJSONL_RoundTrip(t *testing.T) {
	path := testhelpers.TempFile(t, "out.json", `[{"a": 1, "b": "x"}, {"a": 2, "b": "y"}]`)
	s, err := JSONLoader{}.Load(path, options.New())
	if err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(t.TempDir(), "out.jsonl")
	if err := SaveJSONL(out, s); err != nil {
		t.Fatalf("SaveJSONL() error = %v", err)
	}
	reloaded, err := JSONLinesLoader{}.Load(out, options.New())
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.NRows() != 2 {
		t.Fatalf("NRows = %d after round trip, want 2", reloaded.NRows())
	}
	a, _ := reloaded.ColumnByName("a")
	if got := a.TypedValue(reloaded.Rows[1]); got != int64(2) {
		t.Errorf("a = %v (%T), want int64(2)", got, got)
	}
}

func TestSaveJSON_ValidDocument(t *testing.T) {
	opts := options.New()
	s := testhelpers.PeopleSheet(t, opts, 2)

	out := filepath.Join(t.TempDir(), "people.json")
	if err := SaveJSON(out, s); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var doc []map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(doc) != 2 {
		t.Fatalf("output rows = %d, want 2", len(doc))
	}
	if doc[0]["name"] != "person0" {
		t.Errorf("row 0 name = %v, want person0", doc[0]["name"])
	}
}
