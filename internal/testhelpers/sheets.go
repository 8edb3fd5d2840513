// Package testhelpers provides common fixtures for tests across packages.
package testhelpers

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/gridsheet/gridsheet/internal/options"
	"github.com/gridsheet/gridsheet/internal/sheet"
)

// Person is a comparable test row.
type Person struct {
	Name string
	Age  int
	City string
}

// PersonColumns returns name/age/city columns over *Person rows.
func PersonColumns() []*sheet.Column {
	name := sheet.NewColumn("name", func(row sheet.Row) any { return row.(*Person).Name })
	name.Type = sheet.StringType
	name.Setter = func(row sheet.Row, v any) error {
		row.(*Person).Name = fmt.Sprint(v)
		return nil
	}

	age := sheet.NewColumn("age", func(row sheet.Row) any { return row.(*Person).Age })
	age.Type = sheet.IntType

	city := sheet.NewColumn("city", func(row sheet.Row) any { return row.(*Person).City })
	city.Type = sheet.StringType

	return []*sheet.Column{name, age, city}
}

// PeopleSheet returns a sheet with n generated people and name/age/city
// columns. Rows are *Person pointers so they are usable as map keys.
func PeopleSheet(t *testing.T, opts *options.Store, n int) *sheet.Sheet {
	t.Helper()
	s := sheet.New("people", opts, PersonColumns()...)
	rows := make([]sheet.Row, n)
	for i := range rows {
		rows[i] = &Person{
			Name: fmt.Sprintf("person%d", i),
			Age:  20 + i,
			City: fmt.Sprintf("city%d", i%3),
		}
	}
	s.SetRows(rows)
	return s
}

// WideSheet returns a sheet with ncols fixed-width columns and nrows rows
// of short string values, for layout tests.
func WideSheet(t *testing.T, opts *options.Store, ncols, nrows, width int) *sheet.Sheet {
	t.Helper()
	cols := make([]*sheet.Column, ncols)
	for i := range cols {
		i := i
		cols[i] = sheet.NewColumn(fmt.Sprintf("c%d", i), func(row sheet.Row) any {
			return fmt.Sprintf("v%d-%d", row.(int), i)
		})
		cols[i].Width = width
	}
	s := sheet.New("wide", opts, cols...)
	rows := make([]sheet.Row, nrows)
	for i := range rows {
		rows[i] = i
	}
	s.SetRows(rows)
	return s
}

// TempFile writes content to a file in a fresh temp dir and returns its path.
func TempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}
