package loader

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gridsheet/gridsheet/internal/options"
	"github.com/gridsheet/gridsheet/internal/sheet"
)

// Record is one loaded row: a field map plus the key order it appeared in.
// Rows are handed to sheets as *Record pointers so they stay comparable.
type Record struct {
	keys   []string
	fields map[string]any
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{fields: make(map[string]any)}
}

// Keys returns the field names in first-appearance order.
func (r *Record) Keys() []string { return r.keys }

// Field returns the value for a field name, or nil if absent.
func (r *Record) Field(name string) any { return r.fields[name] }

// SetField sets a field, tracking first appearance order.
func (r *Record) SetField(name string, v any) {
	if _, ok := r.fields[name]; !ok {
		r.keys = append(r.keys, name)
	}
	r.fields[name] = v
}

// JSONLoader loads a file holding a JSON array of objects (or a single
// object, which becomes a one-row sheet). If the file isn't valid JSON it
// retries as JSON lines.
type JSONLoader struct{}

// Name implements Loader.
func (JSONLoader) Name() string { return "json" }

// Load implements Loader.
func (JSONLoader) Load(path string, opts *options.Store) (*sheet.Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	name := sheetName(path)
	s, err := parseJSON(name, data, opts)
	if err != nil {
		// not a single JSON document; retry line-by-line
		return parseJSONLines(name, data, opts)
	}
	return s, nil
}

// JSONLinesLoader loads a file with one JSON object per line.
type JSONLinesLoader struct{}

// Name implements Loader.
func (JSONLinesLoader) Name() string { return "jsonl" }

// Load implements Loader.
func (JSONLinesLoader) Load(path string, opts *options.Store) (*sheet.Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseJSONLines(sheetName(path), data, opts)
}

func sheetName(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}

func parseJSON(name string, data []byte, opts *options.Store) (*sheet.Sheet, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		// concatenated documents are JSON lines, not a single document
		return nil, fmt.Errorf("trailing data after JSON document")
	}

	b := newSheetBuilder(name, opts)
	switch doc := v.(type) {
	case []any:
		for _, item := range doc {
			b.addRow(item)
		}
	case *Record:
		b.addRow(doc)
	default:
		return nil, fmt.Errorf("top-level JSON value is %T, want object or array", v)
	}
	return b.sheet(), nil
}

func parseJSONLines(name string, data []byte, opts *options.Store) (*sheet.Sheet, error) {
	b := newSheetBuilder(name, opts)
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		v, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineno, err)
		}
		b.addRow(v)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return b.sheet(), nil
}

// decodeValue decodes one JSON value from the token stream, preserving
// object key order (encoding/json map decoding would lose it, and column
// order follows field order of first appearance).
func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeFrom(dec, tok)
}

func decodeFrom(dec *json.Decoder, tok json.Token) (any, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			rec := NewRecord()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T", keyTok)
				}
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				rec.SetField(key, v)
			}
			if _, err := dec.Token(); err != nil { // closing brace
				return nil, err
			}
			return rec, nil
		case '[':
			var items []any
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				items = append(items, v)
			}
			if _, err := dec.Token(); err != nil { // closing bracket
				return nil, err
			}
			return items, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return tok, nil // string, bool, nil
	}
}

// sheetBuilder accumulates rows, adding a column the first time a field
// name appears, typed from that first value.
type sheetBuilder struct {
	s        *sheet.Sheet
	colnames map[string]*sheet.Column
	rows     []sheet.Row
}

func newSheetBuilder(name string, opts *options.Store) *sheetBuilder {
	return &sheetBuilder{
		s:        sheet.New(name, opts),
		colnames: make(map[string]*sheet.Column),
	}
}

func (b *sheetBuilder) addRow(v any) {
	rec, ok := v.(*Record)
	if !ok {
		// scalar or array row; a single value column covers it
		rec = NewRecord()
		rec.SetField("value", v)
	}
	for _, k := range rec.Keys() {
		if _, seen := b.colnames[k]; !seen {
			col := fieldColumn(k)
			col.Type = deduceType(rec.Field(k))
			b.colnames[k] = col
			b.s.AddColumn(col)
		}
	}
	b.rows = append(b.rows, rec)
}

func (b *sheetBuilder) sheet() *sheet.Sheet {
	b.s.SetRows(b.rows)
	return b.s
}

// fieldColumn returns a column reading and writing the named record field.
func fieldColumn(name string) *sheet.Column {
	col := sheet.NewColumn(name, func(row sheet.Row) any {
		if rec, ok := row.(*Record); ok {
			return rec.Field(name)
		}
		return nil
	})
	col.Setter = func(row sheet.Row, v any) error {
		rec, ok := row.(*Record)
		if !ok {
			return fmt.Errorf("row is %T, not a record", row)
		}
		rec.SetField(name, v)
		return nil
	}
	return col
}

func deduceType(v any) sheet.Type {
	switch v.(type) {
	case int64:
		return sheet.IntType
	case float64:
		return sheet.FloatType
	case string:
		return sheet.StringType
	default:
		return sheet.AnyType
	}
}

// SaveJSON writes the sheet's visible columns as a JSON array of objects.
func SaveJSON(path string, s *sheet.Sheet) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.WriteString("[\n"); err != nil {
		return err
	}
	cols := s.VisibleCols()
	for i, row := range s.Rows {
		if i > 0 {
			if _, err := w.WriteString(",\n"); err != nil {
				return err
			}
		}
		if err := encodeRow(w, cols, row, false); err != nil {
			return err
		}
	}
	if _, err := w.WriteString("\n]\n"); err != nil {
		return err
	}
	return w.Flush()
}

// SaveJSONL writes the sheet's visible columns as one JSON object per line.
func SaveJSONL(path string, s *sheet.Sheet) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	cols := s.VisibleCols()
	for _, row := range s.Rows {
		if err := encodeRow(w, cols, row, true); err != nil {
			return err
		}
	}
	return w.Flush()
}

func encodeRow(w *bufio.Writer, cols []*sheet.Column, row sheet.Row, newline bool) error {
	obj := make(map[string]any, len(cols))
	for _, c := range cols {
		tv := c.TypedValue(row)
		if err, isErr := tv.(error); isErr {
			tv = err.Error()
		}
		obj[c.Name] = tv
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if newline {
		return w.WriteByte('\n')
	}
	return nil
}
