package cmdlog

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// header is the persisted record layout: the entry fields plus an
// undo-marker count in place of the callbacks, which are not serializable.
var header = []string{"sheet", "col", "row", "longname", "input", "keystrokes", "comment", "undo"}

// fields returns the persisted form of an entry.
func fields(e *Entry) []string {
	return []string{
		e.Sheet, e.Col, e.Row, e.Longname, e.Input, e.Keystrokes, e.Comment,
		strconv.Itoa(len(e.Undo)),
	}
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "\t", `\t`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}

func unescape(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 't':
				sb.WriteByte('\t')
				i++
				continue
			case 'n':
				sb.WriteByte('\n')
				i++
				continue
			case '\\':
				sb.WriteByte('\\')
				i++
				continue
			}
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

func writeRecord(w *bufio.Writer, cols []string) error {
	for i, c := range cols {
		if i > 0 {
			if err := w.WriteByte('\t'); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(escape(c)); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

// WriteFile persists the log as a tab-separated file, one record per
// logged action.
func WriteFile(path string, l *Log) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create cmdlog file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := writeRecord(w, header); err != nil {
		return err
	}
	for _, e := range l.Entries {
		if err := writeRecord(w, fields(e)); err != nil {
			return err
		}
	}
	return w.Flush()
}

// AppendEntry appends one record to the history file, writing the header
// first if the file doesn't exist yet.
func AppendEntry(path string, e *Entry) error {
	_, statErr := os.Stat(path)
	needHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open histfile: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if needHeader {
		if err := writeRecord(w, header); err != nil {
			return err
		}
	}
	if err := writeRecord(w, fields(e)); err != nil {
		return err
	}
	return w.Flush()
}

// ReadFile loads a persisted log. Records missing a longname are kept:
// replay resolves them by raw keystroke sequence instead.
func ReadFile(path string) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cmdlog file: %w", err)
	}
	defer f.Close()

	l := &Log{Name: path}
	sc := bufio.NewScanner(f)
	first := true
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		for i := range cols {
			cols[i] = unescape(cols[i])
		}
		if first {
			first = false
			if len(cols) > 0 && cols[0] == "sheet" {
				continue // header row
			}
		}
		e := &Entry{}
		get := func(i int) string {
			if i < len(cols) {
				return cols[i]
			}
			return ""
		}
		e.Sheet = get(0)
		e.Col = get(1)
		e.Row = get(2)
		e.Longname = get(3)
		e.Input = get(4)
		e.Keystrokes = get(5)
		e.Comment = get(6)
		l.Append(e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan cmdlog file: %w", err)
	}
	return l, nil
}
