package output

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"
	"time"
)

// Table is rendered as aligned columns.
type Table struct {
	Headers []string
	Rows    [][]string
}

// NewTable returns an empty table with headers.
func NewTable(headers ...string) *Table {
	return &Table{Headers: headers}
}

// Append adds a row.
func (t *Table) Append(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render writes the table with its header line.
func (t *Table) Render(w io.Writer) error {
	return t.render(w, true)
}

func (t *Table) render(w io.Writer, headers bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if headers && len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// records keys each row by its lower-cased header.
func (t *Table) records() []map[string]string {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Headers))
		for i, h := range t.Headers {
			if i < len(row) {
				rec[strings.ToLower(h)] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out
}

// Tabular is implemented by values that lay themselves out.
type Tabular interface {
	Table(wide bool) *Table
}

// TableFormatter renders lists as one row per element and single values
// as FIELD/VALUE pairs. Types it cannot lay out are written as JSON.
type TableFormatter struct {
	Wide      bool
	NoHeaders bool
}

// Format writes data as a table.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	t, ok := f.table(data)
	if !ok {
		return (&JSONFormatter{}).Format(w, data)
	}
	if t == nil {
		return nil
	}
	return t.render(w, !f.NoHeaders)
}

func (f *TableFormatter) table(data any) (*Table, bool) {
	switch d := data.(type) {
	case nil:
		return nil, true
	case *Table:
		return d, true
	case Table:
		return &d, true
	case Tabular:
		return d.Table(f.Wide), true
	}

	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, true
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return f.list(v), true
	case reflect.Map:
		t := NewTable("KEY", "VALUE")
		appendMap(t, v)
		return t, true
	case reflect.Struct:
		t := NewTable("FIELD", "VALUE")
		f.appendFields(t, "", v)
		return t, true
	}
	return nil, false
}

func (f *TableFormatter) list(v reflect.Value) *Table {
	if v.Len() == 0 {
		return &Table{}
	}

	elemType := v.Type().Elem()
	if elemType.Kind() == reflect.Pointer {
		elemType = elemType.Elem()
	}

	switch elemType.Kind() {
	case reflect.Struct:
		cols := f.columns(elemType)
		t := &Table{}
		for _, c := range cols {
			t.Headers = append(t.Headers, strings.ToUpper(c.name))
		}
		for i := 0; i < v.Len(); i++ {
			elem := reflect.Indirect(v.Index(i))
			row := make([]string, len(cols))
			if elem.IsValid() {
				for j, c := range cols {
					row[j] = cell(elem.Field(c.index))
				}
			}
			t.Rows = append(t.Rows, row)
		}
		return t

	case reflect.Map:
		t := NewTable("KEY", "VALUE")
		for i := 0; i < v.Len(); i++ {
			appendMap(t, reflect.Indirect(v.Index(i)))
		}
		return t
	}

	t := NewTable("VALUE")
	for i := 0; i < v.Len(); i++ {
		t.Append(cell(v.Index(i)))
	}
	return t
}

// appendFields flattens nested structs into dotted field names.
func (f *TableFormatter) appendFields(t *Table, prefix string, v reflect.Value) {
	for _, c := range f.columns(v.Type()) {
		fv := v.Field(c.index)
		if fv.Kind() == reflect.Struct && fv.Type() != timeType {
			f.appendFields(t, prefix+c.name+".", fv)
			continue
		}
		t.Append(prefix+c.name, cell(fv))
	}
}

func appendMap(t *Table, v reflect.Value) {
	if !v.IsValid() {
		return
	}
	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return cell(keys[i]) < cell(keys[j]) })
	for _, k := range keys {
		t.Append(cell(k), cell(v.MapIndex(k)))
	}
}

type column struct {
	index int
	name  string
}

// columns lists the visible fields of a struct type. A json tag names the
// column and "-" hides it. The table tag may rename the column, hide it
// with "-", or mark it "wide" so it shows only in wide mode.
func (f *TableFormatter) columns(t reflect.Type) []column {
	var cols []column
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name := snake(field.Name)
		if tag, _, _ := strings.Cut(field.Tag.Get("json"), ","); tag == "-" {
			continue
		} else if tag != "" {
			name = tag
		}

		hidden := false
		for i, opt := range strings.Split(field.Tag.Get("table"), ",") {
			switch {
			case opt == "-":
				hidden = true
			case opt == "wide":
				hidden = hidden || !f.Wide
			case i == 0 && opt != "":
				name = opt
			}
		}
		if !hidden {
			cols = append(cols, column{index: i, name: name})
		}
	}
	return cols
}

var timeType = reflect.TypeOf(time.Time{})

// cell renders one value. Empty values print as "-".
func cell(v reflect.Value) string {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return ""
	}

	if v.Type() == timeType {
		ts := v.Interface().(time.Time)
		if ts.IsZero() {
			return "-"
		}
		return ts.Format("2006-01-02 15:04")
	}

	switch v.Kind() {
	case reflect.String:
		if v.Len() == 0 {
			return "-"
		}
		return v.String()
	case reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%.2f", v.Float())
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return "-"
		}
		return fmt.Sprintf("[%d items]", v.Len())
	case reflect.Map:
		if v.Len() == 0 {
			return "-"
		}
		return fmt.Sprintf("{%d keys}", v.Len())
	}
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v.Interface())
}

// snake turns a Go field name into snake_case: UserID is user_id and
// HTTPServer is http_server.
func snake(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		upper := r >= 'A' && r <= 'Z'
		if upper && i > 0 {
			prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if prevLower || (nextLower && runes[i-1] >= 'A' && runes[i-1] <= 'Z') {
				b.WriteByte('_')
			}
		}
		if upper {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
