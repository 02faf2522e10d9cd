// Package output renders command results as a table, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Format names an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat accepts table, json or yaml in any case. The empty string
// means "detect".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatYAML, "":
		return f, nil
	}
	return "", fmt.Errorf("invalid format %q: must be one of: table, json, yaml", s)
}

// DetectFormat returns the explicit format when it parses, else a table for
// terminals and JSON for pipes.
func DetectFormat(explicit string) Format {
	if f, err := ParseFormat(explicit); err == nil && f != "" {
		return f
	}
	fd := os.Stdout.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return FormatTable
	}
	return FormatJSON
}

// Formatter writes data to w.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// NewFormatter returns the formatter for format. Unknown formats get a table.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return jsonFormatter{indent: "  "}
	case FormatYAML:
		return yamlFormatter{}
	}
	return tableFormatter{}
}

type jsonFormatter struct {
	indent string
}

func (f jsonFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", f.indent)
	return enc.Encode(data)
}

type yamlFormatter struct{}

func (yamlFormatter) Format(w io.Writer, data any) error {
	b, err := yaml.MarshalWithOptions(data, yaml.Indent(2), yaml.IndentSequence(false))
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Align is the alignment of a table column.
type Align int

const (
	AlignDefault Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

var twAlign = map[Align]tw.Align{
	AlignDefault: tw.Skip,
	AlignLeft:    tw.AlignLeft,
	AlignCenter:  tw.AlignCenter,
	AlignRight:   tw.AlignRight,
}

// Data is a prepared table.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // optional, one per column
}

// tableFormatter renders Data directly. Anything else is reflected into
// Data when it is a struct or a slice of structs, and printed as JSON
// otherwise.
type tableFormatter struct{}

func (tableFormatter) Format(w io.Writer, data any) error {
	if d, ok := data.(Data); ok {
		return renderTable(w, d)
	}
	if d, ok := reflectTable(reflect.ValueOf(data)); ok {
		return renderTable(w, d)
	}
	return jsonFormatter{indent: "  "}.Format(w, data)
}

func renderTable(w io.Writer, d Data) error {
	var cfg tablewriter.Config
	if len(d.ColumnAlignment) > 0 {
		align := make([]tw.Align, len(d.ColumnAlignment))
		for i, a := range d.ColumnAlignment {
			align[i] = twAlign[a]
		}
		cfg.Header.Alignment = tw.CellAlignment{PerColumn: align}
		cfg.Row.Alignment = tw.CellAlignment{PerColumn: align}
	}
	t := tablewriter.NewTable(w, tablewriter.WithConfig(cfg))

	if len(d.Headers) > 0 {
		t.Header(cells(d.Headers)...)
	}
	for _, row := range d.Rows {
		if err := t.Append(cells(row)...); err != nil {
			return err
		}
	}
	return t.Render()
}

func cells(s []string) []any {
	out := make([]any, len(s))
	for i, c := range s {
		out[i] = c
	}
	return out
}

// reflectTable lays a slice of structs out one struct per row, and a single
// struct as Property/Value pairs.
func reflectTable(v reflect.Value) (Data, bool) {
	switch {
	case v.Kind() == reflect.Struct:
		d := Data{Headers: []string{"Property", "Value"}}
		for i := range v.NumField() {
			d.Rows = append(d.Rows, []string{columnName(v.Type().Field(i)), fmt.Sprint(v.Field(i).Interface())})
		}
		return d, true
	case v.Kind() == reflect.Slice && v.Len() > 0 && v.Index(0).Kind() == reflect.Struct:
		typ := v.Index(0).Type()
		var d Data
		for i := range typ.NumField() {
			d.Headers = append(d.Headers, columnName(typ.Field(i)))
		}
		for i := range v.Len() {
			elem := v.Index(i)
			row := make([]string, elem.NumField())
			for j := range row {
				row[j] = fmt.Sprint(elem.Field(j).Interface())
			}
			d.Rows = append(d.Rows, row)
		}
		return d, true
	}
	return Data{}, false
}

// columnName title-cases the json name of f, or returns the Go name when
// the field has no json tag.
func columnName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}
