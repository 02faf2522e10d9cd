package table

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentstation/enrollsync/pkg/constants"
	"github.com/agentstation/enrollsync/pkg/errors"
)

const utf8BOM = "\ufeff"

// ReadCSV reads a table whose first record is the header.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewParseError("csv", "", "missing header row", err)
	}
	if err != nil {
		return nil, errors.WrapParse("csv", "", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	t := New(header...)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WrapParse("csv", "", err)
		}
		t.Append(record...)
	}
	return t, nil
}

// ReadFile reads a CSV table from path.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		if pe, ok := err.(*errors.ParseError); ok {
			pe.File = path
		}
		return nil, err
	}
	return t, nil
}

// WriteCSV writes the header and rows as CSV.
func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.header); err != nil {
		return errors.WrapIO("write", "", err)
	}
	if err := writer.WriteAll(t.rows); err != nil {
		return errors.WrapIO("write", "", err)
	}
	return nil
}

// WriteFile writes the table as CSV to path, creating parent directories.
func (t *Table) WriteFile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return errors.WrapIO("create", dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	if err := t.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.WrapIO("close", path, err)
	}
	return nil
}
