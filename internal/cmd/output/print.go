package output

import (
	"io"
)

// Print writes data to w in format. Table output uses tableData when it is
// set and falls back to reflecting over data otherwise; json and yaml always
// encode data itself.
func Print(w io.Writer, format Format, data any, tableData *Data) error {
	formatter := NewFormatter(format)
	if _, ok := formatter.(tableFormatter); ok && tableData != nil {
		return formatter.Format(w, *tableData)
	}
	return formatter.Format(w, data)
}
