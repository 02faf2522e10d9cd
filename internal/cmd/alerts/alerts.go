// Package alerts prints operator-facing notices, such as missing reference
// data or merge warnings, next to the command output.
package alerts

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Level represents the severity of an alert.
type Level int

const (
	// LevelError indicates a failure the operator must fix.
	LevelError Level = iota
	// LevelWarning indicates data that needs a second look.
	LevelWarning
	// LevelInfo indicates general informational messages.
	LevelInfo
)

// String returns the string representation of the alert level.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelInfo:
		return "info"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}

func (l Level) color() string {
	switch l {
	case LevelError:
		return "\033[31m"
	case LevelWarning:
		return "\033[33m"
	default:
		return "\033[36m"
	}
}

const reset = "\033[0m"

// Alert is one notice with optional detail lines.
type Alert struct {
	Level   Level
	Message string
	Details []string
}

// NewError creates a new error alert.
func NewError(message string) *Alert {
	return &Alert{Level: LevelError, Message: message}
}

// NewWarning creates a new warning alert.
func NewWarning(message string) *Alert {
	return &Alert{Level: LevelWarning, Message: message}
}

// WithDetails adds detail lines to the alert.
func (a *Alert) WithDetails(details ...string) *Alert {
	a.Details = append(a.Details, details...)
	return a
}

// Writer writes alerts to an io.Writer.
type Writer struct {
	w     io.Writer
	color bool
}

// NewWriter returns a Writer on w. Color is used when w is a terminal and
// NO_COLOR is unset.
func NewWriter(w io.Writer) *Writer {
	color := false
	if f, ok := w.(*os.File); ok && os.Getenv("NO_COLOR") == "" {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Writer{w: w, color: color}
}

// Write prints a.
func (w *Writer) Write(a *Alert) error {
	var b strings.Builder
	label := a.Level.String()
	if w.color {
		label = a.Level.color() + label + reset
	}
	fmt.Fprintf(&b, "%s: %s\n", label, a.Message)
	for _, d := range a.Details {
		fmt.Fprintf(&b, "  - %s\n", d)
	}
	_, err := io.WriteString(w.w, b.String())
	return err
}
