// Package output provides styling helpers for terminal output.
// Styling degrades to plain text when the writer is not a color terminal.
package output

import (
	"io"

	"github.com/muesli/termenv"
)

// ANSI palette shared by the account summary and the telemetry report.
const (
	red     = "1"
	yellow  = "3"
	magenta = "5"
)

// Styles provides styled output helpers for the CLI.
type Styles struct {
	output *termenv.Output
}

// NewStyles creates a new Styles instance for the given writer.
func NewStyles(w io.Writer) *Styles {
	return &Styles{
		output: termenv.NewOutput(w),
	}
}

// Profile reports the color profile detected for the writer.
func (s *Styles) Profile() termenv.Profile {
	return s.output.Profile
}

func (s *Styles) paint(text, color string, bold bool) termenv.Style {
	style := s.output.String(text)
	if color != "" {
		style = style.Foreground(s.output.Color(color))
	}
	if bold {
		style = style.Bold()
	}
	return style
}

// Client returns a styled client id.
func (s *Styles) Client(text string) string {
	return s.paint(text, yellow, false).String()
}

// Amount returns a styled amount or counter value.
func (s *Styles) Amount(text string) string {
	return s.paint(text, magenta, false).String()
}

// NegativeAmount returns a styled amount below zero, which a dispute can
// leave behind in the available column.
func (s *Styles) NegativeAmount(text string) string {
	return s.paint(text, red, false).String()
}

// Locked returns a styled marker for a frozen account.
func (s *Styles) Locked(text string) string {
	return s.paint(text, red, true).String()
}

// Keyword returns bold text, used for headers.
func (s *Styles) Keyword(text string) string {
	return s.paint(text, "", true).String()
}

// Dim returns dimmed text (for secondary information).
func (s *Styles) Dim(text string) string {
	return s.output.String(text).Faint().String()
}

// Timing returns a styled timing string: red for slow operations, dimmed otherwise.
func (s *Styles) Timing(text string, slow bool) string {
	if slow {
		return s.paint(text, red, false).String()
	}
	return s.Dim(text)
}
