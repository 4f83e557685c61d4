package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/robinvdvleuten/simledger/loader"
)

var (
	errCaretStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	errContextStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})
)

// contextLines is the number of rows shown before the offending row.
const contextLines = 1

// ErrorRenderer renders errors with terminal styling and source context.
type ErrorRenderer struct {
	source []byte
	lines  []string
}

// NewErrorRenderer creates a renderer with source content for context.
func NewErrorRenderer(source []byte) *ErrorRenderer {
	r := &ErrorRenderer{source: source}
	if source != nil {
		r.lines = strings.Split(strings.ReplaceAll(string(source), "\r\n", "\n"), "\n")
	}
	return r
}

// Render formats a single error with styling and context.
func (r *ErrorRenderer) Render(err error) string {
	if e, ok := err.(interface {
		GetPosition() loader.Position
		Error() string
	}); ok && r.source != nil {
		return r.renderWithSourceContext(e.GetPosition(), e.Error())
	}

	return err.Error()
}

// RenderAll formats multiple errors, separating them with blank lines.
func (r *ErrorRenderer) RenderAll(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	var buf strings.Builder
	for i, err := range errs {
		buf.WriteString(r.Render(err))

		if i < len(errs)-1 {
			buf.WriteString("\n\n")
		}
	}

	return buf.String()
}

func (r *ErrorRenderer) renderWithSourceContext(pos loader.Position, message string) string {
	if pos.Line < 1 || pos.Line > len(r.lines) {
		return message
	}

	var buf strings.Builder

	buf.WriteString(errorStyle.Render(message))
	buf.WriteString("\n\n")

	startLine := pos.Line - 1 - contextLines
	if startLine < 0 {
		startLine = 0
	}

	for i := startLine; i < pos.Line; i++ {
		buf.WriteString("   ")
		buf.WriteString(errContextStyle.Render(r.lines[i]))
		buf.WriteByte('\n')
	}

	if pos.Column > 0 {
		buf.WriteString("   ")
		buf.WriteString(strings.Repeat(" ", pos.Column-1))
		buf.WriteString(errCaretStyle.Render("^"))
		buf.WriteByte('\n')
	}

	return buf.String()
}
