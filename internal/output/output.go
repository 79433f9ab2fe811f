// Package output renders command results as aligned text or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
)

// Formatter handles output formatting (table or JSON).
type Formatter struct {
	Writer   io.Writer
	JSONMode bool
	// Color enables styling of titles and status lines. Tables are never styled.
	Color bool
}

// Field is one labelled value of a details view.
type Field struct {
	Label string
	Value string
}

// New creates a Formatter. Color is enabled when w is a terminal.
func New(w io.Writer, jsonMode bool) *Formatter {
	f := &Formatter{Writer: w, JSONMode: jsonMode}
	if file, ok := w.(*os.File); ok {
		f.Color = term.IsTerminal(int(file.Fd()))
	}
	return f
}

// Table outputs data as a formatted table or JSON array depending on mode.
// Headers define column names, rows contain the data.
func (f *Formatter) Table(headers []string, rows [][]string) error {
	if f.JSONMode {
		return f.tableAsJSON(headers, rows)
	}
	return f.tableAsText(headers, rows)
}

func (f *Formatter) tableAsText(headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(f.Writer, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintln(tw, strings.Join(headers, "\t")); err != nil {
		return err
	}

	separators := make([]string, len(headers))
	for i, h := range headers {
		separators[i] = strings.Repeat("-", len(h))
	}
	if _, err := fmt.Fprintln(tw, strings.Join(separators, "\t")); err != nil {
		return err
	}

	for _, row := range rows {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}

	return tw.Flush()
}

func (f *Formatter) tableAsJSON(headers []string, rows [][]string) error {
	result := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		obj := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(row) {
				obj[header] = row[i]
			} else {
				obj[header] = ""
			}
		}
		result = append(result, obj)
	}
	return f.JSON(result)
}

// Details prints labelled values under a title. In JSON mode raw is encoded
// instead, so scripts get the unformatted response.
func (f *Formatter) Details(title string, fields []Field, raw any) error {
	if f.JSONMode {
		return f.JSON(raw)
	}
	if title != "" {
		if _, err := fmt.Fprintln(f.Writer, f.style(titleStyle, title)); err != nil {
			return err
		}
	}
	tw := tabwriter.NewWriter(f.Writer, 0, 0, 2, ' ', 0)
	for _, fd := range fields {
		if _, err := fmt.Fprintf(tw, "%s:\t%s\n", fd.Label, fd.Value); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// Text prints free text such as an assistant answer. In JSON mode raw is
// encoded instead.
func (f *Formatter) Text(text string, raw any) error {
	if f.JSONMode {
		return f.JSON(raw)
	}
	_, err := fmt.Fprintln(f.Writer, text)
	return err
}

// Success prints a confirmation line. In JSON mode it prints {"message": msg}.
func (f *Formatter) Success(msg string) error {
	if f.JSONMode {
		return f.JSON(map[string]string{"message": msg})
	}
	_, err := fmt.Fprintln(f.Writer, f.style(successStyle, "✓ "+msg))
	return err
}

// JSON writes data as indented JSON.
func (f *Formatter) JSON(data any) error {
	encoder := json.NewEncoder(f.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func (f *Formatter) style(s lipgloss.Style, text string) string {
	if !f.Color {
		return text
	}
	return s.Render(text)
}
