// Package output renders lexe command results for people and for scripts.
package output

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Format selects how command results are printed.
type Format string

// Output formats accepted by --output and output.default_format.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatAuto Format = "auto"
)

// ParseFormat maps a flag or config value to a Format. Anything it does not
// recognize means auto.
func ParseFormat(s string) Format {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatText:
		return f
	default:
		return FormatAuto
	}
}

// Resolve picks a concrete format for w. Auto is text on a terminal and
// JSON everywhere else, so piped output stays machine readable.
func (f Format) Resolve(w io.Writer) Format {
	if f != FormatAuto {
		return f
	}
	if file, ok := w.(*os.File); ok && term.IsTerminal(int(file.Fd())) { //nolint:gosec // G115: Fd fits in int on supported platforms
		return FormatText
	}
	return FormatJSON
}

// Formatter writes command results in a fixed format.
type Formatter struct {
	format Format
	w      io.Writer
}

// NewFormatter resolves format against w and returns a Formatter for it.
func NewFormatter(format Format, w io.Writer) *Formatter {
	return &Formatter{format: format.Resolve(w), w: w}
}

// Format returns the resolved format. It is never FormatAuto.
func (f *Formatter) Format() Format {
	return f.format
}

// IsJSON reports whether results are printed as JSON.
func (f *Formatter) IsJSON() bool {
	return f.format == FormatJSON
}

// To returns a Formatter with the same format writing to w.
func (f *Formatter) To(w io.Writer) *Formatter {
	return &Formatter{format: f.format, w: w}
}

// Emit writes v as JSON, or calls text in text mode. A nil text always
// falls back to JSON.
func (f *Formatter) Emit(v any, text func(w io.Writer) error) error {
	if f.format == FormatJSON || text == nil {
		return WriteJSON(f.w, v)
	}
	return text(f.w)
}

// WriteJSON encodes v as two-space indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
