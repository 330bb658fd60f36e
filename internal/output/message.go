package output

import (
	"fmt"
	"io"
)

// Warn prints a warning to w with a warning prefix.
func Warn(w io.Writer, msg string) {
	_, _ = fmt.Fprintln(w, "warning: "+msg)
}
