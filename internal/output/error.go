package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	lexeerr "github.com/mrz1836/lexe/pkg/errors"
)

// ErrorOutput represents a structured error for JSON output.
type ErrorOutput struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Kind       string            `json:"kind"`
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
	Retryable  bool              `json:"retryable"`
	ExitCode   int               `json:"exit_code"`
}

// NewErrorDetail flattens err for display.
func NewErrorDetail(err error) ErrorDetail {
	var le *lexeerr.LexeError
	if errors.As(err, &le) {
		d := ErrorDetail{
			Kind:       string(le.Kind),
			Code:       le.Code,
			Message:    le.Message,
			Details:    le.Details,
			Suggestion: le.Suggestion,
			Retryable:  le.Retryable,
			ExitCode:   le.ExitCode,
		}
		if le.Cause != nil {
			d.Cause = le.Cause.Error()
		}
		return d
	}

	return ErrorDetail{
		Kind:     string(lexeerr.KindGeneral),
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		ExitCode: lexeerr.ExitGeneral,
	}
}

// FormatError formats an error for display.
func FormatError(w io.Writer, err error, format Format) error {
	if err == nil {
		return nil
	}

	if format == FormatJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(ErrorOutput{Error: NewErrorDetail(err)})
	}
	return formatErrorText(w, NewErrorDetail(err))
}

// formatErrorText outputs error in text format. Details are sorted so the
// output is stable.
func formatErrorText(w io.Writer, d ErrorDetail) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Error: %s\n", d.Message))
	if d.Cause != "" {
		sb.WriteString(fmt.Sprintf("Cause: %s\n", d.Cause))
	}

	if len(d.Details) > 0 {
		keys := make([]string, 0, len(d.Details))
		for k := range d.Details {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		sb.WriteString("\nDetails:\n")
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", k, d.Details[k]))
		}
	}

	if d.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("\nSuggestion: %s\n", d.Suggestion))
	}
	if d.Retryable {
		sb.WriteString("\nThis error is temporary; retrying may succeed.\n")
	}

	_, writeErr := w.Write([]byte(sb.String()))
	return writeErr
}

// FormatSuccess formats a success message.
func FormatSuccess(w io.Writer, message string, format Format) error {
	if format == FormatJSON {
		output := map[string]string{"status": "success", "message": message}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	}
	_, err := fmt.Fprintln(w, message)
	return err
}
