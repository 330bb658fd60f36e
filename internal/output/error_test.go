package output_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/lexe/internal/output"
	lexeerr "github.com/mrz1836/lexe/pkg/errors"
)

func TestFormatError_Nil(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, output.FormatError(&buf, nil, output.FormatJSON))
	assert.Empty(t, buf.String())
}

func TestFormatError_LexeErrorJSON(t *testing.T) {
	t.Parallel()
	err := lexeerr.WithSuggestion(
		lexeerr.WithDetails(lexeerr.WithCause(lexeerr.ErrSyncUnreachable, errors.New("dial tcp: refused")),
			map[string]string{"cursor": "5"}),
		"check your connection",
	)

	var buf bytes.Buffer
	require.NoError(t, output.FormatError(&buf, err, output.FormatJSON))

	var out output.ErrorOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "sync", out.Error.Kind)
	assert.Equal(t, lexeerr.Code(err), out.Error.Code)
	assert.Equal(t, "5", out.Error.Details["cursor"])
	assert.Equal(t, "check your connection", out.Error.Suggestion)
	assert.Equal(t, "dial tcp: refused", out.Error.Cause)
	assert.True(t, out.Error.Retryable)
	assert.Equal(t, lexeerr.ExitCode(err), out.Error.ExitCode)
}

func TestFormatError_LexeErrorText(t *testing.T) {
	t.Parallel()
	err := lexeerr.WithSuggestion(
		lexeerr.WithDetails(lexeerr.ErrStoreCorrupt, map[string]string{"b": "2", "a": "1"}),
		"delete the local data and sync again",
	)

	var buf bytes.Buffer
	require.NoError(t, output.FormatError(&buf, err, output.FormatText))

	text := buf.String()
	assert.Contains(t, text, "Error: ")
	assert.Contains(t, text, "Details:\n  a: 1\n  b: 2\n")
	assert.Contains(t, text, "Suggestion: delete the local data and sync again")
	assert.NotContains(t, text, "temporary")
}

func TestFormatError_GenericError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, output.FormatError(&buf, errors.New("plain failure"), output.FormatText))
	assert.Equal(t, "Error: plain failure\n", buf.String())

	buf.Reset()
	require.NoError(t, output.FormatError(&buf, errors.New("plain failure"), output.FormatJSON))
	var out output.ErrorOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "GENERAL_ERROR", out.Error.Code)
	assert.Equal(t, "general", out.Error.Kind)
	assert.Equal(t, lexeerr.ExitGeneral, out.Error.ExitCode)
}

func TestFormatSuccess(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, output.FormatSuccess(&buf, "saved", output.FormatText))
	assert.Equal(t, "saved\n", buf.String())

	buf.Reset()
	require.NoError(t, output.FormatSuccess(&buf, "saved", output.FormatJSON))
	assert.JSONEq(t, `{"status":"success","message":"saved"}`, buf.String())
}

func TestWarn(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	output.Warn(&buf, "LEXE_GATEWAY_URL uses plain http")
	assert.Equal(t, "warning: LEXE_GATEWAY_URL uses plain http\n", buf.String())
}
