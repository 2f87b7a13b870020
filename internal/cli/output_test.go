package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitError_Error(t *testing.T) {
	plain := NewExitError(ExitFailure, "gate failed")
	assert.Equal(t, "gate failed", plain.Error())

	wrapped := WrapExitError(ExitCommandError, "opening ledger", errors.New("no such file"))
	assert.Equal(t, "opening ledger: no such file", wrapped.Error())
	assert.EqualError(t, wrapped.Unwrap(), "no such file")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(NewExitError(ExitFailure, "x")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "x")))

	// ExitError found through a wrapping chain.
	chained := fmt.Errorf("outer: %w", WrapExitError(ExitCommandError, "inner", errors.New("boom")))
	assert.Equal(t, ExitCommandError, GetExitCode(chained))

	// Anything else is a compliance failure.
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
}

func TestOutputFormatter_SuccessJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Success(map[string]interface{}{"requirements": 3}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), data["requirements"])
}

func TestOutputFormatter_SuccessText(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, f.SuccessText(map[string]interface{}{"path": "plan.json"}, "Plan written to plan.json"))
	assert.Equal(t, "Plan written to plan.json\n", buf.String())

	// JSON mode ignores the text rendering.
	buf.Reset()
	f.Format = "json"
	require.NoError(t, f.SuccessText(map[string]interface{}{"path": "plan.json"}, "Plan written to plan.json"))
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestOutputFormatter_ErrorJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Error("L004", "document directory not found", "docs/"))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "L004", resp.Error.Code)
	assert.Equal(t, "document directory not found", resp.Error.Message)
	assert.Equal(t, "docs/", resp.Error.Details)
}

func TestOutputFormatter_ErrorText(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, f.Error("Q001", "pass rate below gate", "7/10 scenarios"))
	assert.Equal(t, "Error [Q001]: pass rate below gate\n", buf.String())

	// Details show only in verbose mode.
	buf.Reset()
	f.Verbose = true
	require.NoError(t, f.Error("Q001", "pass rate below gate", "7/10 scenarios"))
	assert.Equal(t, "Error [Q001]: pass rate below gate\nDetails: 7/10 scenarios\n", buf.String())
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	var out, errOut bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &out, ErrWriter: &errOut}

	f.VerboseLog("loaded %d entities", 2)
	assert.Empty(t, out.String())
	assert.Empty(t, errOut.String())

	f.Verbose = true
	f.VerboseLog("loaded %d entities", 2)
	assert.Empty(t, out.String(), "diagnostics never mix into primary output")
	assert.Equal(t, "loaded 2 entities\n", errOut.String())

	// Without a dedicated error writer the main writer is used.
	solo := &OutputFormatter{Format: "text", Writer: &out, Verbose: true}
	solo.VerboseLog("fallback")
	assert.Equal(t, "fallback\n", out.String())
}

func TestOutputFormatter_GetErrWriter(t *testing.T) {
	var out, errOut bytes.Buffer
	f := &OutputFormatter{Writer: &out, ErrWriter: &errOut}
	assert.Same(t, &errOut, f.GetErrWriter().(*bytes.Buffer))

	f.ErrWriter = nil
	assert.Same(t, &out, f.GetErrWriter().(*bytes.Buffer))
}
