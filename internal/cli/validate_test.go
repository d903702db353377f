package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validateResponse struct {
	Status string           `json:"status"`
	Data   ValidationResult `json:"data"`
	Error  *CLIError        `json:"error"`
}

func TestValidate_ShippedScenarios(t *testing.T) {
	out, _, err := execute(t, nil, "validate", harnessScenarios)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ add_two_items.yaml")
	assert.Contains(t, out, "✓ invalid_payload.yaml")
}

func TestValidate_InvalidFile(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"good.yaml": passingScenario,
		"typo.yaml": `
name: typo
description: "misspelled key"
steps:
  - add: "x"
asserts:
  - type: unique_ids
`,
	})

	out, _, err := execute(t, nil, "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✓ good.yaml")
	assert.Contains(t, out, "✗ typo.yaml")
}

func TestValidate_JSON(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"good.yaml": passingScenario,
		"bad.yaml":  "name: bad\ndescription: \"d\"\nsteps: []\nassertions: []\n",
	})

	out, _, err := execute(t, nil, "validate", dir, "--format", "json")
	require.Error(t, err)

	var resp validateResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Files, 2)
	assert.Equal(t, "bad.yaml", resp.Data.Files[0].File)
	assert.False(t, resp.Data.Files[0].Valid)
	assert.NotEmpty(t, resp.Data.Files[0].Error)
	assert.True(t, resp.Data.Files[1].Valid)
}

func TestValidate_NoFiles(t *testing.T) {
	out, _, err := execute(t, nil, "validate", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "no scenario files found")
}

func TestValidate_MissingDir(t *testing.T) {
	_, _, err := execute(t, nil, "validate", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
