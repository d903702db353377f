package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type replayResponse struct {
	Status string       `json:"status"`
	Data   ReplayResult `json:"data"`
	Error  *CLIError    `json:"error"`
}

func TestReplay_Script(t *testing.T) {
	path := writeFile(t, "actions.jsonl", sampleScript)

	out, _, err := execute(t, nil, "replay", path, "--ids", "counter")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Practice typing.  [todo-2]")
	assert.Contains(t, out, "Replayed 3 applied action(s)")
	assert.Contains(t, out, "Replay is deterministic")
}

func TestReplay_ScriptRandomIDs(t *testing.T) {
	path := writeFile(t, "actions.jsonl", `{"type":"ADD_NEW_TO_DO","value":"a"}
{"type":"ADD_NEW_TO_DO","value":"b"}
`)

	for _, ids := range []string{"uuid4", "uuid7"} {
		t.Run(ids, func(t *testing.T) {
			out, _, err := execute(t, nil, "replay", path, "--ids", ids, "--format", "json")
			require.NoError(t, err)

			var resp replayResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			assert.Equal(t, "ok", resp.Status)
			assert.True(t, resp.Data.Match)
			assert.Equal(t, 2, resp.Data.Applied)
			assert.Equal(t, resp.Data.ExpectedHash, resp.Data.ActualHash)
			assert.Len(t, resp.Data.Items, 2)
		})
	}
}

func TestReplay_Database(t *testing.T) {
	path := writeFile(t, "actions.jsonl", sampleScript)
	db := filepath.Join(t.TempDir(), "todo.db")

	_, _, err := execute(t, nil, "apply", path, "--db", db, "--ids", "counter")
	require.NoError(t, err)

	out, _, err := execute(t, nil, "replay", "--db", db, "--format", "json")
	require.NoError(t, err)

	var resp replayResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Data.Match)
	assert.Equal(t, 3, resp.Data.Applied)
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, "Practice typing.", resp.Data.Items[0].Text)
}

func TestReplay_NoInput(t *testing.T) {
	_, _, err := execute(t, nil, "replay")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "script argument or --db")
}

func TestReplay_MissingDatabase(t *testing.T) {
	_, _, err := execute(t, nil, "replay", "--db", filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "journal not found")
}
