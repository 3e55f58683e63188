package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/ascension-log/pkg/summary"
)

const testYAML = `name: Sample Run
start_date: "2026-10-01"
day_changes:
  - {day: 1, turn: 0}
  - {day: 2, turn: 2}
turns:
  - {turn: 1, area: The Spooky Forest, encounter: spooky vampire, type: combat, stats: {muscle: 4}}
  - {turn: 2, area: The Spooky Forest, encounter: Arboreal Respite, type: noncombat}
  - {turn: 3, area: The Haunted Kitchen, encounter: skeletal sommelier, type: combat, meat: {encounter: 30}}
  - {turn: 4, area: The Haunted Kitchen, encounter: zombie chef, type: combat}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestValidate(t *testing.T) {
	path := writeFile(t, "run.yaml", testYAML)

	out, _, err := run(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "6 records accepted, 0 rejected")
}

func TestValidate_RejectedRecords(t *testing.T) {
	path := writeFile(t, "run.jsonl", strings.Join([]string{
		`{"kind":"day_change","day":1,"turn":0}`,
		`{"kind":"turn","turn":1,"area":"The Spooky Forest"}`,
		`{"kind":"turn","turn":0,"area":"The Spooky Forest"}`,
		`garbage`,
	}, "\n"))

	out, _, err := run(t, "validate", path)
	require.Error(t, err)
	assert.Contains(t, out, "line 4")
	assert.Contains(t, out, "2 records accepted, 2 rejected")
}

func TestSummary(t *testing.T) {
	path := writeFile(t, "run.yml", testYAML)

	out, _, err := run(t, "summary", path)
	require.NoError(t, err)

	var sum summary.LogSummary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	assert.Equal(t, 4, sum.Turns.Total)
	assert.Equal(t, 3, sum.Turns.Combat)
	assert.Len(t, sum.Days, 2)
}

func TestRundown(t *testing.T) {
	path := writeFile(t, "run.yaml", testYAML)

	out, _, err := run(t, "rundown", path, "--format", "bbcode")
	require.NoError(t, err)
	assert.Contains(t, out, "The Spooky Forest")
	assert.Contains(t, out, "The Haunted Kitchen")
	assert.Less(t, strings.Index(out, "The Spooky Forest"), strings.Index(out, "The Haunted Kitchen"))
}

func TestRender(t *testing.T) {
	path := writeFile(t, "run.yaml", testYAML)

	tests := []struct {
		format string
		want   string
	}{
		{"plain", "Sample Run"},
		{"html", "<"},
		{"bbcode", "[b]"},
		{"terminal", "SAMPLE RUN"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, _, err := run(t, "render", path, "--format", tt.format, "--start", "2026-10-05")
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}

	_, _, err := run(t, "render", path, "--format", "pdf")
	assert.Error(t, err)

	_, _, err = run(t, "render", path, "--start", "soon")
	assert.Error(t, err)
}

func TestRange(t *testing.T) {
	path := writeFile(t, "run.yaml", testYAML)

	out, _, err := run(t, "range", path, "--start", "3", "--end", "4")
	require.NoError(t, err)

	var sum summary.LogSummary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	assert.Equal(t, 2, sum.Turns.Total)

	out, _, err = run(t, "range", path, "--start", "1", "--end", "2", "--format", "plain")
	require.NoError(t, err)
	assert.Contains(t, out, "The Spooky Forest")
	assert.NotContains(t, out, "zombie chef")

	_, _, err = run(t, "range", path, "--start", "4", "--end", "2")
	assert.Error(t, err)
}

func TestInputFormatOverride(t *testing.T) {
	path := writeFile(t, "run.txt", testYAML)

	_, _, err := run(t, "summary", path)
	assert.Error(t, err, "txt defaults to JSON")

	_, _, err = run(t, "summary", path, "--input-format", "yaml")
	assert.NoError(t, err)

	_, _, err = run(t, "summary", path, "--input-format", "toml")
	assert.Error(t, err)
}

func TestStrictIteration(t *testing.T) {
	path := writeFile(t, "run.json", `{
		"turns": [
			{"turn": 1, "area": "The Spooky Forest", "type": "combat"},
			{"turn": 1, "area": "The Spooky Forest", "type": "combat"}
		]
	}`)

	out, _, err := run(t, "summary", path)
	require.NoError(t, err)
	var folded summary.LogSummary
	require.NoError(t, json.Unmarshal([]byte(out), &folded))
	assert.Equal(t, 1, folded.Turns.Total)

	_, _, err = run(t, "summary", path, "--iteration", "sideways")
	assert.Error(t, err)
}
