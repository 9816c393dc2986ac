package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_Valid(t *testing.T) {
	path := writeScenario(t, t.TempDir(), `
name: full
description: Every field set
source: ",."
input: "z"
optimize: false
memory_size: 16
max_steps: 100
cross_check: true
expect:
  output: "z"
  instructions: 2
`)

	s, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "full", s.Name)
	assert.Equal(t, ",.", s.Source)
	assert.Equal(t, "z", s.Input)
	assert.False(t, s.OptimizeEnabled())
	assert.Equal(t, 16, s.MemorySize)
	assert.Equal(t, int64(100), s.StepLimit())
	assert.True(t, s.CrossCheck)
	require.NotNil(t, s.Expect.Output)
	assert.Equal(t, "z", *s.Expect.Output)
	assert.Equal(t, 2, s.Expect.Instructions)
}

func TestLoadScenario_Defaults(t *testing.T) {
	path := writeScenario(t, t.TempDir(), `
name: defaults
description: Only required fields
source: "+"
expect:
  error: step_limit
`)

	s, err := LoadScenario(path)
	require.NoError(t, err)

	assert.True(t, s.OptimizeEnabled())
	assert.Equal(t, DefaultMaxSteps, s.StepLimit())
	assert.Nil(t, s.Expect.Output)
}

func TestLoadScenario_EmptyOutputIsChecked(t *testing.T) {
	path := writeScenario(t, t.TempDir(), `
name: silent
description: Must print nothing
source: "+"
expect:
  output: ""
`)

	s, err := LoadScenario(path)
	require.NoError(t, err)
	require.NotNil(t, s.Expect.Output)
	assert.Empty(t, *s.Expect.Output)
}

func TestLoadScenario_SourceFileRelative(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prog.bf"), []byte("+."), 0o644))

	path := writeScenario(t, dir, `
name: file
description: Source from a sibling file
source_file: prog.bf
expect:
  output: "\x01"
`)

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "prog.bf"), s.SourceFile)
}

func TestLoadScenario_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown field",
			content: "name: x\ndescription: d\nsource: \"+\"\nexpected:\n  output: \"\"\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "missing name",
			content: "description: d\nsource: \"+\"\nexpect:\n  output: \"\"\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			content: "name: x\nsource: \"+\"\nexpect:\n  output: \"\"\n",
			wantErr: "description is required",
		},
		{
			name:    "no source",
			content: "name: x\ndescription: d\nexpect:\n  output: \"\"\n",
			wantErr: "one of source or source_file is required",
		},
		{
			name:    "both sources",
			content: "name: x\ndescription: d\nsource: \"+\"\nsource_file: a.bf\nexpect:\n  output: \"\"\n",
			wantErr: "mutually exclusive",
		},
		{
			name:    "missing source file",
			content: "name: x\ndescription: d\nsource_file: nope.bf\nexpect:\n  output: \"\"\n",
			wantErr: "source file not found",
		},
		{
			name:    "no expectation",
			content: "name: x\ndescription: d\nsource: \"+\"\n",
			wantErr: "output or error is required",
		},
		{
			name:    "unknown error kind",
			content: "name: x\ndescription: d\nsource: \"+\"\nexpect:\n  error: segfault\n",
			wantErr: `unknown error kind "segfault"`,
		},
		{
			name:    "negative memory",
			content: "name: x\ndescription: d\nsource: \"+\"\nmemory_size: -1\nexpect:\n  output: \"\"\n",
			wantErr: "memory_size must be non-negative",
		},
		{
			name:    "negative steps",
			content: "name: x\ndescription: d\nsource: \"+\"\nmax_steps: -1\nexpect:\n  output: \"\"\n",
			wantErr: "max_steps must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, t.TempDir(), tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}
