package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bfjit/internal/store"
	"github.com/roach88/bfjit/internal/testutil"
)

// printA prints "A": 8*8 in a loop, plus one.
// 24 raw instructions, 10 optimized, 45 steps.
const printA = "++++++++[>++++++++<-]>+."

func newRunCmd(opts *RunOptions, stdin string, args ...string) (*bytes.Buffer, *bytes.Buffer, func() error) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := newRunCommand(opts)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	return stdout, stderr, cmd.Execute
}

func TestRunMissingArgs(t *testing.T) {
	_, _, execute := newRunCmd(&RunOptions{RootOptions: &RootOptions{Format: "text"}}, "")

	err := execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestRunProgramOutput(t *testing.T) {
	path := testutil.WriteSource(t, t.TempDir(), "a.bf", printA)

	stdout, stderr, execute := newRunCmd(&RunOptions{RootOptions: &RootOptions{Format: "text"}}, "", path)

	require.NoError(t, execute())
	assert.Equal(t, "A", stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRunReadsStdin(t *testing.T) {
	path := testutil.WriteSource(t, t.TempDir(), "cat.bf", ",[.[-],]")

	stdout, _, execute := newRunCmd(&RunOptions{RootOptions: &RootOptions{Format: "text"}}, "hello, world", path)

	require.NoError(t, execute())
	assert.Equal(t, "hello, world", stdout.String())
}

func TestRunNoOptimize(t *testing.T) {
	path := testutil.WriteSource(t, t.TempDir(), "a.bf", printA)

	stdout, stderr, execute := newRunCmd(&RunOptions{RootOptions: &RootOptions{Format: "text"}}, "",
		"--no-optimize", "--stats", path)

	require.NoError(t, execute())
	assert.Equal(t, "A", stdout.String())
	assert.Contains(t, stderr.String(), "instructions=24 raw_instructions=24")
}

func TestRunNonExistentFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.bf")

	stdout, stderr, execute := newRunCmd(&RunOptions{RootOptions: &RootOptions{Format: "text"}}, "", path)

	err := execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.True(t, IsReported(err))
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Error [E005]")
	assert.Contains(t, stderr.String(), "source file not found")
}

func TestRunSourceErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		code    string
		message string
	}{
		{"unmatched closing", "+\n+]", ErrCodeUnmatchedClosing, "prog.bf:2:2: unmatched closing bracket ']'"},
		{"unmatched opening", "[[]", ErrCodeUnmatchedOpening, "prog.bf:1:1: unmatched opening bracket '['"},
		{"empty program", "just a comment", ErrCodeEmptyProgram, "source contains no instructions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteSource(t, t.TempDir(), "prog.bf", tt.source)

			_, stderr, execute := newRunCmd(&RunOptions{RootOptions: &RootOptions{Format: "text"}}, "", path)

			err := execute()
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, stderr.String(), "Error ["+tt.code+"]")
			assert.Contains(t, stderr.String(), tt.message)
		})
	}
}

func TestRunPointerOutOfBounds(t *testing.T) {
	path := testutil.WriteSource(t, t.TempDir(), "under.bf", "+.<")

	stdout, stderr, execute := newRunCmd(&RunOptions{RootOptions: &RootOptions{Format: "text"}}, "", path)

	err := execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "\x01", stdout.String(), "output before the fault is flushed")
	assert.Contains(t, stderr.String(), "Error [E301]")
	assert.Contains(t, stderr.String(), "POINTER_OUT_OF_BOUNDS")
}

func TestRunStepLimit(t *testing.T) {
	path := testutil.WriteSource(t, t.TempDir(), "spin.bf", "+[]")

	_, stderr, execute := newRunCmd(&RunOptions{RootOptions: &RootOptions{Format: "text"}}, "",
		"--max-steps", "100", path)

	err := execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr.String(), "Error [E303]")
}

func TestRunStats(t *testing.T) {
	path := testutil.WriteSource(t, t.TempDir(), "a.bf", printA)

	_, stderr, execute := newRunCmd(&RunOptions{RootOptions: &RootOptions{Format: "text"}}, "", "--stats", path)

	require.NoError(t, execute())
	assert.Equal(t, "steps=45 in=0 out=1 instructions=10 raw_instructions=24\n", stderr.String())
}

func TestRunStatsJSON(t *testing.T) {
	path := testutil.WriteSource(t, t.TempDir(), "a.bf", printA)

	stdout, stderr, execute := newRunCmd(&RunOptions{RootOptions: &RootOptions{Format: "json"}}, "", "--stats", path)

	require.NoError(t, execute())
	assert.Equal(t, "A", stdout.String())

	var resp struct {
		Status string     `json:"status"`
		Data   RunSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(stderr.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, int64(45), resp.Data.Steps)
	assert.Equal(t, int64(1), resp.Data.BytesWritten)
	assert.Equal(t, 10, resp.Data.Instructions)
	assert.Equal(t, 24, resp.Data.RawInstructions)
}

func TestRunRuntimeErrorJSON(t *testing.T) {
	path := testutil.WriteSource(t, t.TempDir(), "under.bf", "<")

	_, stderr, execute := newRunCmd(&RunOptions{RootOptions: &RootOptions{Format: "json"}}, "", path)

	err := execute()
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(stderr.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodePointerOutOfBounds, resp.Error.Code)
}

func TestRunRecordsHistory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "runs.db")
	okPath := testutil.WriteSource(t, dir, "a.bf", printA)
	badPath := testutil.WriteSource(t, dir, "under.bf", "<")

	gen := testutil.NewSequentialIDGenerator("run")
	opts := func() *RunOptions {
		return &RunOptions{RootOptions: &RootOptions{Format: "text"}, IDGenerator: gen}
	}

	_, _, execute := newRunCmd(opts(), "", "--db", dbPath, okPath)
	require.NoError(t, execute())

	_, _, execute = newRunCmd(opts(), "", "--db", dbPath, badPath)
	require.Error(t, execute())

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	newest := runs[0]
	assert.Equal(t, "run-0002", newest.ID)
	assert.Equal(t, int64(2), newest.Seq)
	assert.Equal(t, store.StatusError, newest.Status)
	assert.Equal(t, ErrCodePointerOutOfBounds, newest.ErrorCode)
	assert.Contains(t, newest.ErrorMessage, "POINTER_OUT_OF_BOUNDS")

	first := runs[1]
	assert.Equal(t, "run-0001", first.ID)
	assert.Equal(t, store.StatusOK, first.Status)
	assert.Equal(t, okPath, first.SourcePath)
	assert.Equal(t, 24, first.RawInstructions)
	assert.Equal(t, 10, first.Instructions)
	assert.Equal(t, int64(45), first.Steps)
	assert.Equal(t, int64(1), first.BytesOut)
	assert.Len(t, first.ProgramHash, 64)
	assert.NotEmpty(t, first.EngineVersion)
}

func TestRunConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := testutil.WriteSource(t, dir, "bfjit.toml", "memory_size = 1\n")
	path := testutil.WriteSource(t, dir, "right.bf", ">+.")

	// One cell: moving right leaves memory.
	_, stderr, execute := newRunCmd(&RunOptions{RootOptions: &RootOptions{Format: "text", ConfigPath: cfgPath}}, "", path)
	err := execute()
	require.Error(t, err)
	assert.Contains(t, stderr.String(), "Error [E301]")

	// Flags win over the file.
	stdout, _, execute := newRunCmd(&RunOptions{RootOptions: &RootOptions{Format: "text", ConfigPath: cfgPath}}, "",
		"--memory-size", "2", path)
	require.NoError(t, execute())
	assert.Equal(t, "\x01", stdout.String())
}

func TestRunConfigFileCUE(t *testing.T) {
	dir := t.TempDir()
	cfgPath := testutil.WriteSource(t, dir, "bfjit.cue", "max_steps: 50\n")
	path := testutil.WriteSource(t, dir, "spin.bf", "+[]")

	_, stderr, execute := newRunCmd(&RunOptions{RootOptions: &RootOptions{Format: "text", ConfigPath: cfgPath}}, "", path)

	err := execute()
	require.Error(t, err)
	assert.Contains(t, stderr.String(), "Error [E303]")
}

func TestRunInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := testutil.WriteSource(t, dir, "bfjit.toml", "memory_size = 0\n")
	path := testutil.WriteSource(t, dir, "a.bf", printA)

	_, stderr, execute := newRunCmd(&RunOptions{RootOptions: &RootOptions{Format: "text", ConfigPath: cfgPath}}, "", path)

	err := execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr.String(), "Error [E401]")
}

func TestRunInvalidMemorySizeFlag(t *testing.T) {
	path := testutil.WriteSource(t, t.TempDir(), "a.bf", printA)

	_, stderr, execute := newRunCmd(&RunOptions{RootOptions: &RootOptions{Format: "text"}}, "",
		"--memory-size", "-1", path)

	err := execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr.String(), "Error [E401]")
}

func TestRunHelpText(t *testing.T) {
	cmd := NewRunCommand(&RootOptions{Format: "text"})

	assert.Equal(t, "run <file.bf>", cmd.Use)
	assert.Contains(t, cmd.Long, "Exit codes")
	assert.Contains(t, cmd.Long, "--db")
}
