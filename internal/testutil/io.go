package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// ErrInjected is the default error returned by ErrReader and ErrWriter.
var ErrInjected = errors.New("injected i/o failure")

// ErrReader is an io.Reader that always fails.
type ErrReader struct {
	Err error // defaults to ErrInjected
}

// Read implements io.Reader.
func (r ErrReader) Read([]byte) (int, error) {
	if r.Err == nil {
		return 0, ErrInjected
	}
	return 0, r.Err
}

// ErrWriter is an io.Writer that always fails.
type ErrWriter struct {
	Err error // defaults to ErrInjected
}

// Write implements io.Writer.
func (w ErrWriter) Write([]byte) (int, error) {
	if w.Err == nil {
		return 0, ErrInjected
	}
	return 0, w.Err
}

// WriteSource writes a program source file under dir and returns its path.
func WriteSource(t *testing.T, dir, name, source string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}
