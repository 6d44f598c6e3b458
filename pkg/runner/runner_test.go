package runner

import (
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	r := New(Config{})

	assert.ErrorIs(t, r.Validate(""), ErrInvalidCode)
	assert.ErrorIs(t, r.Validate("   "), ErrInvalidCode)
	assert.ErrorIs(t, r.Validate(strings.Repeat("x", DefaultMaxCodeBytes+1)), ErrInvalidCode)
	assert.ErrorIs(t, r.Validate("import subprocess"), ErrBlockedCode)
	assert.ErrorIs(t, r.Validate("x = unsafePerformIO"), ErrBlockedCode)
	assert.NoError(t, r.Validate("print('hi')"))
}

func TestResultOutput(t *testing.T) {
	assert.Equal(t, "out", Result{Stdout: "out", Stderr: "err"}.Output())
	assert.Equal(t, "err", Result{Stderr: "err"}.Output())
	assert.Equal(t, NoOutputMessage, Result{}.Output())
}

func TestCappedBuffer(t *testing.T) {
	b := &cappedBuffer{limit: 5}
	n, err := b.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	n, _ = b.Write([]byte("defgh"))
	assert.Equal(t, 5, n)
	assert.Equal(t, "abcde", b.String())
}

func requirePython(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not installed")
	}
}

func TestRunPython(t *testing.T) {
	requirePython(t)
	r := New(Config{TempDir: t.TempDir()})

	res, err := r.Run(context.Background(), "name = input()\nprint('hi', name)", "ada\n")
	require.NoError(t, err)
	assert.Equal(t, "hi ada\n", res.Output())
	assert.Equal(t, 0, res.ExitCode)

	res, err = r.Run(context.Background(), "x = 1", "")
	require.NoError(t, err)
	assert.Equal(t, NoOutputMessage, res.Output())

	res, err = r.Run(context.Background(), "raise ValueError('boom')", "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.ExitCode)
	assert.Contains(t, res.Output(), "ValueError: boom")
}

func TestRunTimeout(t *testing.T) {
	requirePython(t)
	r := New(Config{TempDir: t.TempDir(), Timeout: 200 * time.Millisecond})

	_, err := r.Run(context.Background(), "while True:\n    pass", "")
	assert.ErrorIs(t, err, ErrTimeout)
}
