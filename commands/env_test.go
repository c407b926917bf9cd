package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/josephlewis42/pipeshell/core/bus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnv_contents(t *testing.T) {
	b := bus.New(2)
	b.MarkFinished(0)
	p := NewProc(t.Context(), b, 0, []string{"env"})
	p.Env = []string{"C=charlie", "A=alpha", "B=bravo"}

	assert.Equal(t, 0, Run(BuiltinFunc(Env), p))
	out, err := b.Drain(t.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"A=alpha", "B=bravo", "C=charlie"}, out)
}

func TestPwd(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	res := runBuiltin(t, afero.NewMemMapFs(), Pwd, []string{"pwd"})
	assert.Equal(t, 0, res.Status)
	require.Len(t, res.Out, 1)
	assert.Equal(t, filepath.Base(dir), filepath.Base(res.Out[0]))
}

func TestWhich(t *testing.T) {
	dir := t.TempDir()
	tool := filepath.Join(dir, "tool")
	require.NoError(t, os.WriteFile(tool, []byte("#!/bin/sh\n"), 0755))
	t.Setenv("PATH", dir)

	res := runBuiltin(t, afero.NewMemMapFs(), Which, []string{"which", "tool"}, "grep", "missing")
	assert.Equal(t, 1, res.Status)
	assert.Equal(t, []string{tool, "grep: pipeline builtin"}, res.Out)
	assert.Equal(t, "which: no missing in PATH\n", res.Stderr)
}
