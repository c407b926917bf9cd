package shell

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/josephlewis42/pipeshell/core/config"
	"github.com/sebdah/goldie/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testShell struct {
	*Shell
	fs     afero.Fs
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestShell(t *testing.T) *testShell {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	s := New(config.Default(), stdout, stderr, nil)
	fsys := afero.NewBasePathFs(afero.NewOsFs(), t.TempDir())
	s.Orchestrator.Fs = fsys
	return &testShell{Shell: s, fs: fsys, stdout: stdout, stderr: stderr}
}

func TestShell_RunCommand(t *testing.T) {
	s := newTestShell(t)
	require.NoError(t, afero.WriteFile(s.fs, "foo.txt", nil, 0644))
	require.NoError(t, afero.WriteFile(s.fs, "bar.txt", nil, 0644))

	assert.Equal(t, 0, s.RunCommand(context.Background(), "list-directory | line-filter foo"))
	assert.Equal(t, "foo.txt\n", s.stdout.String())
	assert.Empty(t, s.stderr.String())
}

func TestShell_RunCommand_sequence(t *testing.T) {
	s := newTestShell(t)

	assert.Equal(t, 0, s.RunCommand(context.Background(), "echo a; echo b | grep b"))
	assert.Equal(t, "a\nb\n", s.stdout.String())
}

func TestShell_RunCommand_redirection(t *testing.T) {
	s := newTestShell(t)

	assert.Equal(t, 0, s.RunCommand(context.Background(), "echo hello world > out.txt"))
	assert.Empty(t, s.stdout.String())

	assert.Equal(t, 0, s.RunCommand(context.Background(), "count-words < out.txt"))
	assert.Equal(t, "Lines: 1, Words: 2, Characters: 11\n", s.stdout.String())
	assert.Empty(t, s.stderr.String())
}

func TestShell_RunCommand_countFileLines(t *testing.T) {
	s := newTestShell(t)
	require.NoError(t, afero.WriteFile(s.fs, "notes.txt", []byte("hello world\nfoo bar baz\n"), 0644))

	assert.Equal(t, 0, s.RunCommand(context.Background(), "read-file notes.txt | count-words"))
	assert.Equal(t, "Lines: 2, Words: 5, Characters: 22\n", s.stdout.String())
	assert.Empty(t, s.stderr.String())
}

func TestShell_RunCommand_countMixedItems(t *testing.T) {
	s := newTestShell(t)
	require.NoError(t, afero.WriteFile(s.fs, "notes.txt", []byte("hello world\nfoo bar baz\n"), 0644))
	require.NoError(t, afero.WriteFile(s.fs, "list.txt", []byte("notes.txt\nsome words here\n"), 0644))

	assert.Equal(t, 0, s.RunCommand(context.Background(), "wc < list.txt"))
	assert.Equal(t, "notes.txt: Lines: 2, Words: 5, Characters: 22\nLines: 1, Words: 3, Characters: 15\n", s.stdout.String())
	assert.Empty(t, s.stderr.String())
}

func TestShell_RunCommand_syntaxError(t *testing.T) {
	for _, line := range []string{"| grep", "ls && wc", `echo "open`} {
		t.Run(line, func(t *testing.T) {
			s := newTestShell(t)

			assert.Equal(t, 2, s.RunCommand(context.Background(), line))
			assert.Empty(t, s.stdout.String())

			diagnostics := strings.Split(strings.TrimSuffix(s.stderr.String(), "\n"), "\n")
			require.Len(t, diagnostics, 1)
			assert.True(t, strings.HasPrefix(diagnostics[0], "pipeshell: syntax error: "), diagnostics[0])
		})
	}
}

func TestShell_RunCommand_notFound(t *testing.T) {
	s := newTestShell(t)

	assert.Equal(t, 0, s.RunCommand(context.Background(), "pipeshell-no-such-command --flag"))
	assert.Empty(t, s.stdout.String())
	assert.Equal(t, "pipeshell-no-such-command: command not found\n", s.stderr.String())
}

func TestShell_RunCommand_canceled(t *testing.T) {
	s := newTestShell(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, 1, s.RunCommand(ctx, "grep x; echo never"))
	assert.NotContains(t, s.stdout.String(), "never")
	assert.Contains(t, s.stderr.String(), "pipeshell: interrupted")
}

func TestShell_quit(t *testing.T) {
	for _, line := range []string{"quit", "exit", "  exit  "} {
		s := newTestShell(t)
		assert.Equal(t, 0, s.RunCommand(context.Background(), line))
		assert.True(t, s.Quit, line)
	}
}

func TestShell_cd(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0755))
	t.Chdir(root)

	s := newTestShell(t)
	s.Getenv = func(key string) string {
		if key == EnvHome {
			return root
		}
		return ""
	}

	bin := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bin, "tool"), []byte("#!/bin/sh\n"), 0755))
	s.Orchestrator.Paths.Getenv = func(string) string { return bin }
	_, err := s.Orchestrator.Paths.LookPath("tool")
	require.NoError(t, err)
	require.Equal(t, 1, s.Orchestrator.Paths.Len())

	assert.Equal(t, 0, s.RunCommand(context.Background(), "cd sub"))
	assert.Equal(t, 0, s.Orchestrator.Paths.Len(), "cd forgets cached program locations")
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, "sub", filepath.Base(wd))
	assert.Contains(t, s.prompt(), "pipeshell:~/sub> ")

	assert.Equal(t, 0, s.RunCommand(context.Background(), "cd"))
	wd, err = os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(root), filepath.Base(wd))

	assert.Equal(t, 1, s.RunCommand(context.Background(), "cd does-not-exist"))
	assert.Contains(t, s.stderr.String(), "cd: ")

	assert.Equal(t, 1, s.RunCommand(context.Background(), "cd a b"))
	assert.Contains(t, s.stderr.String(), "cd: too many arguments\n")
}

func TestShell_history(t *testing.T) {
	s := newTestShell(t)
	s.history = []string{"ls", "wc -l"}

	assert.Equal(t, 0, History(s.Shell, []string{"history"}))
	assert.Equal(t, "    1  ls\n    2  wc -l\n", s.stdout.String())

	assert.Equal(t, 0, History(s.Shell, []string{"history", "-c"}))
	assert.Empty(t, s.history)
}

func TestShell_help(t *testing.T) {
	s := newTestShell(t)
	assert.Equal(t, 0, s.RunCommand(context.Background(), "help"))

	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
	)
	g.Assert(t, "help", s.stdout.Bytes())
}

func TestDirectiveNames(t *testing.T) {
	assert.Equal(t, []string{"cd", "edit", "exit", "help", "history", "quit"}, DirectiveNames())
}

func TestPromptColor(t *testing.T) {
	assert.NotNil(t, promptColor("green"))
	assert.Nil(t, promptColor("none"))
	assert.Nil(t, promptColor("plaid"))
}

func TestExpandHome(t *testing.T) {
	assert.Equal(t, "/home/u", expandHome("~", "/home/u"))
	assert.Equal(t, "/home/u/docs", expandHome("~/docs", "/home/u"))
	assert.Equal(t, "/tmp", expandHome("/tmp", "/home/u"))
}

func TestShell_injectPaths(t *testing.T) {
	stdinR, stdinW := io.Pipe()
	defer stdinW.Close()

	rl, err := NewReadline(stdinR, io.Discard, io.Discard, nil)
	require.NoError(t, err)
	defer rl.Close()

	s := newTestShell(t)
	s.Readline = rl

	paths := make(chan string, 1)
	paths <- "/tmp/notified.txt"
	close(paths)
	s.injectPaths(context.Background(), paths)

	go io.WriteString(stdinW, "\n\n")

	// The injected text is the start of the next line read.
	var line string
	for i := 0; i < 2 && line == ""; i++ {
		line, err = rl.Readline()
		require.NoError(t, err)
	}
	assert.Equal(t, "/tmp/notified.txt", line)
}

func TestShell_Completer(t *testing.T) {
	s := newTestShell(t)

	candidates, offset := s.Completer().Do([]rune("line-f"), 6)
	assert.Equal(t, [][]rune{[]rune("ilter ")}, candidates)
	assert.Equal(t, 6, offset)

	candidates, _ = s.Completer().Do([]rune("his"), 3)
	assert.Equal(t, [][]rune{[]rune("tory ")}, candidates)
}

func TestShell_edit(t *testing.T) {
	if _, err := exec.LookPath("touch"); err != nil {
		t.Skipf("touch not available: %v", err)
	}

	s := newTestShell(t)
	s.Config.DefaultEditor = "touch"
	target := filepath.Join(t.TempDir(), "edited.txt")

	assert.Equal(t, 0, s.RunCommand(context.Background(), "edit "+target))
	assert.FileExists(t, target)

	assert.Equal(t, 1, s.RunCommand(context.Background(), "edit a b"))
	assert.Contains(t, s.stderr.String(), "edit: too many arguments\n")

	s.Config.DefaultEditor = ""
	assert.Equal(t, 1, s.RunCommand(context.Background(), "edit "+target))
	assert.Contains(t, s.stderr.String(), "edit: no usable defaultEditor configured\n")
}
