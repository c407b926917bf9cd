// Package external runs pipeline stages as child processes.
package external

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/josephlewis42/pipeshell/core/bus"
	"github.com/josephlewis42/pipeshell/core/logger"
	"github.com/josephlewis42/pipeshell/core/lookpath"
	"github.com/josephlewis42/pipeshell/core/stage"
	"github.com/josephlewis42/pipeshell/core/vio"
	"go.uber.org/zap"
)

// waitDelay bounds how long Wait blocks on the stderr copy after the child
// exits or is killed.
const waitDelay = 2 * time.Second

// Runner bridges a boundary pair of the bus to a child process: items from
// the input boundary are written to its stdin as lines, and lines of its
// stdout become items of the output boundary.
type Runner struct {
	Paths  *lookpath.Cache
	Stderr io.Writer
	Log    *zap.Logger
}

func (r *Runner) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

func (r *Runner) paths() *lookpath.Cache {
	if r.Paths == nil {
		return lookpath.NewCache()
	}
	return r.Paths
}

func (r *Runner) diagnose(format string, a ...interface{}) {
	io.WriteString(vio.OrDiscard(r.Stderr), fmt.Sprintf(format, a...)+"\n")
}

// Run executes st reading boundary in and writing boundary in+1. The output
// boundary is marked finished on every return path. Failures to find or
// start the program are reported as diagnostics rather than errors; the
// returned error is only non-nil if ctx ended the run.
func (r *Runner) Run(ctx context.Context, b *bus.Bus, in int, st stage.Stage) error {
	out := in + 1
	defer b.MarkFinished(out)

	log := r.logger().With(zap.String(logger.FieldStage, st.Name), zap.Int(logger.FieldIndex, in))

	path, err := r.paths().LookPath(st.Name)
	switch {
	case errors.Is(err, fs.ErrPermission):
		r.diagnose("%s: permission denied", st.Name)
		log.Info("command not executable", logger.Event(logger.EventSpawnFailure), zap.Error(err))
		return nil
	case err != nil:
		r.notFound(log, st, err)
		return nil
	}

	stdinR, stdinW, err := os.Pipe()
	if err != nil {
		r.spawnFailure(log, st, err)
		return nil
	}
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		stdinR.Close()
		stdinW.Close()
		r.spawnFailure(log, st, err)
		return nil
	}

	cmd := exec.CommandContext(ctx, path, st.Args...)
	cmd.Args[0] = st.Name
	cmd.Stdin = stdinR
	cmd.Stdout = stdoutW
	cmd.Stderr = vio.OrDiscard(r.Stderr)
	cmd.WaitDelay = waitDelay

	if err := cmd.Start(); err != nil {
		stdinR.Close()
		stdinW.Close()
		stdoutR.Close()
		stdoutW.Close()
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, exec.ErrNotFound) {
			r.notFound(log, st, err)
		} else {
			r.spawnFailure(log, st, err)
		}
		return nil
	}

	// The child holds its own copies now.
	stdinR.Close()
	stdoutW.Close()
	log.Debug("process started", zap.Int("pid", cmd.Process.Pid), zap.String("path", path))

	feedCtx, stopFeeding := context.WithCancel(ctx)
	fed := make(chan struct{})
	go func() {
		defer close(fed)
		feed(feedCtx, b, in, stdinW, log)
	}()

	partial := collect(b, out, stdoutR, log)

	waitErr := cmd.Wait()
	stopFeeding()
	<-fed

	if partial != "" {
		b.Push(out, partial)
	}
	stdoutR.Close()

	status := cmd.ProcessState.ExitCode()
	log.Debug("process exited", logger.Event(logger.EventStageExit), zap.Int(logger.FieldStatus, status), zap.Error(waitErr))

	return ctx.Err()
}

func (r *Runner) notFound(log *zap.Logger, st stage.Stage, err error) {
	r.diagnose("%s: command not found", st.Name)
	log.Info("command not found", logger.Event(logger.EventUnknownCommand), zap.Error(err))
}

func (r *Runner) spawnFailure(log *zap.Logger, st stage.Stage, err error) {
	r.diagnose("%s: failed to start: %v", st.Name, err)
	log.Warn("failed to start process", logger.Event(logger.EventSpawnFailure), zap.Error(err))
}

// feed writes every input item to w followed by a newline, then closes w.
// It stops early if ctx ends or the child stops reading.
func feed(ctx context.Context, b *bus.Bus, in int, w io.WriteCloser, log *zap.Logger) {
	defer w.Close()

	for {
		item, err := b.Pop(ctx, in)
		if err != nil {
			// io.EOF, or the process exited and ctx was canceled.
			return
		}

		if _, err := io.WriteString(w, item+"\n"); err != nil {
			if !errors.Is(err, syscall.EPIPE) {
				log.Debug("writing to process stdin", zap.Error(err))
			}
			return
		}
	}
}

// collect pushes each complete line read from r to boundary out. It returns
// the unterminated tail, if any, once r is exhausted.
func collect(b *bus.Bus, out int, r io.Reader, log *zap.Logger) string {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF && !errors.Is(err, fs.ErrClosed) {
				log.Debug("reading process stdout", zap.Error(err))
			}
			return line
		}
		b.Push(out, line[:len(line)-1])
	}
}
