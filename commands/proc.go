package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/josephlewis42/pipeshell/core/bus"
	"github.com/josephlewis42/pipeshell/core/config"
	"github.com/josephlewis42/pipeshell/core/lookpath"
	"github.com/josephlewis42/pipeshell/core/vio"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Proc is the environment a builtin runs in. A builtin reads boundary In of
// Bus and writes boundary In+1.
type Proc struct {
	Bus *bus.Bus
	In  int
	// Args holds the arguments, Args[0] is the name the builtin was invoked by.
	Args []string

	Fs     afero.Fs
	Stderr io.Writer
	Config *config.Configuration
	Log    *zap.Logger
	// Env is the environment external commands see.
	Env   []string
	Paths *lookpath.Cache

	ctx    context.Context
	stdout *vio.LineWriter
}

// NewProc creates a process reading boundary in of b. Callers may replace
// any exported field before running it.
func NewProc(ctx context.Context, b *bus.Bus, in int, args []string) *Proc {
	p := &Proc{
		Bus:    b,
		In:     in,
		Args:   args,
		Fs:     afero.NewOsFs(),
		Stderr: io.Discard,
		Config: config.Default(),
		Log:    zap.NewNop(),
		Env:    os.Environ(),
		Paths:  lookpath.NewCache(),
		ctx:    ctx,
	}
	p.stdout = vio.NewLineWriter(p.Emit)
	return p
}

// Name is the name the process was invoked with.
func (p *Proc) Name() string {
	if len(p.Args) == 0 {
		return ""
	}
	return p.Args[0]
}

// Context is canceled when the pipeline is interrupted or times out.
func (p *Proc) Context() context.Context {
	return p.ctx
}

// Next blocks for the next input item. It returns io.EOF at the end of the
// input.
func (p *Proc) Next() (string, error) {
	return p.Bus.Pop(p.ctx, p.In)
}

// Each calls fn for every remaining input item. It returns nil at the end of
// the input, or the context's error if the pipeline was canceled.
func (p *Proc) Each(fn func(item string)) error {
	for {
		item, err := p.Next()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		}
		fn(item)
	}
}

// Emit writes one item to the output boundary.
func (p *Proc) Emit(item string) {
	p.Bus.Push(p.In+1, item)
}

// Stdout is a writer whose lines become output items.
func (p *Proc) Stdout() io.Writer {
	return p.stdout
}

// Errorf writes a single diagnostic line prefixed by the process name.
func (p *Proc) Errorf(format string, a ...interface{}) {
	msg := fmt.Sprintf("%s: %s\n", p.Name(), fmt.Sprintf(format, a...))
	io.WriteString(p.Stderr, msg)
}
