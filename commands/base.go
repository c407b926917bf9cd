package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"runtime/debug"
	"sort"

	"github.com/josephlewis42/pipeshell/core/logger"
	getopt "github.com/pborman/getopt/v2"
	"go.uber.org/zap"
)

// Builtin is a command that runs in-process as a pipeline stage.
type Builtin interface {
	Main(p *Proc) int
}

// BuiltinFunc adapts a function to a Builtin.
type BuiltinFunc func(p *Proc) int

func (f BuiltinFunc) Main(p *Proc) int {
	return f(p)
}

var _ Builtin = (BuiltinFunc)(nil)

// Run executes the builtin and marks its output boundary finished on every
// return path, including a panic.
func Run(b Builtin, p *Proc) (status int) {
	defer p.Bus.MarkFinished(p.In + 1)
	defer p.stdout.Flush()
	defer func() {
		if r := recover(); r != nil {
			p.Errorf("internal error: %v", r)
			p.Log.Error("builtin panicked",
				logger.Event(logger.EventPanic),
				zap.String(logger.FieldStage, p.Name()),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
			status = 2
		}
	}()

	return b.Main(p)
}

// BuiltinCommand describes a builtin and every name it's registered under.
type BuiltinCommand struct {
	Names   []string
	Short   string
	Builtin Builtin
}

// Registry resolves builtin names. It can't be modified after creation.
type Registry struct {
	byName map[string]Builtin
}

// NewRegistry creates a registry holding every builtin command.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]Builtin)}
	for _, cmd := range ListBuiltinCommands() {
		for _, name := range cmd.Names {
			r.byName[name] = cmd.Builtin
		}
	}
	return r
}

// Lookup finds the builtin registered under name. A nil registry holds no
// builtins.
func (r *Registry) Lookup(name string) (Builtin, bool) {
	if r == nil {
		return nil, false
	}
	b, ok := r.byName[name]
	return b, ok
}

// Names lists every registered name in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	var out []string
	for name := range r.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

type SimpleCommand struct {
	// Use holds a one line usage string
	Use string
	// Short holds a one line description of the command.
	Short string
	// ShowHelp sets whether help is displayed or not.
	// If this is non-nil when Run() is called, then the default help flag isn't
	// added.
	ShowHelp *bool
	// NeverBail skips reporting flag errors and always runs the callback.
	NeverBail bool

	flags *getopt.Set
}

// Flags gets the command's flag set.
func (s *SimpleCommand) Flags() *getopt.Set {
	if s.flags == nil {
		s.flags = getopt.New()
	}

	return s.flags
}

// PrintHelp writes help for the command to the given writer.
func (s *SimpleCommand) PrintHelp(w io.Writer) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, s.Use)
	fmt.Fprintln(w, s.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	s.Flags().PrintOptions(w)
}

// Run the command, if flag parsing was successful call the callback.
// Help goes to the output stream, flag errors to diagnostics.
func (s *SimpleCommand) Run(p *Proc, callback func() int) int {
	opts := s.Flags()

	// Add help flag if not overridden.
	if s.ShowHelp == nil {
		s.ShowHelp = opts.BoolLong("help", 'h', "show this help and exit")
	}

	err := opts.Getopt(p.Args, nil)
	if err != nil && !s.NeverBail {
		s.LogProgramError(p, err)
		p.Errorf("usage: %s", s.Use)
		return 1
	}

	if *s.ShowHelp {
		s.PrintHelp(p.Stdout())
		return 0
	}

	return callback()
}

// LogProgramError reports a failure caused by how the command was invoked.
func (s *SimpleCommand) LogProgramError(p *Proc, err error) {
	p.Errorf("%v", err)
	p.Log.Debug("invalid invocation",
		zap.String(logger.FieldStage, p.Name()),
		zap.Strings("args", p.Args),
		zap.Error(err))
}

// errReason strips the operation and path from filesystem errors.
func errReason(err error) string {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}
	return err.Error()
}
