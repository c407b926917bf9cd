// Package shell reads command lines, parses them into pipelines and runs
// them until the user quits.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/anmitsu/go-shlex"
	"github.com/fatih/color"
	"github.com/josephlewis42/pipeshell/commands"
	"github.com/josephlewis42/pipeshell/core/config"
	"github.com/josephlewis42/pipeshell/core/logger"
	"github.com/josephlewis42/pipeshell/core/pipeline"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
)

const (
	EnvHome = "HOME"
	EnvPWD  = "PWD"
)

var diagnosticColor = color.New(color.FgRed)

type Shell struct {
	Parser       *Parser
	Orchestrator *pipeline.Orchestrator
	Config       *config.Configuration
	// Readline is only set for interactive sessions.
	Readline *readline.Instance

	Stdout io.Writer
	Stderr io.Writer
	Log    *zap.Logger

	// Getenv reads the environment, os.Getenv if nil.
	Getenv func(string) string

	history []string

	// Set to true to quit the shell
	Quit bool
}

// New creates a shell that runs pipelines against the real filesystem and
// search path.
func New(cfg *config.Configuration, stdout, stderr io.Writer, log *zap.Logger) *Shell {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}

	orch := pipeline.NewOrchestrator(cfg, stdout, stderr, log)
	return &Shell{
		Parser:       &Parser{Builtins: orch.Builtins},
		Orchestrator: orch,
		Config:       cfg,
		Stdout:       stdout,
		Stderr:       stderr,
		Log:          log,
	}
}

// NewReadline creates the line editor for an interactive session. completer
// may be nil.
func NewReadline(stdin io.Reader, stdout, stderr io.Writer, completer readline.AutoCompleter) (*readline.Instance, error) {
	cfg := &readline.Config{
		Stdin:        readline.NewCancelableStdin(stdin),
		Stdout:       stdout,
		Stderr:       stderr,
		AutoComplete: completer,
		FuncIsTerminal: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
		},
	}

	if err := cfg.Init(); err != nil {
		return nil, err
	}

	return readline.NewEx(cfg)
}

func (s *Shell) getenv(key string) string {
	if s.Getenv != nil {
		return s.Getenv(key)
	}
	return os.Getenv(key)
}

func (s *Shell) diagnose(format string, a ...interface{}) {
	diagnosticColor.Fprintf(s.Stderr, "pipeshell: "+format+"\n", a...)
}

func (s *Shell) prompt() string {
	pwd, err := os.Getwd()
	if err != nil {
		pwd = "?"
	}
	home := s.getenv(EnvHome)
	if home != "" && strings.HasPrefix(pwd, home) {
		pwd = "~" + strings.TrimPrefix(pwd, home)
	}

	prompt := fmt.Sprintf("pipeshell:%s> ", pwd)
	if c := promptColor(s.Config.PromptColor); c != nil {
		return c.Sprint(prompt)
	}
	return prompt
}

func promptColor(name string) *color.Color {
	attr, ok := map[string]color.Attribute{
		"black":   color.FgBlack,
		"red":     color.FgRed,
		"green":   color.FgGreen,
		"yellow":  color.FgYellow,
		"blue":    color.FgBlue,
		"magenta": color.FgMagenta,
		"cyan":    color.FgCyan,
		"white":   color.FgWhite,
	}[name]
	if !ok {
		return nil
	}
	return color.New(attr, color.Bold)
}

// Completer completes the first word of a line to a builtin or directive
// name.
func (s *Shell) Completer() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, name := range s.Parser.Builtins.Names() {
		items = append(items, readline.PcItem(name))
	}
	for _, name := range DirectiveNames() {
		items = append(items, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(items...)
}

// builtinHelp maps the names of each builtin to its description.
func (s *Shell) builtinHelp() map[string]string {
	out := make(map[string]string)
	for _, cmd := range commands.ListBuiltinCommands() {
		out[strings.Join(cmd.Names, ", ")] = cmd.Short
	}
	return out
}

// RunInteractive reads and runs lines until the input ends or the user
// quits. Paths received on notifications are typed into the pending line.
func (s *Shell) RunInteractive(ctx context.Context, notifications <-chan string) int {
	if notifications != nil {
		go s.injectPaths(ctx, notifications)
	}

	for !s.Quit {
		s.Readline.SetPrompt(s.prompt())
		line, err := s.Readline.Readline()

		switch {
		case err == io.EOF:
			return 0 // Input closed, quit.

		case err == readline.ErrInterrupt:
			// Interrupt clears line.
			continue

		case err != nil:
			s.Log.Warn("reading line", zap.Error(err))
			continue

		case strings.TrimSpace(line) == "":
			continue // empty line
		}

		s.history = append(s.history, line)

		// Ctrl-C while a pipeline runs cancels the pipeline, not the shell.
		pipelineCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		s.RunCommand(pipelineCtx, line)
		stop()

		if ctx.Err() != nil {
			return 1
		}
	}
	return 0
}

func (s *Shell) injectPaths(ctx context.Context, notifications <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-notifications:
			if !ok {
				return
			}
			if _, err := s.Readline.WriteStdin([]byte(path)); err != nil {
				s.Log.Warn("injecting notified path", zap.Error(err))
				continue
			}
			s.Log.Info("path notified", logger.Event(logger.EventPathNotified), zap.String("path", path))
		}
	}
}

// RunCommand runs a single command line and returns its status: 0 on
// success, 1 if a pipeline was interrupted or failed to run, 2 for a line
// that couldn't be parsed.
func (s *Shell) RunCommand(ctx context.Context, line string) int {
	line = strings.TrimSpace(line)
	if line == "" {
		return 0
	}
	s.Log.Info("run command", logger.Event(logger.EventRunCommand), zap.String(logger.FieldLine, line))

	if ret, ok := s.runDirective(line); ok {
		return ret
	}

	cmds, err := s.Parser.Parse(line)
	if err != nil {
		s.diagnose("syntax error: %v", err)
		s.Log.Info("syntax error", logger.Event(logger.EventSyntaxError), zap.Error(err))
		return 2
	}

	ret := 0
	for _, cmd := range cmds {
		if err := s.runPipeline(ctx, cmd); err != nil {
			ret = 1
			if ctx.Err() != nil {
				break
			}
		}
	}
	return ret
}

func (s *Shell) runDirective(line string) (int, bool) {
	args, err := shlex.Split(line, true)
	if err != nil || len(args) == 0 {
		return 0, false
	}

	directive, ok := directives()[args[0]]
	if !ok {
		return 0, false
	}

	ret := directive.Main(s, args)
	if ret != 0 {
		s.Log.Info("directive failed", logger.Event(logger.EventDirectiveFailed), zap.Strings("args", args), zap.Int(logger.FieldStatus, ret))
	}
	return ret, true
}

func (s *Shell) runPipeline(ctx context.Context, cmd Command) error {
	timeout := s.Config.PipelineTimeout()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	err := s.Orchestrator.Execute(ctx, pipeline.New(cmd.Stages))
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded):
		s.diagnose("pipeline timed out after %v", timeout)
	case errors.Is(err, context.Canceled):
		s.diagnose("interrupted")
	default:
		s.diagnose("%v", err)
	}
	return err
}
