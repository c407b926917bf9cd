package shell

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/anmitsu/go-shlex"
	"github.com/pborman/getopt/v2"
)

// Directive is a command handled by the shell itself rather than run as a
// pipeline, because it changes the shell's own state.
type Directive interface {
	Main(s *Shell, args []string) int
}

type DirectiveFunc func(s *Shell, args []string) int

func (f DirectiveFunc) Main(s *Shell, args []string) int {
	return f(s, args)
}

var _ Directive = (DirectiveFunc)(nil)

// directives maps names to implementations. Built on each call, so nothing
// can register into it at runtime.
func directives() map[string]Directive {
	return map[string]Directive{
		"cd":      DirectiveFunc(Cd),
		"edit":    DirectiveFunc(Edit),
		"exit":    DirectiveFunc(Exit),
		"quit":    DirectiveFunc(Exit),
		"help":    DirectiveFunc(Help),
		"history": DirectiveFunc(History),
	}
}

// DirectiveNames lists the directives in sorted order.
func DirectiveNames() []string {
	var out []string
	for name := range directives() {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Cd changes the working directory of the shell, and with it every stage it
// starts. With no argument it goes to $HOME.
func Cd(s *Shell, args []string) int {
	switch len(args) {
	case 1:
		args = append(args, s.getenv(EnvHome))
		fallthrough
	case 2:
		dir := expandHome(args[1], s.getenv(EnvHome))
		if err := os.Chdir(dir); err != nil {
			fmt.Fprintf(s.Stderr, "%s: %v\n", args[0], err)
			return 1
		}
		if wd, err := os.Getwd(); err == nil {
			os.Setenv(EnvPWD, wd)
		}
		if s.Orchestrator != nil && s.Orchestrator.Paths != nil {
			s.Orchestrator.Paths.Reset()
		}
	default:
		fmt.Fprintf(s.Stderr, "%s: too many arguments\n", args[0])
		return 1
	}
	return 0
}

// Edit opens FILE, or the default output file, in the configured editor. The
// editor gets the terminal until it exits.
func Edit(s *Shell, args []string) int {
	if len(args) > 2 {
		fmt.Fprintf(s.Stderr, "%s: too many arguments\n", args[0])
		return 1
	}

	file := s.Config.DefaultOutput
	if len(args) == 2 {
		file = args[1]
	}

	editor, err := shlex.Split(s.Config.DefaultEditor, true)
	if err != nil || len(editor) == 0 {
		fmt.Fprintf(s.Stderr, "%s: no usable defaultEditor configured\n", args[0])
		return 1
	}

	path, err := s.Orchestrator.Paths.LookPath(editor[0])
	if err != nil {
		fmt.Fprintf(s.Stderr, "%s: %s: %v\n", args[0], editor[0], err)
		return 1
	}

	cmd := exec.Command(path, append(editor[1:], file)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(s.Stderr, "%s: %v\n", args[0], err)
		return 1
	}
	return 0
}

// Exit quits the shell
func Exit(s *Shell, args []string) int {
	s.Quit = true
	return 0
}

func History(s *Shell, args []string) int {
	opts := getopt.New()
	clear := opts.Bool('c', "clear the history by deleting all entries")
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(args, nil); err != nil || *helpOpt {
		w := s.Stderr
		if err != nil {
			fmt.Fprintln(w, err)
		}
		fmt.Fprintln(w, "Display or manipulate the history list")
		fmt.Fprintln(w, "Display the history list with line numbers.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Options:")
		opts.PrintOptions(w)
		return 1
	}

	if *clear {
		if s.Readline != nil {
			s.Readline.Operation.ResetHistory()
		}
		s.history = nil
		return 0
	}

	for i, line := range s.history {
		fmt.Fprintf(s.Stdout, "% 5d  %s\n", i+1, line)
	}
	return 0
}

func Help(s *Shell, args []string) int {
	w := s.Stdout
	fmt.Fprintln(w, "pipeshell runs pipelines of builtins and programs: cmd [args] | cmd [args] ...")
	fmt.Fprintln(w, "Use `< FILE` to read input from FILE and `> FILE` to write output to FILE.")
	fmt.Fprintln(w, "Separate pipelines with `;` to run them one after another.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Shell commands:")
	fmt.Fprintln(w, "  "+strings.Join(DirectiveNames(), " "))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Builtins:")

	var names []string
	for name := range s.builtinHelp() {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-32s %s\n", name, s.builtinHelp()[name])
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Any other command is run from $PATH.")
	return 0
}

func expandHome(path, home string) string {
	switch {
	case path == "~":
		return home
	case strings.HasPrefix(path, "~/"):
		return filepath.Join(home, path[2:])
	default:
		return path
	}
}
