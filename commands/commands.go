// Package commands holds the builtins that run inside pipeline stages.
package commands

import "github.com/josephlewis42/pipeshell/core/stage"

// ListBuiltinCommands returns every builtin. The slice is built on each call
// so callers can't change what the registry sees.
func ListBuiltinCommands() []BuiltinCommand {
	return []BuiltinCommand{
		{
			Names:   []string{"cat", stage.ReadFile},
			Short:   "Emit the lines of each named file.",
			Builtin: BuiltinFunc(Cat),
		},
		{
			Names:   []string{"echo", "print"},
			Short:   "Emit the arguments, then pass input through.",
			Builtin: BuiltinFunc(Echo),
		},
		{
			Names:   []string{"grep", "line-filter"},
			Short:   "Keep lines containing a pattern.",
			Builtin: BuiltinFunc(Grep),
		},
		{
			Names:   []string{"env"},
			Short:   "Print the environment.",
			Builtin: BuiltinFunc(Env),
		},
		{
			Names:   []string{"ls", "list-directory"},
			Short:   "List directory contents.",
			Builtin: BuiltinFunc(Ls),
		},
		{
			Names:   []string{"pwd"},
			Short:   "Print the working directory.",
			Builtin: BuiltinFunc(Pwd),
		},
		{
			Names:   []string{"wc", "count-words"},
			Short:   "Count lines, words and characters.",
			Builtin: BuiltinFunc(Wc),
		},
		{
			Names:   []string{"which"},
			Short:   "Locate a command.",
			Builtin: BuiltinFunc(Which),
		},
		{
			Names:   []string{stage.WriteFile, "write-to-file"},
			Short:   "Write input lines to a file.",
			Builtin: BuiltinFunc(WriteFile),
		},
	}
}
