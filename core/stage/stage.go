// Package stage describes a single step of a parsed pipeline.
package stage

import (
	"fmt"
	"strings"
)

// Kind tells the orchestrator how a stage is executed.
type Kind int

const (
	// Builtin stages run in-process against the builtin registry.
	Builtin Kind = iota
	// External stages run as a child process found on the search path.
	External
)

func (k Kind) String() string {
	switch k {
	case Builtin:
		return "builtin"
	case External:
		return "external"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Names of the stages the parser injects for input and output redirection.
const (
	ReadFile  = "read-file"
	WriteFile = "write-file"
)

// Stage is one command of a pipeline. Name is never empty.
type Stage struct {
	Name string
	Args []string
	Kind Kind
}

// New creates a stage, Args is copied so the caller may reuse its slice.
func New(name string, args []string, kind Kind) Stage {
	return Stage{
		Name: name,
		Args: append([]string(nil), args...),
		Kind: kind,
	}
}

// Argv returns the full argument vector with the name in position 0.
func (s Stage) Argv() []string {
	return append([]string{s.Name}, s.Args...)
}

func (s Stage) String() string {
	return strings.Join(s.Argv(), " ")
}
