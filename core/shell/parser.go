package shell

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/josephlewis42/pipeshell/commands"
	"github.com/josephlewis42/pipeshell/core/stage"
	"mvdan.cc/sh/v3/syntax"
)

var (
	// ErrEmptyStage is returned when a pipe has nothing on one of its sides.
	ErrEmptyStage = errors.New("empty pipeline stage")
	// ErrUnsupported is returned for shell syntax the interpreter doesn't run.
	ErrUnsupported = errors.New("unsupported syntax")
)

// Redirect holds the files named by the last `<` and `>` of a command line.
type Redirect struct {
	Input  string
	Output string
}

// Command is one pipeline of a command line, ready to execute.
type Command struct {
	Stages   []stage.Stage
	Redirect Redirect
}

// Parser turns command lines into pipelines of stages.
//
// Only simple commands joined by `|`, separated by `;` or newlines, with
// `<` and `>` redirections are accepted. Words may be quoted and may expand
// $NAME parameters.
type Parser struct {
	// Builtins decides which stages run in process. With a nil registry
	// every stage runs as a program.
	Builtins *commands.Registry
	// Getenv expands parameters, os.Getenv if nil.
	Getenv func(string) string
}

func (p *Parser) getenv(key string) string {
	if p.Getenv != nil {
		return p.Getenv(key)
	}
	return os.Getenv(key)
}

// Parse parses line into the pipelines it holds, in order. An error in any
// part rejects the whole line. Blank lines and comments produce no commands.
func (p *Parser) Parse(line string) ([]Command, error) {
	file, err := syntax.NewParser().Parse(strings.NewReader(line), "")
	if err != nil {
		return nil, err
	}

	var out []Command
	for _, stmt := range file.Stmts {
		cmd, err := p.command(stmt)
		if err != nil {
			return nil, err
		}
		out = append(out, cmd)
	}
	return out, nil
}

func (p *Parser) command(stmt *syntax.Stmt) (Command, error) {
	var out Command
	var argvs [][]string
	if err := p.flatten(stmt, &argvs, &out.Redirect); err != nil {
		return out, err
	}

	if out.Redirect.Input != "" {
		out.Stages = append(out.Stages, stage.New(stage.ReadFile, []string{out.Redirect.Input}, stage.Builtin))
	}

	for i, argv := range argvs {
		if len(argv) == 0 || argv[0] == "" {
			return out, fmt.Errorf("%w: stage %d", ErrEmptyStage, i+1)
		}
		kind := stage.External
		if _, ok := p.Builtins.Lookup(argv[0]); ok {
			kind = stage.Builtin
		}
		out.Stages = append(out.Stages, stage.New(argv[0], argv[1:], kind))
	}

	if out.Redirect.Output != "" {
		out.Stages = append(out.Stages, stage.New(stage.WriteFile, []string{out.Redirect.Output}, stage.Builtin))
	}

	return out, nil
}

// flatten appends the argument vector of every command in a pipe, left to
// right, and records redirections.
func (p *Parser) flatten(stmt *syntax.Stmt, argvs *[][]string, redirect *Redirect) error {
	switch {
	case stmt.Negated:
		return unsupported(stmt, "!")
	case stmt.Background:
		return unsupported(stmt, "&")
	case stmt.Coprocess:
		return unsupported(stmt, "|&")
	}

	for _, rd := range stmt.Redirs {
		if err := p.redirect(rd, redirect); err != nil {
			return err
		}
	}

	switch cmd := stmt.Cmd.(type) {
	case nil:
		*argvs = append(*argvs, nil)
	case *syntax.CallExpr:
		if len(cmd.Assigns) > 0 {
			return unsupported(cmd, "variable assignment")
		}
		var argv []string
		for _, word := range cmd.Args {
			arg, err := p.evalWord(word)
			if err != nil {
				return err
			}
			argv = append(argv, arg)
		}
		*argvs = append(*argvs, argv)
	case *syntax.BinaryCmd:
		if cmd.Op != syntax.Pipe {
			return unsupported(cmd, cmd.Op.String())
		}
		if err := p.flatten(cmd.X, argvs, redirect); err != nil {
			return err
		}
		return p.flatten(cmd.Y, argvs, redirect)
	default:
		return unsupported(cmd, "compound command")
	}
	return nil
}

func (p *Parser) redirect(rd *syntax.Redirect, redirect *Redirect) error {
	if rd.N != nil {
		return unsupported(rd, rd.N.Value+rd.Op.String())
	}

	target, err := p.evalWord(rd.Word)
	if err != nil {
		return err
	}
	if target == "" {
		return fmt.Errorf("%s: %w: missing file for %s", rd.Pos(), ErrUnsupported, rd.Op)
	}

	// The last redirection of each direction wins.
	switch rd.Op {
	case syntax.RdrIn:
		redirect.Input = target
	case syntax.RdrOut:
		redirect.Output = target
	default:
		return unsupported(rd, rd.Op.String())
	}
	return nil
}

func (p *Parser) evalWord(word *syntax.Word) (string, error) {
	if word == nil {
		return "", nil
	}
	var out strings.Builder
	for _, part := range word.Parts {
		if err := p.evalWordPart(&out, part, false); err != nil {
			return "", err
		}
	}
	return out.String(), nil
}

func (p *Parser) evalWordPart(out *strings.Builder, part syntax.WordPart, quoted bool) error {
	switch part := part.(type) {
	case *syntax.Lit:
		out.WriteString(unescapeLit(part.Value, quoted))

	case *syntax.SglQuoted:
		if part.Dollar {
			return unsupported(part, "$'...'")
		}
		out.WriteString(part.Value)

	case *syntax.DblQuoted:
		if part.Dollar {
			return unsupported(part, `$"..."`)
		}
		for _, subPart := range part.Parts {
			if err := p.evalWordPart(out, subPart, true); err != nil {
				return err
			}
		}

	case *syntax.ParamExp:
		if part.Param == nil || part.Excl || part.Length || part.Width ||
			part.Index != nil || part.Slice != nil || part.Repl != nil || part.Exp != nil {
			return unsupported(part, "parameter expansion")
		}
		out.WriteString(p.getenv(part.Param.Value))

	default:
		return unsupported(part, fmt.Sprintf("%T", part))
	}
	return nil
}

// unescapeLit removes the backslashes the shell would. Inside double quotes
// a backslash only escapes $, `, ", \ and newline.
func unescapeLit(lit string, quoted bool) string {
	if !strings.Contains(lit, `\`) {
		return lit
	}

	var out strings.Builder
	for i := 0; i < len(lit); i++ {
		c := lit[i]
		if c != '\\' || i+1 == len(lit) {
			out.WriteByte(c)
			continue
		}

		next := lit[i+1]
		switch {
		case next == '\n':
			// Line continuation.
		case !quoted || strings.IndexByte("$`\"\\", next) >= 0:
			out.WriteByte(next)
		default:
			out.WriteByte(c)
			out.WriteByte(next)
		}
		i++
	}
	return out.String()
}

func unsupported(node syntax.Node, what string) error {
	return fmt.Errorf("%s: %w: %s", node.Pos(), ErrUnsupported, what)
}
