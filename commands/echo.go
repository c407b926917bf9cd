package commands

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	unescapeOctal   = regexp.MustCompile(`\\0[0-8][0-8]?[0-8]?`)
	unescapeHex     = regexp.MustCompile(`\\x[0-9a-fA-F][0-9a-fA-F]?`)
	unescapeReplace = strings.NewReplacer(
		`\n`, "\n", // newline
		`\r`, "\r", // carriage return
		`\t`, "\t", // horizontal tab
		`\\`, `\`, // backslash literal
		`\b`, "\b", // backspace
		`\a`, "\a", // alert
		`\f`, "\f", // form feed
		`\v`, "\v", // vertical tab
	)
)

func unescape(s string) string {
	s = unescapeReplace.Replace(s)
	s = unescapeOctal.ReplaceAllStringFunc(s, func(arg string) string {
		out, err := strconv.ParseInt(arg[2:], 8, 8)
		if err != nil {
			return arg
		}
		return string(rune(out))
	})
	s = unescapeHex.ReplaceAllStringFunc(s, func(arg string) string {
		out, err := strconv.ParseInt(arg[2:], 16, 8)
		if err != nil {
			return arg
		}
		return string(rune(out))
	})
	return s
}

// Echo emits its arguments joined by spaces, when it has any, then passes
// its input through unchanged.
func Echo(p *Proc) int {
	cmd := &SimpleCommand{
		Use:   "echo [-e] [ARG] ...",
		Short: "Display a line of text, then copy input to output.",
	}

	opt := cmd.Flags()
	escaped := opt.Bool('e', "interpret backslash escapes")

	return cmd.Run(p, func() int {
		if args := opt.Args(); len(args) > 0 {
			line := strings.Join(args, " ")
			if *escaped {
				line = unescape(line)
			}
			fmt.Fprintln(p.Stdout(), line)
		}

		if err := p.Each(p.Emit); err != nil {
			return 1
		}
		return 0
	})
}
