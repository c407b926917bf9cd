package commands

import (
	"regexp"
	"strings"
)

// Grep keeps the input items that contain PATTERN.
func Grep(p *Proc) int {
	cmd := &SimpleCommand{
		Use:   "grep [-iEv] PATTERN",
		Short: "Pass through input lines containing PATTERN.",
	}

	invert := cmd.Flags().Bool('v', "Select lines not matching the pattern.")
	ignoreCase := cmd.Flags().Bool('i', "Perform pattern matching in searches without regard to case.")
	extended := cmd.Flags().Bool('E', "Interpret PATTERN as a regular expression.")

	return cmd.Run(p, func() int {
		args := cmd.Flags().Args()
		if len(args) != 1 {
			p.Errorf("expected exactly one PATTERN, got %d", len(args))
			return 2
		}

		pattern := args[0]
		var matches func(string) bool
		switch {
		case *extended:
			if *ignoreCase {
				pattern = "(?i)" + pattern
			}
			regex, err := regexp.Compile(pattern)
			if err != nil {
				cmd.LogProgramError(p, err)
				return 2
			}
			matches = regex.MatchString
		case *ignoreCase:
			pattern = strings.ToLower(pattern)
			matches = func(line string) bool {
				return strings.Contains(strings.ToLower(line), pattern)
			}
		default:
			matches = func(line string) bool {
				return strings.Contains(line, pattern)
			}
		}

		if err := p.Each(func(line string) {
			if matches(line) != *invert {
				p.Emit(line)
			}
		}); err != nil {
			return 1
		}
		return 0
	})
}
