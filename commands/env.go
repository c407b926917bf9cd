package commands

import (
	"fmt"
	"sort"
)

// Env emits the environment, one NAME=VALUE per line in sorted order.
func Env(p *Proc) int {
	cmd := &SimpleCommand{
		Use:   "env",
		Short: "Print the environment passed to external commands.",
	}

	return cmd.Run(p, func() int {
		env := append([]string(nil), p.Env...)
		sort.Strings(env)
		for _, envDef := range env {
			fmt.Fprintln(p.Stdout(), envDef)
		}

		return 0
	})
}
