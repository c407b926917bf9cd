package commands

import (
	"fmt"
)

// Which locates each command named by its arguments or input items.
func Which(p *Proc) int {
	cmd := &SimpleCommand{
		Use:   "which [COMMAND...]",
		Short: "Locate a command.",
	}

	return cmd.Run(p, func() int {
		reg := NewRegistry()
		ret := 0

		locate := func(name string) {
			if _, ok := reg.Lookup(name); ok {
				fmt.Fprintf(p.Stdout(), "%s: pipeline builtin\n", name)
				return
			}

			res, err := p.Paths.LookPath(name)
			if err != nil {
				p.Errorf("no %s in PATH", name)
				ret = 1
				return
			}
			fmt.Fprintln(p.Stdout(), res)
		}

		for _, arg := range cmd.Flags().Args() {
			locate(arg)
		}
		if err := p.Each(locate); err != nil {
			return 1
		}
		return ret
	})
}
