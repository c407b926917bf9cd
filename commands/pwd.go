package commands

import (
	"fmt"
	"os"
)

// Pwd emits the current working directory.
func Pwd(p *Proc) int {
	cmd := &SimpleCommand{
		Use:   "pwd",
		Short: "Print the name of the current working directory.",
	}

	return cmd.Run(p, func() int {
		pwd, err := os.Getwd()
		if err != nil {
			p.Errorf("%v", err)
			return 1
		}
		fmt.Fprintln(p.Stdout(), pwd)
		return 0
	})
}
