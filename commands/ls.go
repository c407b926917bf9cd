package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

// Ls lists directories named by its arguments and input items, or the
// current directory when there are neither. A file is listed as its own
// path. Paths that can't be read produce an in-band error line so the
// listing stays in order.
func Ls(p *Proc) int {
	cmd := &SimpleCommand{
		Use:   "ls [-a] [PATH]...",
		Short: "List information about the PATHs (the current directory by default).",
	}
	listAll := cmd.Flags().Bool('a', "don't ignore entries starting with .")

	return cmd.Run(p, func() int {
		w := p.Stdout()
		ret := 0

		list := func(target string) {
			info, err := p.Fs.Stat(target)
			if err != nil {
				fmt.Fprintf(w, "ls: cannot access '%s': %s\n", target, errReason(err))
				ret = 1
				return
			}

			if !info.IsDir() {
				fmt.Fprintln(w, target)
				return
			}

			// ReadDir returns entries sorted by name.
			entries, err := afero.ReadDir(p.Fs, target)
			if err != nil {
				fmt.Fprintf(w, "ls: cannot access '%s': %s\n", target, errReason(err))
				ret = 1
				return
			}

			for _, entry := range entries {
				if !*listAll && strings.HasPrefix(entry.Name(), ".") {
					continue
				}
				fmt.Fprintln(w, entry.Name())
			}
		}

		listed := false
		for _, arg := range cmd.Flags().Args() {
			listed = true
			list(arg)
		}

		if err := p.Each(func(item string) {
			listed = true
			list(item)
		}); err != nil {
			return 1
		}

		if !listed {
			list(".")
		}

		return ret
	})
}
