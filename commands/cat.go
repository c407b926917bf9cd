package commands

import (
	"bufio"
)

// maxLineLength is the longest line file readers will emit.
const maxLineLength = 1024 * 1024

// Cat emits the lines of each file named by its arguments. Without
// arguments each input item is read as a file name.
func Cat(p *Proc) int {
	cmd := &SimpleCommand{
		Use:   "cat [FILE]...",
		Short: "Emit the lines of each FILE, or of each file named in the input.",
	}

	return cmd.Run(p, func() int {
		ret := 0
		readFile := func(name string) {
			if err := catFile(p, name); err != nil {
				p.Errorf("cannot open '%s': %s", name, errReason(err))
				ret = 1
			}
		}

		if files := cmd.Flags().Args(); len(files) > 0 {
			for _, name := range files {
				if p.Context().Err() != nil {
					return 1
				}
				readFile(name)
			}
			return ret
		}

		if err := p.Each(readFile); err != nil {
			return 1
		}
		return ret
	})
}

func catFile(p *Proc, name string) error {
	fd, err := p.Fs.Open(name)
	if err != nil {
		return err
	}
	defer fd.Close()

	scanner := bufio.NewScanner(fd)
	scanner.Buffer(make([]byte, 64*1024), maxLineLength)
	for scanner.Scan() {
		if p.Context().Err() != nil {
			// Pipeline interrupted, stop reading.
			return nil
		}
		p.Emit(scanner.Text())
	}
	return scanner.Err()
}
