package commands

import (
	"bufio"
	"os"
)

// WriteFile truncates FILE and writes every input item to it as a line. With
// no FILE the configured default output is used. If the file can't be opened
// the input is still consumed so upstream stages finish normally.
func WriteFile(p *Proc) int {
	cmd := &SimpleCommand{
		Use:   "write-file [FILE]",
		Short: "Write each input line to FILE, replacing its contents.",
	}

	return cmd.Run(p, func() int {
		args := cmd.Flags().Args()
		var target string
		switch len(args) {
		case 0:
			target = p.Config.DefaultOutput
		case 1:
			target = args[0]
		default:
			p.Errorf("expected at most one FILE, got %d", len(args))
			p.Each(func(string) {})
			return 2
		}

		fd, err := p.Fs.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			p.Errorf("cannot open '%s': %s", target, errReason(err))
			p.Each(func(string) {})
			return 1
		}

		w := bufio.NewWriter(fd)
		var writeErr error
		eachErr := p.Each(func(item string) {
			if writeErr != nil {
				return
			}
			if _, err := w.WriteString(item); err != nil {
				writeErr = err
				return
			}
			writeErr = w.WriteByte('\n')
		})

		if writeErr == nil {
			writeErr = w.Flush()
		}
		if err := fd.Close(); writeErr == nil {
			writeErr = err
		}

		if writeErr != nil {
			p.Errorf("writing '%s': %s", target, errReason(writeErr))
			return 1
		}
		if eachErr != nil {
			return 1
		}
		return 0
	})
}
