package commands

import (
	"bufio"
	"fmt"
	"strings"
	"unicode/utf8"
)

type wcCount struct {
	lines int
	words int
	chars int
}

// addLine counts a single line, excluding its terminator.
func (w *wcCount) addLine(line string) {
	w.lines++
	w.words += len(strings.Fields(line))
	w.chars += utf8.RuneCountInString(line)
}

func (w *wcCount) Increment(other *wcCount) {
	w.lines += other.lines
	w.words += other.words
	w.chars += other.chars
}

type wcColumns struct {
	lines, words, chars bool
}

func (c wcColumns) format(count *wcCount) string {
	var out []string
	if c.lines {
		out = append(out, fmt.Sprintf("Lines: %d", count.lines))
	}
	if c.words {
		out = append(out, fmt.Sprintf("Words: %d", count.words))
	}
	if c.chars {
		out = append(out, fmt.Sprintf("Characters: %d", count.chars))
	}
	return strings.Join(out, ", ")
}

// Wc counts lines, words and characters.
//
// Each argument and each input item naming a readable file produces a
// "PATH: Lines: L, Words: W, Characters: C" line as soon as it's counted.
// Every other input item is counted as a line of text, and the text total is
// emitted once the input ends.
func Wc(p *Proc) int {
	cmd := &SimpleCommand{
		Use:   "wc [-lwm] [FILE]...",
		Short: "Count the lines, words, and characters of files and input text.",
	}

	opts := cmd.Flags()
	writeLines := opts.Bool('l', "write the number of lines")
	writeWords := opts.Bool('w', "write the number of words")
	writeChars := opts.Bool('m', "write the number of characters")

	return cmd.Run(p, func() int {
		cols := wcColumns{lines: *writeLines, words: *writeWords, chars: *writeChars}
		if !cols.lines && !cols.words && !cols.chars {
			cols = wcColumns{lines: true, words: true, chars: true}
		}

		w := p.Stdout()
		ret := 0

		for _, name := range opts.Args() {
			count, err := wcFile(p, name)
			if err != nil {
				p.Errorf("%s: %s", name, errReason(err))
				ret = 1
				continue
			}
			fmt.Fprintf(w, "%s: %s\n", name, cols.format(count))
		}

		var text wcCount
		sawText, sawFile := false, len(opts.Args()) > 0
		err := p.Each(func(item string) {
			if count, ok := wcItemFile(p, item); ok {
				sawFile = true
				fmt.Fprintf(w, "%s: %s\n", item, cols.format(count))
				return
			}
			sawText = true
			text.addLine(item)
		})
		if err != nil {
			return 1
		}

		if sawText || !sawFile {
			fmt.Fprintln(w, cols.format(&text))
		}

		return ret
	})
}

// wcItemFile counts item if it names a readable regular file.
func wcItemFile(p *Proc, item string) (*wcCount, bool) {
	if item == "" {
		return nil, false
	}
	info, err := p.Fs.Stat(item)
	if err != nil || !info.Mode().IsRegular() {
		return nil, false
	}
	count, err := wcFile(p, item)
	if err != nil {
		return nil, false
	}
	return count, true
}

func wcFile(p *Proc, name string) (*wcCount, error) {
	fd, err := p.Fs.Open(name)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	var out wcCount
	scanner := bufio.NewScanner(fd)
	scanner.Buffer(make([]byte, 64*1024), maxLineLength)
	for scanner.Scan() {
		out.addLine(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return &out, nil
}
