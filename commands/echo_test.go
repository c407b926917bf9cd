package commands

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

func TestUnescape(t *testing.T) {
	cases := []struct {
		escaped  string
		expected string
	}{
		{"not escaped", "not escaped"},
		{`newline\n`, "newline\n"},
		{`double-escape\\n`, `double-escape\n`},
		{`double-escape\\n`, `double-escape\n`},
		// Octal
		{`\07`, string(rune(7))},
		{`\011`, "\t"},
		{`\0101`, "A"},
		// Hex
		{`\x7`, string(rune(07))},
		{`\x9`, "\t"},
		{`\x4A`, "J"},
	}

	for _, tc := range cases {
		t.Run(tc.escaped, func(t *testing.T) {
			actual := unescape(tc.escaped)

			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestEcho(t *testing.T) {
	cases := map[string]struct {
		args  []string
		input []string
		want  []string
	}{
		"args":        {[]string{"echo", "hello", "world"}, nil, []string{"hello world"}},
		"passthrough": {[]string{"echo"}, []string{"", "x"}, []string{"", "x"}},
		"args-first":  {[]string{"print", "head"}, []string{"tail"}, []string{"head", "tail"}},
		"escapes":     {[]string{"echo", "-e", `a\nb`}, nil, []string{"a", "b"}},
		"no-escapes":  {[]string{"echo", `a\nb`}, nil, []string{`a\nb`}},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			res := runBuiltin(t, afero.NewMemMapFs(), Echo, tc.args, tc.input...)

			assert.Equal(t, 0, res.Status)
			assert.Equal(t, tc.want, res.Out)
		})
	}
}
