package vio

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineWriter(t *testing.T) {
	var lines []string
	w := NewLineWriter(func(s string) { lines = append(lines, s) })

	fmt.Fprint(w, "first\nsec")
	fmt.Fprint(w, "ond\n\nthi")
	assert.Equal(t, []string{"first", "second", ""}, lines)

	w.Flush()
	assert.Equal(t, []string{"first", "second", "", "thi"}, lines)

	// Nothing buffered, nothing emitted.
	w.Flush()
	assert.Len(t, lines, 4)
}

func TestSyncWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewSyncWriter(buf)
	assert.Same(t, w, NewSyncWriter(w))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fmt.Fprintln(w, "0123456789")
		}()
	}
	wg.Wait()

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, "0123456789", line)
	}
}

func TestOrDiscard(t *testing.T) {
	n, err := OrDiscard(nil).Write([]byte("abc"))
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
}
