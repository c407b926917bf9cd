// Package vio holds small I/O adapters shared by the shell and its stages.
package vio

import (
	"bytes"
	"io"
	"sync"
)

// OrDiscard returns w, or a writer that discards everything if w is nil.
func OrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}

// SyncWriter serializes writes to an underlying writer so that a single
// Write call is never interleaved with another.
type SyncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

var _ io.Writer = (*SyncWriter)(nil)

// NewSyncWriter wraps w. A nil w discards writes.
func NewSyncWriter(w io.Writer) *SyncWriter {
	if sw, ok := w.(*SyncWriter); ok {
		return sw
	}
	return &SyncWriter{w: OrDiscard(w)}
}

func (s *SyncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// LineWriter splits written bytes on '\n' and hands every complete line,
// without its terminator, to a callback. A trailing partial line is held
// until Flush.
type LineWriter struct {
	emit func(string)
	buf  bytes.Buffer
}

var _ io.Writer = (*LineWriter)(nil)

// NewLineWriter creates a LineWriter calling emit once per line.
func NewLineWriter(emit func(string)) *LineWriter {
	return &LineWriter{emit: emit}
}

func (l *LineWriter) Write(p []byte) (int, error) {
	l.buf.Write(p)
	for {
		idx := bytes.IndexByte(l.buf.Bytes(), '\n')
		if idx < 0 {
			break
		}
		line := string(l.buf.Next(idx + 1))
		l.emit(line[:len(line)-1])
	}
	return len(p), nil
}

// Flush emits any buffered partial line.
func (l *LineWriter) Flush() {
	if l.buf.Len() == 0 {
		return
	}
	l.emit(l.buf.String())
	l.buf.Reset()
}
