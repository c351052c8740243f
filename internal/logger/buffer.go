package logger

import (
	"strings"
	"sync"
	"sync/atomic"
)

// DefaultBufferSize is the number of lines Recent keeps unless configured.
const DefaultBufferSize = 500

var recent atomic.Pointer[Buffer] //nolint:gochecknoglobals

func init() { //nolint: gochecknoinits
	recent.Store(NewBuffer(DefaultBufferSize))
}

// Recent returns the buffer attached to the global logger by Init.
func Recent() *Buffer {
	return recent.Load()
}

func setRecent(b *Buffer) {
	recent.Store(b)
}

// Buffer is a bounded ring of log lines kept in memory. It is safe for
// concurrent use and implements io.Writer.
type Buffer struct {
	mu    sync.Mutex
	lines []string
	next  int
	full  bool
}

// NewBuffer returns a buffer holding at most size lines.
func NewBuffer(size int) *Buffer {
	if size < 1 {
		size = 1
	}

	return &Buffer{lines: make([]string, size)}
}

// Size is the capacity in lines.
func (b *Buffer) Size() int {
	return len(b.lines)
}

// Write stores every non-empty line of p.
func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, line := range strings.Split(string(p), "\n") {
		line = strings.TrimRight(line, "\r ")
		if line == "" {
			continue
		}

		b.lines[b.next] = line
		b.next = (b.next + 1) % len(b.lines)

		if b.next == 0 {
			b.full = true
		}
	}

	return len(p), nil
}

// Lines returns up to n of the most recent lines, oldest first. n <= 0 returns all.
func (b *Buffer) Lines(n int) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	count := b.next
	if b.full {
		count = len(b.lines)
	}

	if n <= 0 || n > count {
		n = count
	}

	out := make([]string, 0, n)
	start := b.next - n

	for i := range n {
		idx := (start + i + len(b.lines)) % len(b.lines)
		out = append(out, b.lines[idx])
	}

	return out
}

// Reset drops every stored line.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	clear(b.lines)
	b.next = 0
	b.full = false
}
