package logging

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"
)

// Backlog keeps the most recent log lines in a ring. It is an io.Writer so a
// slog handler can write straight into it.
type Backlog struct {
	mu      sync.Mutex
	ring    []string
	idx     int
	count   int
	version uint64
}

// NewBacklog returns a backlog holding up to max lines.
func NewBacklog(max int) *Backlog {
	if max <= 0 {
		max = defaultBacklogLines
	}
	return &Backlog{ring: make([]string, max)}
}

// Write appends each newline-terminated line in p.
func (b *Backlog) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, line := range bytes.Split(bytes.TrimRight(p, "\n"), []byte("\n")) {
		b.push(string(line))
	}
	return len(p), nil
}

// Seed appends lines, typically the tail of an earlier log file.
func (b *Backlog) Seed(lines []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, line := range lines {
		b.push(line)
	}
}

// Lines returns the stored lines, oldest first.
func (b *Backlog) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return unwind(b.ring, b.idx, b.count)
}

// Version increases with every stored line.
func (b *Backlog) Version() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.version
}

func (b *Backlog) push(line string) {
	b.ring[b.idx] = line
	b.idx = (b.idx + 1) % len(b.ring)
	if b.count < len(b.ring) {
		b.count++
	}
	b.version++
}

// ReadTail returns at most maxLines from the end of the file at path. A
// missing file yields no lines.
func ReadTail(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count, idx := 0, 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return unwind(ring, idx, count), nil
}

// unwind copies count entries out of ring, oldest first, where idx is the next
// write position.
func unwind(ring []string, idx, count int) []string {
	lines := make([]string, count)
	if count == len(ring) {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%len(ring)]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines
}
