package datasource

import (
	"bufio"
	"context"
	"io"
)

// maxLineSize is the longest line a scanner accepts
const maxLineSize = 1 << 20

// NewScanner creates a line scanner accepting lines of up to 1MiB
func NewScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return scanner
}

// ReadLines reads every line of r
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// StreamLines sends every line of r to out, until r is exhausted or ctx is cancelled.
// out is not closed.
func StreamLines(ctx context.Context, r io.Reader, out chan<- string) error {
	scanner := NewScanner(r)
	for scanner.Scan() {
		select {
		case out <- scanner.Text():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return scanner.Err()
}
