package terminal

import (
	"strings"
	"sync"
)

// DefaultMaxLines is how many trailing lines an OutputBuffer keeps when no
// limit is given.
const DefaultMaxLines = 1000

// OutputBuffer is a goroutine-safe io.Writer that keeps the last lines written
// to it. An optional callback fires after each write.
type OutputBuffer struct {
	mutex    sync.Mutex
	lines    []string
	partial  strings.Builder
	maxLines int
	onWrite  func()
}

// NewOutputBuffer creates an OutputBuffer keeping at most maxLines complete
// lines. maxLines <= 0 means DefaultMaxLines. onWrite may be nil.
func NewOutputBuffer(maxLines int, onWrite func()) *OutputBuffer {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	return &OutputBuffer{maxLines: maxLines, onWrite: onWrite}
}

// Write implements io.Writer interface
func (b *OutputBuffer) Write(p []byte) (n int, err error) {
	b.mutex.Lock()
	text := string(p)
	for {
		idx := strings.IndexByte(text, '\n')
		if idx < 0 {
			break
		}
		b.partial.WriteString(text[:idx])
		b.lines = append(b.lines, b.partial.String())
		b.partial.Reset()
		text = text[idx+1:]
	}
	b.partial.WriteString(text)

	// Trim in batches so the backing array is reallocated rarely.
	if len(b.lines) > 2*b.maxLines {
		b.lines = append([]string(nil), b.lines[len(b.lines)-b.maxLines:]...)
	}
	onWrite := b.onWrite
	b.mutex.Unlock()

	if onWrite != nil {
		onWrite()
	}
	return len(p), nil
}

// String returns the retained output.
func (b *OutputBuffer) String() string {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	var sb strings.Builder
	for _, line := range b.retained() {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteString(b.partial.String())
	return sb.String()
}

// Tail returns at most the last n lines of output, including an unterminated
// last line.
func (b *OutputBuffer) Tail(n int) []string {
	if n <= 0 {
		return nil
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	lines := b.retained()
	partial := b.partial.String()

	count := len(lines)
	if partial != "" {
		count++
	}
	if count == 0 {
		return nil
	}

	result := make([]string, 0, min(n, count))
	if partial != "" {
		n--
	}
	if n > len(lines) {
		n = len(lines)
	}
	result = append(result, lines[len(lines)-n:]...)
	if partial != "" {
		result = append(result, partial)
	}
	return result
}

// Len returns the number of complete lines retained.
func (b *OutputBuffer) Len() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.retained())
}

func (b *OutputBuffer) retained() []string {
	if len(b.lines) > b.maxLines {
		return b.lines[len(b.lines)-b.maxLines:]
	}
	return b.lines
}
