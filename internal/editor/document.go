// Package editor provides the multi-line text document edited in the TUI
// host. A Document holds its lines as rune slices with a single cursor and
// is safe for concurrent use: the UI goroutine edits it while reactions read it.
package editor

import (
	"strings"
	"sync"
	"unicode"
)

// Document manages text content and the cursor position.
type Document struct {
	mu sync.RWMutex

	lines [][]rune
	row   int
	col   int

	languageID string
	version    int
}

// NewDocument creates a document holding text with the cursor at the start.
func NewDocument(text, languageID string) *Document {
	d := &Document{languageID: languageID}
	d.lines = splitLines(text)
	return d
}

func splitLines(text string) [][]rune {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	lines := make([][]rune, len(parts))
	for i, p := range parts {
		lines[i] = []rune(p)
	}
	return lines
}

// Text returns the full document text.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	parts := make([]string, len(d.lines))
	for i, line := range d.lines {
		parts[i] = string(line)
	}
	return strings.Join(parts, "\n")
}

// LanguageID returns the language identifier of the document.
func (d *Document) LanguageID() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.languageID
}

// SetLanguageID changes the language identifier.
func (d *Document) SetLanguageID(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.languageID = id
}

// Version increases by one with every content change.
func (d *Document) Version() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// LineCount returns the number of lines. A document always has at least one.
func (d *Document) LineCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.lines)
}

// LineText returns line n, or "" when n is out of range.
func (d *Document) LineText(n int) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if n < 0 || n >= len(d.lines) {
		return ""
	}
	return string(d.lines[n])
}

// Cursor returns the zero-based line and column (in runes) of the cursor.
func (d *Document) Cursor() (line, col int) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.row, d.col
}

// CursorLine returns the zero-based line of the cursor.
func (d *Document) CursorLine() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.row
}

// SetCursor moves the cursor, clamping to the document bounds.
func (d *Document) SetCursor(line, col int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.row = clamp(line, 0, len(d.lines)-1)
	d.col = clamp(col, 0, len(d.lines[d.row]))
}

// Insert inserts text at the cursor. Newlines split the current line.
// The cursor ends after the inserted text.
func (d *Document) Insert(text string) {
	if text == "" {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	inserted := splitLines(text)
	current := d.lines[d.row]
	before := append([]rune{}, current[:d.col]...)
	after := append([]rune{}, current[d.col:]...)

	if len(inserted) == 1 {
		line := append(before, inserted[0]...)
		d.col = len(line)
		d.lines[d.row] = append(line, after...)
		d.version++
		return
	}

	first := append(before, inserted[0]...)
	last := inserted[len(inserted)-1]
	newCol := len(last)
	last = append(append([]rune{}, last...), after...)

	replacement := make([][]rune, 0, len(inserted))
	replacement = append(replacement, first)
	replacement = append(replacement, inserted[1:len(inserted)-1]...)
	replacement = append(replacement, last)

	lines := make([][]rune, 0, len(d.lines)+len(inserted)-1)
	lines = append(lines, d.lines[:d.row]...)
	lines = append(lines, replacement...)
	lines = append(lines, d.lines[d.row+1:]...)

	d.lines = lines
	d.row += len(inserted) - 1
	d.col = newCol
	d.version++
}

// NewLine splits the current line at the cursor.
func (d *Document) NewLine() {
	d.Insert("\n")
}

// DeleteCharBackward deletes the character before the cursor, joining with
// the previous line at column zero. Returns true if anything was deleted.
func (d *Document) DeleteCharBackward() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.col > 0 {
		line := d.lines[d.row]
		d.lines[d.row] = append(append([]rune{}, line[:d.col-1]...), line[d.col:]...)
		d.col--
		d.version++
		return true
	}

	if d.row == 0 {
		return false
	}

	prev := d.lines[d.row-1]
	d.col = len(prev)
	d.lines[d.row-1] = append(append([]rune{}, prev...), d.lines[d.row]...)
	d.lines = append(d.lines[:d.row], d.lines[d.row+1:]...)
	d.row--
	d.version++
	return true
}

// DeleteCharForward deletes the character at the cursor, joining with the
// next line at the end of a line. Returns true if anything was deleted.
func (d *Document) DeleteCharForward() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	line := d.lines[d.row]
	if d.col < len(line) {
		d.lines[d.row] = append(append([]rune{}, line[:d.col]...), line[d.col+1:]...)
		d.version++
		return true
	}

	if d.row >= len(d.lines)-1 {
		return false
	}

	d.lines[d.row] = append(append([]rune{}, line...), d.lines[d.row+1]...)
	d.lines = append(d.lines[:d.row+1], d.lines[d.row+2:]...)
	d.version++
	return true
}

// DeleteWordBackward deletes the word to the left of the cursor on the current line.
func (d *Document) DeleteWordBackward() {
	d.mu.Lock()
	defer d.mu.Unlock()

	line := d.lines[d.row]
	start := wordStart(line, d.col)
	if start == d.col {
		return
	}
	d.lines[d.row] = append(append([]rune{}, line[:start]...), line[d.col:]...)
	d.col = start
	d.version++
}

// ReplaceLine replaces the text of line n. When the cursor is on that line it
// moves to the end of the new text. Returns false when n is out of range.
func (d *Document) ReplaceLine(n int, text string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if n < 0 || n >= len(d.lines) {
		return false
	}

	d.lines[n] = []rune(strings.ReplaceAll(text, "\n", " "))
	if d.row == n {
		d.col = len(d.lines[n])
	}
	d.version++
	return true
}

// MoveLeft moves the cursor one character left, wrapping to the previous line.
func (d *Document) MoveLeft() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.col > 0 {
		d.col--
	} else if d.row > 0 {
		d.row--
		d.col = len(d.lines[d.row])
	}
}

// MoveRight moves the cursor one character right, wrapping to the next line.
func (d *Document) MoveRight() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.col < len(d.lines[d.row]) {
		d.col++
	} else if d.row < len(d.lines)-1 {
		d.row++
		d.col = 0
	}
}

// MoveUp moves the cursor one line up, keeping the column where possible.
func (d *Document) MoveUp() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.row > 0 {
		d.row--
		d.col = clamp(d.col, 0, len(d.lines[d.row]))
	}
}

// MoveDown moves the cursor one line down, keeping the column where possible.
func (d *Document) MoveDown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.row < len(d.lines)-1 {
		d.row++
		d.col = clamp(d.col, 0, len(d.lines[d.row]))
	}
}

// LineStart moves the cursor to the start of the current line.
func (d *Document) LineStart() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.col = 0
}

// LineEnd moves the cursor to the end of the current line.
func (d *Document) LineEnd() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.col = len(d.lines[d.row])
}

// AtLineEnd reports whether the cursor is at the end of its line.
func (d *Document) AtLineEnd() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.col == len(d.lines[d.row])
}

// wordStart returns the start of the word ending at pos.
// A word is a sequence of non-whitespace characters.
func wordStart(line []rune, pos int) int {
	i := pos - 1
	for i >= 0 && unicode.IsSpace(line[i]) {
		i--
	}
	for i >= 0 && !unicode.IsSpace(line[i]) {
		i--
	}
	return i + 1
}

// clamp returns value clamped to the range [low, high].
func clamp(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
