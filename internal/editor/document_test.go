package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDocument(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		d := NewDocument("", "shellscript")
		assert.Equal(t, 1, d.LineCount())
		assert.Equal(t, "", d.LineText(0))
		assert.Equal(t, "shellscript", d.LanguageID())
	})

	t.Run("crlf is normalised", func(t *testing.T) {
		d := NewDocument("a\r\nb", "")
		assert.Equal(t, 2, d.LineCount())
		assert.Equal(t, "a\nb", d.Text())
	})
}

func TestDocument_LineTextOutOfRange(t *testing.T) {
	d := NewDocument("one", "")
	assert.Equal(t, "", d.LineText(-1))
	assert.Equal(t, "", d.LineText(5))
}

func TestDocument_Insert(t *testing.T) {
	t.Run("single line", func(t *testing.T) {
		d := NewDocument("", "")
		d.Insert("ls")
		d.Insert(" -la")

		assert.Equal(t, "ls -la", d.Text())
		line, col := d.Cursor()
		assert.Equal(t, 0, line)
		assert.Equal(t, 6, col)
		assert.Equal(t, 2, d.Version())
	})

	t.Run("middle of line", func(t *testing.T) {
		d := NewDocument("gt status", "")
		d.SetCursor(0, 1)
		d.Insert("i")
		assert.Equal(t, "git status", d.Text())
		_, col := d.Cursor()
		assert.Equal(t, 2, col)
	})

	t.Run("multi line", func(t *testing.T) {
		d := NewDocument("headtail", "")
		d.SetCursor(0, 4)
		d.Insert("1\n2\n3")

		assert.Equal(t, "head1\n2\n3tail", d.Text())
		line, col := d.Cursor()
		assert.Equal(t, 2, line)
		assert.Equal(t, 1, col)
	})

	t.Run("newline", func(t *testing.T) {
		d := NewDocument("ab", "")
		d.SetCursor(0, 1)
		d.NewLine()

		assert.Equal(t, "a\nb", d.Text())
		assert.Equal(t, 1, d.CursorLine())
	})

	t.Run("empty insert is a no-op", func(t *testing.T) {
		d := NewDocument("x", "")
		d.Insert("")
		assert.Equal(t, 0, d.Version())
	})
}

func TestDocument_Delete(t *testing.T) {
	t.Run("backward within line", func(t *testing.T) {
		d := NewDocument("abc", "")
		d.SetCursor(0, 3)
		assert.True(t, d.DeleteCharBackward())
		assert.Equal(t, "ab", d.Text())
	})

	t.Run("backward joins lines", func(t *testing.T) {
		d := NewDocument("ab\ncd", "")
		d.SetCursor(1, 0)
		assert.True(t, d.DeleteCharBackward())
		assert.Equal(t, "abcd", d.Text())
		line, col := d.Cursor()
		assert.Equal(t, 0, line)
		assert.Equal(t, 2, col)
	})

	t.Run("backward at start", func(t *testing.T) {
		d := NewDocument("ab", "")
		assert.False(t, d.DeleteCharBackward())
	})

	t.Run("forward within line", func(t *testing.T) {
		d := NewDocument("abc", "")
		assert.True(t, d.DeleteCharForward())
		assert.Equal(t, "bc", d.Text())
	})

	t.Run("forward joins lines", func(t *testing.T) {
		d := NewDocument("ab\ncd", "")
		d.SetCursor(0, 2)
		assert.True(t, d.DeleteCharForward())
		assert.Equal(t, "abcd", d.Text())
	})

	t.Run("forward at end", func(t *testing.T) {
		d := NewDocument("ab", "")
		d.SetCursor(0, 2)
		assert.False(t, d.DeleteCharForward())
	})

	t.Run("word backward", func(t *testing.T) {
		d := NewDocument("git commit  ", "")
		d.SetCursor(0, 12)
		d.DeleteWordBackward()
		assert.Equal(t, "git ", d.Text())
	})
}

func TestDocument_ReplaceLine(t *testing.T) {
	d := NewDocument("echo\nls", "")
	d.SetCursor(1, 1)

	assert.True(t, d.ReplaceLine(1, "ls -la"))
	assert.Equal(t, "echo\nls -la", d.Text())
	_, col := d.Cursor()
	assert.Equal(t, 6, col)

	assert.True(t, d.ReplaceLine(0, "echo hi\nthere"))
	assert.Equal(t, "echo hi there", d.LineText(0))
	line, col := d.Cursor()
	assert.Equal(t, 1, line)
	assert.Equal(t, 6, col)

	assert.False(t, d.ReplaceLine(7, "x"))
}

func TestDocument_Movement(t *testing.T) {
	d := NewDocument("long line\nab\nxyz", "")

	d.SetCursor(0, 8)
	d.MoveDown()
	line, col := d.Cursor()
	assert.Equal(t, 1, line)
	assert.Equal(t, 2, col)

	d.MoveRight()
	line, col = d.Cursor()
	assert.Equal(t, 2, line)
	assert.Equal(t, 0, col)

	d.MoveLeft()
	line, col = d.Cursor()
	assert.Equal(t, 1, line)
	assert.Equal(t, 2, col)
	assert.True(t, d.AtLineEnd())

	d.MoveUp()
	d.LineEnd()
	_, col = d.Cursor()
	assert.Equal(t, 9, col)

	d.LineStart()
	_, col = d.Cursor()
	assert.Equal(t, 0, col)

	d.MoveUp()
	d.MoveLeft()
	line, col = d.Cursor()
	assert.Equal(t, 0, line)
	assert.Equal(t, 0, col)

	d.SetCursor(99, 99)
	line, col = d.Cursor()
	assert.Equal(t, 2, line)
	assert.Equal(t, 3, col)
}

func TestLanguageForPath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"run.sh", "shellscript"},
		{"/tmp/script.PY", "python"},
		{"README.md", "markdown"},
		{"Makefile", "makefile"},
		{"notes", PlainText},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, LanguageForPath(tt.path))
		})
	}
}
