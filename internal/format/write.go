package format

import (
	"bytes"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// Writer accumulates formatted output. It is append-only apart from trimming
// trailing blanks.
type Writer struct {
	buf  []byte
	unit string
}

// NewWriter creates a writer sized for src that indents with unit.
func NewWriter(unit string, sizeHint int) *Writer {
	return &Writer{
		buf:  make([]byte, 0, sizeHint+sizeHint/8),
		unit: unit,
	}
}

// String returns the accumulated output.
func (w *Writer) String() string {
	return string(w.buf)
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Last returns the last byte written, or 0 for an empty writer.
func (w *Writer) Last() byte {
	if len(w.buf) == 0 {
		return 0
	}
	return w.buf[len(w.buf)-1]
}

// WriteString appends s verbatim.
func (w *Writer) WriteString(s string) {
	w.buf = append(w.buf, s...)
}

// WriteByte appends a single byte.
func (w *Writer) WriteByte(b byte) error {
	w.buf = append(w.buf, b)
	return nil
}

// Space writes a single space if the output doesn't already end with whitespace.
func (w *Writer) Space() {
	if len(w.buf) == 0 {
		return
	}
	if isBlank(w.Last()) || w.Last() == '\n' {
		return
	}
	w.buf = append(w.buf, ' ')
}

// TrimRight drops trailing spaces and tabs.
func (w *Writer) TrimRight() {
	n := len(w.buf)
	for n > 0 && isBlank(w.buf[n-1]) {
		n--
	}
	w.buf = w.buf[:n]
}

// Indent writes the indent unit n times. Negative counts write nothing.
func (w *Writer) Indent(n int) {
	for range n {
		w.buf = append(w.buf, w.unit...)
	}
}

// Pad writes spaces until the current line is col columns wide.
func (w *Writer) Pad(col int) {
	for c := w.Column(); c < col; c++ {
		w.buf = append(w.buf, ' ')
	}
}

// AtLineStart reports whether nothing but indentation follows the last newline.
func (w *Writer) AtLineStart() bool {
	for i := len(w.buf) - 1; i >= 0; i-- {
		switch b := w.buf[i]; {
		case b == '\n':
			return true
		case !isBlank(b):
			return false
		}
	}
	return true
}

// lineStart returns the offset just past the last newline.
func (w *Writer) lineStart() int {
	i := bytes.LastIndexByte(w.buf, '\n')
	return i + 1
}

// CurrentLine returns the text written after the last newline.
func (w *Writer) CurrentLine() string {
	return string(w.buf[w.lineStart():])
}

// Column returns the display width of the current line. A tab counts as one
// column so that tab-indented lines align with the same number of tabs.
func (w *Writer) Column() int {
	return lineWidth(w.buf[w.lineStart():])
}

func lineWidth(line []byte) int {
	width := 0
	for len(line) > 0 {
		r, size := utf8.DecodeRune(line)
		line = line[size:]
		if r == '\t' {
			width++
			continue
		}
		width += runewidth.RuneWidth(r)
	}
	return width
}

// LastNonSpace returns the last rune that is not whitespace, newlines
// included, or 0 when there is none.
func (w *Writer) LastNonSpace() rune {
	i := len(w.buf)
	for i > 0 && isSpace(w.buf[i-1]) {
		i--
	}
	if i == 0 {
		return 0
	}
	r, _ := utf8.DecodeLastRune(w.buf[:i])
	return r
}

// LastWord returns the trailing run of word characters, ignoring trailing
// whitespace.
func (w *Writer) LastWord() string {
	end := len(w.buf)
	for end > 0 && isSpace(w.buf[end-1]) {
		end--
	}
	start := end
	for start > 0 {
		r, size := utf8.DecodeLastRune(w.buf[:start])
		if !isWordRune(r) {
			break
		}
		start -= size
	}
	return string(w.buf[start:end])
}

// lastCodeRune returns the last non-blank rune of the current line before
// offset end, or 0 if the line holds nothing but blanks up to end.
func (w *Writer) lastCodeRune(end int) rune {
	if end > len(w.buf) {
		end = len(w.buf)
	}
	for end > 0 && isBlank(w.buf[end-1]) {
		end--
	}
	if end == 0 || w.buf[end-1] == '\n' {
		return 0
	}
	r, _ := utf8.DecodeLastRune(w.buf[:end])
	return r
}

func isBlank(b byte) bool {
	return b == ' ' || b == '\t'
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
