package format

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isWordByte(b byte) bool {
	return b == '_' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9') || b >= utf8.RuneSelf
}

func isLetterAt(src string, pos int) bool {
	if pos >= len(src) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(src[pos:])
	return unicode.IsLetter(r)
}

func wordRuneBefore(src string, pos int) bool {
	if pos <= 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(src[:pos])
	return isWordRune(r)
}

// skipBlanks returns the first position at or after pos that is not a space,
// tab or carriage return.
func skipBlanks(src string, pos int) int {
	for pos < len(src) && (isBlank(src[pos]) || src[pos] == '\r') {
		pos++
	}
	return pos
}

// lineEnd returns the position of the next newline at or after pos, or len(src).
func lineEnd(src string, pos int) int {
	if i := strings.IndexByte(src[pos:], '\n'); i >= 0 {
		return pos + i
	}
	return len(src)
}

// wordAt returns the run of word characters starting at pos.
func wordAt(src string, pos int) string {
	end := pos
	for end < len(src) {
		r, size := utf8.DecodeRuneInString(src[end:])
		if !isWordRune(r) {
			break
		}
		end += size
	}
	return src[pos:end]
}

// brokenAfter reports whether only blanks and an optional line comment sit
// between pos and the next newline.
func brokenAfter(src string, pos int) bool {
	i := skipBlanks(src, pos)
	if i >= len(src) {
		return false
	}
	return src[i] == '\n' || strings.HasPrefix(src[i:], "//")
}

// scanString scans a string literal starting at the opening quote and returns
// the position just past the closing quote. Escapes and interpolations are
// skipped as a whole; single-line literals may not cross a newline.
func scanString(src string, pos int) (int, bool) {
	if strings.HasPrefix(src[pos:], `"""`) {
		return scanMultilineString(src, pos+3, `"""`)
	}
	i := pos + 1
	for i < len(src) {
		switch src[i] {
		case '\\':
			if i+1 < len(src) && src[i+1] == '(' {
				end, ok := scanInterpolation(src, i+2)
				if !ok {
					return len(src), false
				}
				i = end
				continue
			}
			i += 2
		case '"':
			return i + 1, true
		case '\n':
			return i, false
		default:
			i++
		}
	}
	return len(src), false
}

func scanMultilineString(src string, pos int, closing string) (int, bool) {
	i := pos
	for i < len(src) {
		switch {
		case src[i] == '\\':
			if i+1 < len(src) && src[i+1] == '(' {
				end, ok := scanInterpolation(src, i+2)
				if !ok {
					return len(src), false
				}
				i = end
				continue
			}
			i += 2
		case strings.HasPrefix(src[i:], closing):
			return i + len(closing), true
		default:
			i++
		}
	}
	return len(src), false
}

// scanInterpolation scans the body of "\( ... )" from just after the opening
// parenthesis and returns the position past the matching ')'.
func scanInterpolation(src string, pos int) (int, bool) {
	depth := 1
	i := pos
	for i < len(src) {
		switch src[i] {
		case '"':
			end, ok := scanString(src, i)
			if !ok {
				return len(src), false
			}
			i = end
			continue
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
		i++
	}
	return len(src), false
}

// scanRawString scans a #"..."# literal with any number of hashes. ok is
// false when pos does not start a raw string; closed is false when it does
// but the closing delimiter is missing.
func scanRawString(src string, pos int) (end int, ok, closed bool) {
	hashes := 0
	for pos+hashes < len(src) && src[pos+hashes] == '#' {
		hashes++
	}
	body := pos + hashes
	if body >= len(src) || src[body] != '"' {
		return pos, false, false
	}
	suffix := strings.Repeat("#", hashes)
	if strings.HasPrefix(src[body:], `"""`) {
		end, closed = scanMultilineString(src, body+3, `"""`+suffix)
		return end, true, closed
	}
	closing := `"` + suffix
	for i := body + 1; i < len(src); i++ {
		if src[i] == '\n' {
			return i, true, false
		}
		if strings.HasPrefix(src[i:], closing) {
			return i + len(closing), true, true
		}
	}
	return len(src), true, false
}

// scanBlockComment scans a possibly nested /* ... */ comment starting at pos
// and returns the position past its terminator.
func scanBlockComment(src string, pos int) (int, bool) {
	depth := 0
	i := pos
	for i+1 < len(src) {
		switch {
		case src[i] == '/' && src[i+1] == '*':
			depth++
			i += 2
		case src[i] == '*' && src[i+1] == '/':
			depth--
			i += 2
			if depth == 0 {
				return i, true
			}
		default:
			i++
		}
	}
	return len(src), false
}

// scanGeneric recognizes a generic parameter or argument list starting at the
// '<' at pos and returns the position past its closing '>'. A generic list is
// glued to the preceding identifier, holds only type syntax on one line, and
// is followed by punctuation, whitespace or the end of input.
func scanGeneric(src string, pos int) (int, bool) {
	if !wordRuneBefore(src, pos) || pos+1 >= len(src) {
		return pos, false
	}
	first, _ := utf8.DecodeRuneInString(src[pos+1:])
	if !(first == '_' || unicode.IsLetter(first) || first == '(' || first == '[') {
		return pos, false
	}

	angle, paren, square := 1, 0, 0
	i := pos + 1
	for i < len(src) {
		c := src[i]
		switch {
		case c == '<':
			angle++
		case c == '>':
			angle--
			if angle == 0 {
				if paren != 0 || square != 0 {
					return pos, false
				}
				end := i + 1
				if !genericFollower(src, end) {
					return pos, false
				}
				return end, true
			}
		case c == '(':
			paren++
		case c == ')':
			if paren == 0 {
				return pos, false
			}
			paren--
		case c == '[':
			square++
		case c == ']':
			if square == 0 {
				return pos, false
			}
			square--
		case c == '-':
			if i+1 >= len(src) || src[i+1] != '>' {
				return pos, false
			}
			i++
		case c == '&':
			if i+1 < len(src) && src[i+1] == '&' {
				return pos, false
			}
		case c == ' ' || c == ',' || c == '.' || c == ':' || c == '?' || c == '!':
		case isWordByte(c):
		default:
			return pos, false
		}
		i++
	}
	return pos, false
}

func genericFollower(src string, pos int) bool {
	if pos >= len(src) {
		return true
	}
	return strings.IndexByte(" \t\r\n()[]{}.,:;?!=>", src[pos]) >= 0
}

// scanTernary looks for the ':' that completes a "cond ? a : b" expression
// whose '?' sits at pos. The '?' must be surrounded by whitespace and the
// colon must be on the same line at the same bracket depth.
func scanTernary(src string, pos int) (int, bool) {
	if pos == 0 || pos+1 >= len(src) {
		return pos, false
	}
	if !isBlank(src[pos-1]) || !isBlank(src[pos+1]) {
		return pos, false
	}
	depth, nested := 0, 0
	i := pos + 1
	for i < len(src) {
		c := src[i]
		switch c {
		case '\n':
			return pos, false
		case '"':
			end, ok := scanString(src, i)
			if !ok {
				return pos, false
			}
			i = end
			continue
		case '/':
			if i+1 < len(src) && (src[i+1] == '/' || src[i+1] == '*') {
				return pos, false
			}
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth < 0 {
				return pos, false
			}
		case '?':
			if depth == 0 && isBlank(src[i-1]) && i+1 < len(src) && isBlank(src[i+1]) {
				nested++
			}
		case ':':
			if depth == 0 {
				if nested == 0 {
					if strings.TrimSpace(src[pos+1:i]) == "" {
						return pos, false
					}
					return i, true
				}
				nested--
			}
		}
		i++
	}
	return pos, false
}
