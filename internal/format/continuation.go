package format

// decideContinuation returns the continuation bonus (0 or 1) for the line that
// follows a line break. last is the final code character of the finished line
// and next the first character of the upcoming one; 0 stands for "none".
//
// This is a heuristic: a line continues the previous one when the boundary
// carries a binary operator, a member access, a colon outside a switch body, a
// comma directly inside a curly level, or a leading optional-chaining '?'.
func decideContinuation(last, next rune, bracket BlockType, inSwitch bool) int {
	if n, ok := continuationOf(last, bracket, inSwitch); ok {
		return n
	}
	if n, ok := continuationOf(next, bracket, inSwitch); ok {
		return n
	}
	if next == '?' {
		return 1
	}
	return 0
}

func continuationOf(r rune, bracket BlockType, inSwitch bool) (int, bool) {
	switch r {
	case '+', '-', '*', '=', '.':
		return 1, true
	case ':':
		if !inSwitch {
			return 1, true
		}
	case ',':
		if bracket == Curly {
			return 1, true
		}
	}
	return 0, false
}

// conditionPair reports whether a line opens a multi-clause binding
// condition such as "if let" or "guard let".
func conditionPair(line string) bool {
	first, second := firstTwoWords(line)
	switch first {
	case "if", "guard":
		return second == "let" || second == "var"
	}
	return false
}

func firstTwoWords(line string) (string, string) {
	var words [2]string
	n := 0
	i := 0
	for i < len(line) && n < 2 {
		for i < len(line) && !isWordByte(line[i]) {
			if !isSpace(line[i]) {
				return words[0], words[1]
			}
			i++
		}
		start := i
		for i < len(line) && isWordByte(line[i]) {
			i++
		}
		if start == i {
			break
		}
		words[n] = line[start:i]
		n++
	}
	return words[0], words[1]
}
