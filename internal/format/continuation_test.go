package format

import "testing"

func TestDecideContinuation(t *testing.T) {
	cases := []struct {
		last, next rune
		bracket    BlockType
		inSwitch   bool
		want       int
	}{
		{'+', 0, Curly, false, 1},
		{'=', 'x', Parenthesis, false, 1},
		{'a', '.', Curly, false, 1},
		{'a', '*', Curly, false, 1},
		{':', 'a', Curly, false, 1},
		{':', 'a', Curly, true, 0},
		{',', 'a', Curly, false, 1},
		{',', 'a', Parenthesis, false, 0},
		{',', 'a', Square, false, 0},
		{'a', '?', Curly, false, 1},
		{'?', 'a', Curly, false, 0},
		{'{', 'a', Curly, false, 0},
		{'}', '}', Curly, false, 0},
		{0, 0, Curly, false, 0},
	}
	for _, tc := range cases {
		got := decideContinuation(tc.last, tc.next, tc.bracket, tc.inSwitch)
		if got != tc.want {
			t.Errorf("decideContinuation(%q, %q, %v, %v) = %d, want %d",
				tc.last, tc.next, tc.bracket, tc.inSwitch, got, tc.want)
		}
	}
}

func TestConditionPair(t *testing.T) {
	cases := map[string]bool{
		"if let a = b,":       true,
		"    guard var x = y": true,
		"if x > 0 {":          false,
		"let a = b":           false,
		"":                    false,
		"(if let":             false,
	}
	for line, want := range cases {
		if got := conditionPair(line); got != want {
			t.Errorf("conditionPair(%q) = %v, want %v", line, got, want)
		}
	}
}
