package testkit

import (
	"fmt"
	"strings"

	"swimat/internal/format"
)

// CheckOutput runs a minimal set of layout invariants on formatted text:
// 1) no carriage returns and no trailing blanks on any line
// 2) no leading or trailing blank lines
// 3) every line starts with whole indent units of opt, padded with spaces only
// inside bracket alignment
func CheckOutput(out string, opt format.Options) error {
	if out == "" {
		return nil
	}
	if strings.ContainsRune(out, '\r') {
		return fmt.Errorf("output contains a carriage return")
	}
	if strings.TrimSpace(out) != out {
		return fmt.Errorf("output is not trimmed")
	}
	tabs := opt.Unit() == "\t"
	for i, line := range strings.Split(out, "\n") {
		if strings.TrimRight(line, " \t") != line {
			return fmt.Errorf("line %d has trailing blanks: %q", i+1, line)
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if !tabs && strings.ContainsRune(indent, '\t') {
			return fmt.Errorf("line %d indents with a tab: %q", i+1, line)
		}
		if tabs && strings.Contains(strings.TrimLeft(indent, "\t"), "\t") {
			return fmt.Errorf("line %d mixes tabs after spaces: %q", i+1, line)
		}
	}
	return nil
}

// CheckIdempotent formats out again and reports any difference.
func CheckIdempotent(out string, opt format.Options) error {
	again, err := format.Format(out, opt)
	if err != nil {
		return fmt.Errorf("formatted output does not format: %w", err)
	}
	if again != out {
		return fmt.Errorf("second pass changed the output:\n--- first\n%s\n--- second\n%s", out, again)
	}
	return nil
}
