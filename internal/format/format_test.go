package format

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
)

func mustFormat(t *testing.T, src string, opt Options) string {
	t.Helper()
	out, err := Format(src, opt)
	if err != nil {
		t.Fatalf("Format(%q) returned error: %v", src, err)
	}
	return out
}

func TestFormatScenarios(t *testing.T) {
	cases := []struct {
		name string
		src  string
		opt  Options
		want string
	}{
		{"binary plus", "1+2", Options{}, "1 + 2"},
		{"unary minus after assignment", "let x=-1", Options{}, "let x = -1"},
		{"if body", "if x{\nreturn 1\n}", Options{IndentWidth: 2}, "if x {\n  return 1\n}"},
		{"if body with tabs", "if x{\nreturn 1\n}", Options{UseTabs: true}, "if x {\n\treturn 1\n}"},
		{"ternary kept as a unit", "a ? b : c", Options{}, "a ? b : c"},
		{"ternary spacing normalized", "a  ?  b   :  c", Options{}, "a ? b : c"},
		{"ternary middle is verbatim", `let v = c ? "a:b" : d`, Options{}, `let v = c ? "a:b" : d`},
		{"lone closing brace", "}", Options{}, "}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := mustFormat(t, tc.src, tc.opt); got != tc.want {
				t.Fatalf("Format mismatch:\nwant %q\ngot  %q", tc.want, got)
			}
		})
	}
}

func TestFormatOperatorSpacing(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"let a=b+c", "let a = b + c"},
		{"x+=1", "x += 1"},
		{"a<=b", "a <= b"},
		{"a==b", "a == b"},
		{"a!=b", "a != b"},
		{"a&&b||c", "a && b || c"},
		{"a   *   b", "a * b"},
		{"a-b", "a - b"},
		{"foo(&x)", "foo(&x)"},
		{"if !done {}", "if !done { }"},
		{"foo(-1)", "foo(-1)"},
		{"return -1", "return -1"},
		{"x = y * -2", "x = y * -2"},
		{"x = 1e-5", "x = 1e-5"},
		{"let r = 0..<10", "let r = 0..<10"},
		{"for i in 1...5 {}", "for i in 1...5 { }"},
		{"let x = a ?? b", "let x = a ?? b"},
		{"a?.b?.c", "a?.b?.c"},
		{"let s: String?", "let s: String?"},
		{"func f()->Int", "func f() -> Int"},
		{"x<<=2", "x <<= 2"},
		{"a|||b", "a ||| b"},
		{"reduce(0, +)", "reduce(0, +)"},
	}
	for _, tc := range cases {
		if got := mustFormat(t, tc.src, Options{}); got != tc.want {
			t.Errorf("Format(%q) = %q, want %q", tc.src, got, tc.want)
		}
	}
}

func TestFormatPunctuation(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"foo(a ,b)", "foo(a, b)"},
		{`let d = ["a" : 1]`, `let d = ["a": 1]`},
		{"class Foo:Bar", "class Foo: Bar"},
		{"foo( a, b )", "foo(a, b)"},
		{"[ 1, 2 ]", "[1, 2]"},
		{"if a{b}else{c}", "if a { b } else { c }"},
		{"{ }1", "{ }1"},
		{"{ }a", "{ } a"},
		{"[{ }]", "[{ }]"},
		{"foo({ x })", "foo({ x })"},
		{"foo({x})", "foo({ x })"},
		{"a{}{}", "a { } { }"},
		{"f(x){}", "f(x) { }"},
		{"let a:Array<Int>=[]", "let a: Array<Int> = []"},
		{"let m = Dictionary<String, [Int]>()", "let m = Dictionary<String, [Int]>()"},
		{"if a<b {}", "if a < b { }"},
		{"func f<T: Equatable>(x: T) {}", "func f<T: Equatable>(x: T) { }"},
		{"<#placeholder#>", "<#placeholder#>"},
	}
	for _, tc := range cases {
		if got := mustFormat(t, tc.src, Options{}); got != tc.want {
			t.Errorf("Format(%q) = %q, want %q", tc.src, got, tc.want)
		}
	}
}

func TestFormatIndentation(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "nested blocks",
			src:  "func f() {\nlet x = 1\nif x > 0 {\nprint(x)\n}\n}",
			want: "func f() {\n    let x = 1\n    if x > 0 {\n        print(x)\n    }\n}",
		},
		{
			name: "trailing operator continues",
			src:  "let total = a +\nb",
			want: "let total = a +\n    b",
		},
		{
			name: "leading dot continues",
			src:  "let y = list\n.map { $0 }\n.filter { $0 > 1 }",
			want: "let y = list\n    .map { $0 }\n    .filter { $0 > 1 }",
		},
		{
			name: "switch cases align with switch",
			src:  "switch x {\ncase 1:\nfoo()\ndefault:\nbreak\n}",
			want: "switch x {\ncase 1:\n    foo()\ndefault:\n    break\n}",
		},
		{
			name: "inline paren aligns",
			src:  "foo(a,\nb)",
			want: "foo(a,\n    b)",
		},
		{
			name: "inline paren aligns inside body",
			src:  "func f() {\nlet v = max(a,\nb)\n}",
			want: "func f() {\n    let v = max(a,\n                b)\n}",
		},
		{
			name: "broken paren indents one level",
			src:  "foo(\na,\nb\n)",
			want: "foo(\n    a,\n    b\n)",
		},
		{
			name: "broken array",
			src:  "let a = [\n1,\n2\n]",
			want: "let a = [\n    1,\n    2\n]",
		},
		{
			name: "closure on a continuation line",
			src:  "let y = list\n.map { x in\nx + 1\n}",
			want: "let y = list\n    .map { x in\n        x + 1\n    }",
		},
		{
			name: "closure body",
			src:  "list.forEach { x in\nprint(x)\n}",
			want: "list.forEach { x in\n    print(x)\n}",
		},
		{
			name: "blank lines survive",
			src:  "a\n\n\nb",
			want: "a\n\n\nb",
		},
		{
			name: "trailing whitespace dropped",
			src:  "a   \nb\t\t\n",
			want: "a\nb",
		},
		{
			name: "guard else continuation",
			src:  "guard let x = y\nelse { return }",
			want: "guard let x = y\n    else { return }",
		},
		{
			name: "else after closing brace",
			src:  "if a {\nfoo()\n}\nelse {\nbar()\n}",
			want: "if a {\n    foo()\n}\n    else {\n    bar()\n}",
		},
		{
			name: "if let clause list",
			src:  "if let a = b,\nlet c = d {\n}",
			want: "if let a = b,\n        let c = d {\n}",
		},
		{
			name: "crlf input",
			src:  "if x {\r\nreturn 1\r\n}",
			want: "if x {\n    return 1\n}",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := mustFormat(t, tc.src, Options{}); got != tc.want {
				t.Fatalf("Format mismatch:\nwant %q\ngot  %q", tc.want, got)
			}
		})
	}
}

func TestFormatComments(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "trailing comment does not continue the line",
			src:  "// header\nlet x = 1 // trailing +\nlet y = 2",
			want: "// header\nlet x = 1 // trailing +\nlet y = 2",
		},
		{
			name: "column zero comment stays put",
			src:  "func f() {\n// note\nlet x = 1\n}",
			want: "func f() {\n// note\n    let x = 1\n}",
		},
		{
			name: "indented comment follows the block",
			src:  "func f() {\n  // note\n}",
			want: "func f() {\n    // note\n}",
		},
		{
			name: "block comment is verbatim",
			src:  "/* a  +  b */\nlet x=1",
			want: "/* a  +  b */\nlet x = 1",
		},
		{
			name: "nested block comment",
			src:  "/* outer /* inner */ still */ x",
			want: "/* outer /* inner */ still */ x",
		},
		{
			name: "shebang",
			src:  "#!/usr/bin/env swift\nprint(1)",
			want: "#!/usr/bin/env swift\nprint(1)",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := mustFormat(t, tc.src, Options{}); got != tc.want {
				t.Fatalf("Format mismatch:\nwant %q\ngot  %q", tc.want, got)
			}
		})
	}
}

func TestFormatPreprocessor(t *testing.T) {
	src := "#if DEBUG\nlet a=1\n#else\nlet a=2\n#endif"
	want := "#if DEBUG\n    let a = 1\n#else\n    let a = 2\n#endif"
	if got := mustFormat(t, src, Options{}); got != want {
		t.Fatalf("Format mismatch:\nwant %q\ngot  %q", want, got)
	}
}

func TestFormatStringLiterals(t *testing.T) {
	cases := []string{
		`let s = "a  +  b"`,
		`let s = "a \(foo("b)")) c"`,
		`let s = "esc \" quote"`,
		`let r = #"raw "quoted" text"#`,
		"let m = \"\"\"\n  line  one\n    line two\n  \"\"\"",
	}
	for _, src := range cases {
		if got := mustFormat(t, src, Options{}); got != src {
			t.Errorf("Format(%q) = %q, want input unchanged", src, got)
		}
	}
}

func TestFormatUnterminatedLiteral(t *testing.T) {
	cases := []struct {
		src    string
		offset int
	}{
		{`let s="abc`, 6},
		{"let s = \"abc\nlet t = 1", 8},
		{"/* never closed", 0},
		{"x = #\"raw", 4},
		{"let m = \"\"\"\nopen", 8},
	}
	for _, tc := range cases {
		out, err := Format(tc.src, Options{})
		if err == nil {
			t.Fatalf("Format(%q) = %q, want error", tc.src, out)
		}
		if out != "" {
			t.Errorf("Format(%q) returned output %q alongside the error", tc.src, out)
		}
		if !errors.Is(err, ErrUnterminatedLiteral) {
			t.Errorf("Format(%q) error %v is not ErrUnterminatedLiteral", tc.src, err)
		}
		var ferr *Error
		if !errors.As(err, &ferr) {
			t.Fatalf("Format(%q) error %T is not *Error", tc.src, err)
		}
		if ferr.Kind != KindUnterminatedLiteral || ferr.Offset != tc.offset {
			t.Errorf("Format(%q) error = %+v, want kind %v offset %d", tc.src, ferr, KindUnterminatedLiteral, tc.offset)
		}
	}
}

func TestRunReportsUnbalancedBrackets(t *testing.T) {
	var seen []int
	res, err := Run("a)\nb", Options{OnUnbalanced: func(off int) { seen = append(seen, off) }})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.Text != "a)\nb" {
		t.Fatalf("Run text = %q, want %q", res.Text, "a)\nb")
	}
	if len(res.Unbalanced) != 1 || res.Unbalanced[0] != 1 {
		t.Fatalf("Unbalanced = %v, want [1]", res.Unbalanced)
	}
	if len(seen) != 1 || seen[0] != 1 {
		t.Fatalf("OnUnbalanced saw %v, want [1]", seen)
	}

	res, err = Run("}\n}", Options{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.Text != "}\n}" || len(res.Unbalanced) != 2 {
		t.Fatalf("Run = %+v, want two tolerated closers", res)
	}
}

const sampleFormatted = `import Foundation

class Foo: Bar {
    var items: [String] = []
    func run(_ x: Int) -> Int {
        guard x > 0 else { return -1 }
        switch x {
        case 1:
            return 1
        default:
            return items.count * 2
        }
    }
}`

const sampleMessy = `import Foundation

class Foo:Bar{
var items:[String]=[]
func run(_ x:Int)->Int{
guard x>0 else{return -1}
switch x{
case 1:
return 1
default:
return items.count*2
}
}
}`

func TestFormatSample(t *testing.T) {
	if got := mustFormat(t, sampleMessy, Options{}); got != sampleFormatted {
		t.Fatalf("messy sample mismatch:\nwant:\n%s\ngot:\n%s", sampleFormatted, got)
	}
	if got := mustFormat(t, sampleFormatted, Options{}); got != sampleFormatted {
		t.Fatalf("formatted sample changed:\nwant:\n%s\ngot:\n%s", sampleFormatted, got)
	}
}

func TestFormatConcurrentRuns(t *testing.T) {
	var wg sync.WaitGroup
	results := make([]string, 16)
	errs := make([]error, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			opt := Options{IndentWidth: 2 + i%2*2}
			results[i], errs[i] = Format(sampleMessy, opt)
		}(i)
	}
	wg.Wait()
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("run %d failed: %v", i, errs[i])
		}
		want := sampleFormatted
		if i%2 == 0 {
			want = reindent(sampleFormatted, 2)
		}
		if results[i] != want {
			t.Fatalf("run %d produced %q", i, results[i])
		}
	}
}

// reindent converts four-space indentation to width spaces per level.
func reindent(s string, width int) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		levels := (len(line) - len(trimmed)) / 4
		lines[i] = strings.Repeat(" ", levels*width) + trimmed
	}
	return strings.Join(lines, "\n")
}

func BenchmarkFormatSample(b *testing.B) {
	src := strings.Repeat(sampleMessy+"\n", 50)
	b.SetBytes(int64(len(src)))
	for b.Loop() {
		if _, err := Format(src, Options{}); err != nil {
			b.Fatal(err)
		}
	}
}

var propertyCorpus = []string{
	sampleMessy,
	"1+2",
	"let x=-1",
	"if x{\nreturn 1\n}",
	"a ? b : c",
	"func f() {\nlet x = 1\nif x > 0 {\nprint(x)\n}\n}",
	"switch x {\ncase 1:\nfoo()\ndefault:\nbreak\n}",
	"func f() {\nlet v = max(a,\nb)\n}",
	"foo(\na,\nb\n)",
	"let y = list\n.map { x in\nx + 1\n}",
	"// header\nlet x = 1 // trailing +\nlet y = 2",
	"#if DEBUG\nlet a=1\n#else\nlet a=2\n#endif",
	`let s = "a \(foo("b)")) c"`,
	"let m = \"\"\"\n  line  one\n  \"\"\"",
	"let a:Array<Int>=[]",
	"x = 1e-5*y",
	"let r = 0..<10",
	"if a {\nfoo()\n}\nelse {\nbar()\n}",
}

func TestFormatProperties(t *testing.T) {
	for _, src := range propertyCorpus {
		once := mustFormat(t, src, Options{})
		twice := mustFormat(t, once, Options{})
		if once != twice {
			t.Errorf("formatting is not idempotent for %q:\nonce  %q\ntwice %q", src, once, twice)
		}
		for _, br := range "()[]{}" {
			if strings.Count(src, string(br)) != strings.Count(once, string(br)) {
				t.Errorf("bracket %q count changed for %q: %q", br, src, once)
			}
		}
		for i, line := range strings.Split(once, "\n") {
			if strings.TrimRight(line, " \t") != line {
				t.Errorf("line %d of %q has trailing whitespace: %q", i+1, once, line)
			}
		}
		if once != strings.TrimSpace(once) {
			t.Errorf("output of %q is not trimmed: %q", src, once)
		}
		for _, lit := range literalSpans(src) {
			if !strings.Contains(once, lit) {
				t.Errorf("literal %q of %q not preserved: %q", lit, src, once)
			}
		}
		if got, want := operatorTokens(once), operatorTokens(src); !slices.Equal(got, want) {
			t.Errorf("operators of %q changed:\nsrc %q\nout %q", src, want, got)
		}
	}
}

// literalSpans returns every string literal and comment in src. Line comments
// lose trailing blanks, as every output line does.
func literalSpans(src string) []string {
	var spans []string
	for i := 0; i < len(src); {
		end, ok := skipLiteral(src, i)
		if !ok {
			i++
			continue
		}
		if end <= i {
			break
		}
		lit := src[i:end]
		if strings.HasPrefix(lit, "//") {
			lit = strings.TrimRight(lit, " \t")
		}
		spans = append(spans, lit)
		i = end
	}
	return spans
}

// skipLiteral reports whether a string literal or comment starts at pos and
// where it ends. A literal left open ends at len(src).
func skipLiteral(src string, pos int) (int, bool) {
	switch {
	case strings.HasPrefix(src[pos:], "//"):
		return lineEnd(src, pos), true
	case strings.HasPrefix(src[pos:], "/*"):
		end, ok := scanBlockComment(src, pos)
		if !ok {
			return len(src), true
		}
		return end, true
	case src[pos] == '#':
		end, ok, _ := scanRawString(src, pos)
		return end, ok
	case src[pos] == '"':
		end, _ := scanString(src, pos)
		return end, true
	}
	return pos, false
}

// operatorTokens lists the table operators of src outside literals and
// generic argument lists, matched longest first.
func operatorTokens(src string) []string {
	var ops []string
	for i := 0; i < len(src); {
		if end, ok := skipLiteral(src, i); ok {
			i = max(end, i+1)
			continue
		}
		if src[i] == '<' {
			if strings.HasPrefix(src[i:], "<#") {
				i += 2
				continue
			}
			if end, ok := scanGeneric(src, i); ok {
				i = end
				continue
			}
		}
		if strings.HasPrefix(src[i:], "..<") || strings.HasPrefix(src[i:], "...") {
			ops = append(ops, src[i:i+3])
			i += 3
			continue
		}
		if op, ok := matchOperator(src, i); ok {
			ops = append(ops, op)
			i += len(op)
			continue
		}
		i++
	}
	return ops
}
