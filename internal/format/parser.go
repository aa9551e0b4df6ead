package format

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// Result is the outcome of a successful formatting run.
type Result struct {
	Text string
	// Unbalanced holds the source offsets of closing brackets that had no
	// matching opener. The run recovers from them by resetting the context.
	Unbalanced []int
}

// Format reformats src and returns the formatted text.
func Format(src string, opt Options) (string, error) {
	res, err := Run(src, opt)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// Run reformats src and reports tolerated bracket imbalance alongside the text.
func Run(src string, opt Options) (Result, error) {
	opt = opt.withDefaults()
	src = strings.ReplaceAll(src, "\r\n", "\n")
	p := newParser(src, opt)
	if err := p.run(); err != nil {
		return Result{}, err
	}
	return Result{
		Text:       strings.Trim(p.w.String(), " \t\r\n"),
		Unbalanced: p.unbalanced,
	}, nil
}

// parser holds the state of one formatting run. It is never shared.
type parser struct {
	src string
	pos int
	opt Options
	w   *Writer

	ctx   Context
	stack blockStack
	sw    switchState

	// commentAt is the output offset of a line comment on the current line, or -1.
	commentAt int
	// clauses is set while the lines of an "if let"/"guard let" clause list continue.
	clauses bool

	unbalanced []int
}

func newParser(src string, opt Options) *parser {
	return &parser{
		src:       src,
		opt:       opt,
		w:         NewWriter(opt.Unit(), len(src)),
		commentAt: -1,
	}
}

func (p *parser) run() error {
	for p.pos < len(p.src) {
		next, err := p.step()
		if err != nil {
			return err
		}
		p.pos = next
	}
	return nil
}

// step dispatches on the character at the cursor and returns the position of
// the next unconsumed character.
func (p *parser) step() (int, error) {
	c := p.src[p.pos]
	switch c {
	case '+', '*', '%', '>', '|', '=':
		if op, ok := matchOperator(p.src, p.pos); ok {
			return p.spaceWith(op), nil
		}
		return p.addChar(), nil
	case '-':
		return p.minus(), nil
	case '~', '^', '!', '&':
		if op, ok := matchOperator(p.src, p.pos); ok {
			return p.spaceWith(op), nil
		}
		return p.addChar(), nil
	case '.':
		if p.isNext("...") {
			return p.addString("..."), nil
		}
		if p.isNext("..<") {
			return p.addString("..<"), nil
		}
		return p.addChar(), nil
	case '/':
		if p.isNext("//") {
			p.commentAt = p.w.Len()
			return p.addToLineEnd(), nil
		}
		if p.isNext("/*") {
			end, ok := scanBlockComment(p.src, p.pos)
			if !ok {
				return 0, unterminated("block comment", p.pos)
			}
			p.w.WriteString(p.src[p.pos:end])
			return end, nil
		}
		if op, ok := matchOperator(p.src, p.pos); ok {
			return p.spaceWith(op), nil
		}
		return p.addChar(), nil
	case '<':
		if p.isNext("<#") {
			return p.addString("<#"), nil
		}
		if end, ok := scanGeneric(p.src, p.pos); ok {
			p.w.WriteString(p.src[p.pos:end])
			return end, nil
		}
		if op, ok := matchOperator(p.src, p.pos); ok {
			return p.spaceWith(op), nil
		}
		return p.addChar(), nil
	case '?':
		return p.question(), nil
	case ':':
		return p.punctuation(": "), nil
	case ',':
		return p.punctuation(", "), nil
	case '#':
		return p.hash()
	case '"':
		end, ok := scanString(p.src, p.pos)
		if !ok {
			return 0, unterminated("string literal", p.pos)
		}
		p.w.WriteString(p.src[p.pos:end])
		return end, nil
	case '\n':
		return p.newline(), nil
	case ' ', '\t', '\r':
		if last := p.w.Last(); (last != '(' && last != '[') || p.commentNext(p.pos) {
			p.w.Space()
		}
		return p.pos + 1, nil
	case '{', '[', '(':
		return p.open(c), nil
	case '}', ']', ')':
		return p.close(c), nil
	}
	return p.word(), nil
}

func (p *parser) isNext(s string) bool {
	return strings.HasPrefix(p.src[p.pos:], s)
}

func (p *parser) commentNext(pos int) bool {
	return strings.HasPrefix(p.src[skipBlanks(p.src, pos):], "//")
}

func (p *parser) addChar() int {
	_ = p.w.WriteByte(p.src[p.pos])
	return p.pos + 1
}

func (p *parser) addString(s string) int {
	p.w.WriteString(s)
	return p.pos + len(s)
}

// addToLineEnd copies the rest of the line verbatim, leaving the newline for
// the dispatcher.
func (p *parser) addToLineEnd() int {
	end := lineEnd(p.src, p.pos)
	p.w.WriteString(p.src[p.pos:end])
	return end
}

// spaceWith emits op with exactly one space on each side.
func (p *parser) spaceWith(op string) int {
	p.w.Space()
	p.w.WriteString(op)
	_ = p.w.WriteByte(' ')
	return skipBlanks(p.src, p.pos+len(op))
}

// word copies a run of word characters, or a single other character followed
// by such a run.
func (p *parser) word() int {
	_, size := utf8.DecodeRuneInString(p.src[p.pos:])
	end := p.pos + size
	end += len(wordAt(p.src, end))
	tok := p.src[p.pos:end]
	p.w.WriteString(tok)
	if tok == "switch" {
		p.sw.armed = true
	}
	return end
}

func (p *parser) minus() int {
	if op, ok := matchOperator(p.src, p.pos); ok {
		return p.spaceWith(op)
	}
	if p.unaryMinus() {
		return p.addChar()
	}
	return p.spaceWith("-")
}

// unaryMinus reports whether the '-' at the cursor is a sign: it follows a
// keyword that expects an expression or punctuation that starts one, or it
// is the exponent sign of a number literal.
func (p *parser) unaryMinus() bool {
	last := p.w.LastNonSpace()
	if last == 0 {
		return true
	}
	if (p.w.Last() == 'e' || p.w.Last() == 'E') && p.pos+1 < len(p.src) && isDigit(p.src[p.pos+1]) {
		if word := p.w.LastWord(); word != "" && isDigit(word[0]) {
			return true
		}
	}
	if isWordRune(last) {
		return slices.Contains(negativeCheckKeys, p.w.LastWord())
	}
	return strings.ContainsRune(negativeCheckSigns, last)
}

func isDigit(b byte) bool {
	return '0' <= b && b <= '9'
}

// question handles '?': the "??" operator, a ternary, or a postfix optional marker.
func (p *parser) question() int {
	if p.isNext("??") {
		return p.addString("??")
	}
	colon, ok := scanTernary(p.src, p.pos)
	if !ok {
		return p.addChar()
	}
	p.w.Space()
	p.w.WriteString("? ")
	p.w.WriteString(strings.TrimSpace(p.src[p.pos+1 : colon]))
	p.w.WriteString(" : ")
	return skipBlanks(p.src, colon+1)
}

// punctuation emits ':' or ',' with no space before and one after.
func (p *parser) punctuation(s string) int {
	if !p.w.AtLineStart() {
		p.w.TrimRight()
	}
	p.w.WriteString(s)
	return skipBlanks(p.src, p.pos+1)
}

// trimWithIndent removes trailing blanks and, when that leaves the cursor at
// the start of a line, re-indents it for the current context.
func (p *parser) trimWithIndent(ignoreTemp bool) {
	p.w.TrimRight()
	if p.w.Len() > 0 && p.w.Last() != '\n' {
		return
	}
	if ignoreTemp {
		p.w.Indent(max(p.ctx.Indent, 0))
		return
	}
	p.w.Indent(p.ctx.Level())
}

func (p *parser) hash() (int, error) {
	switch {
	case p.directive("#if"):
		p.ctx.Indent++
		return p.addToLineEnd(), nil
	case p.directive("#elseif"), p.directive("#else"):
		p.ctx.Indent--
		p.trimWithIndent(false)
		p.ctx.Indent++
		return p.addToLineEnd(), nil
	case p.directive("#endif"):
		p.ctx.Indent = max(p.ctx.Indent-1, 0)
		p.trimWithIndent(false)
		return p.addToLineEnd(), nil
	case p.isNext("#>"):
		return p.addString("#>"), nil
	case p.isNext("#!"):
		return p.addToLineEnd(), nil
	}
	if end, ok, closed := scanRawString(p.src, p.pos); ok {
		if !closed {
			return 0, unterminated("string literal", p.pos)
		}
		p.w.WriteString(p.src[p.pos:end])
		return end, nil
	}
	return p.word(), nil
}

// directive reports whether the cursor sits on the directive name, not on a
// longer word that starts with it.
func (p *parser) directive(name string) bool {
	if !p.isNext(name) {
		return false
	}
	end := p.pos + len(name)
	return end >= len(p.src) || !isWordByte(p.src[end])
}

func (p *parser) open(c byte) int {
	bt := blockTypeOf(c)
	inline := !brokenAfter(p.src, p.pos+1)
	blk := Block{Saved: p.ctx, Inline: inline, Opens: bt, Clause: p.clauses}
	offset := 0
	if inline {
		blk.IndentCount = p.w.Column()
		offset = blk.IndentCount - lineWidth([]byte(strings.Repeat(p.w.unit, p.ctx.Level())))
	}
	if c == '{' && p.sw.armed {
		blk.SwitchBody = true
		p.sw.armed = false
	}
	p.stack.push(blk)
	p.ctx = p.ctx.Open(bt, offset)

	if c != '{' {
		return p.addChar()
	}
	p.sw.open(blk.SwitchBody)
	if last := p.w.Last(); last != '(' && last != '[' {
		p.w.Space()
	}
	p.w.WriteString("{ ")
	return p.pos + 1
}

func (p *parser) close(c byte) int {
	blk, ok := p.stack.pop()
	if ok {
		p.ctx = blk.Saved
	} else {
		p.ctx = Context{}
		p.unbalanced = append(p.unbalanced, p.pos)
		if p.opt.OnUnbalanced != nil {
			p.opt.OnUnbalanced(p.pos)
		}
	}

	if c != '}' {
		p.trimWithIndent(false)
		return p.addChar()
	}
	if p.sw.active() {
		p.sw.close()
	}
	// A brace closing a clause list lines up with its "if"/"guard", any
	// other brace with the line that opened the block.
	p.trimWithIndent(blk.Clause)
	p.w.Space()
	next := p.pos + 1
	if isLetterAt(p.src, next) {
		p.w.WriteString("} ")
	} else {
		p.w.WriteString("}")
	}
	return next
}

// newline finishes the current line and indents the next one.
func (p *parser) newline() int {
	p.w.TrimRight()

	codeEnd := p.w.Len()
	if p.commentAt >= 0 {
		codeEnd = p.commentAt
	}
	last := p.w.lastCodeRune(codeEnd)
	finished := p.w.CurrentLine()

	start := p.pos + 1
	first := skipBlanks(p.src, start)
	var next rune
	if first < len(p.src) {
		next, _ = utf8.DecodeRuneInString(p.src[first:])
		if next == '\n' {
			next = 0
		}
	}
	p.ctx.TempIndent = decideContinuation(last, next, p.ctx.Bracket, p.sw.active())

	if p.ctx.TempIndent == 0 {
		p.clauses = false
	} else if conditionPair(finished) {
		p.clauses = true
	}

	_ = p.w.WriteByte('\n')
	p.commentAt = -1
	if strings.HasPrefix(p.src[start:], "//") {
		return start
	}
	p.indentLine(wordAt(p.src, first))
	return first
}

// indentLine writes the indentation of a fresh line whose first word is word.
func (p *parser) indentLine(word string) {
	top, hasTop := p.stack.top()
	if hasTop && top.aligns() {
		p.w.Indent(top.Saved.Level())
		p.w.Pad(top.IndentCount + 1)
		return
	}

	level := p.ctx.Level()
	switch {
	case p.clauses:
		level++
	case word == "else":
		level++
	case (word == "case" || word == "default") && hasTop && top.SwitchBody:
		level = max(level-1, 0)
	}
	p.w.Indent(level)
}
