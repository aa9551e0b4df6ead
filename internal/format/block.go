package format

// BlockType is the kind of the innermost open bracket.
type BlockType uint8

const (
	Curly BlockType = iota
	Parenthesis
	Square
)

func (b BlockType) String() string {
	switch b {
	case Parenthesis:
		return "paren"
	case Square:
		return "square"
	default:
		return "curly"
	}
}

func blockTypeOf(c byte) BlockType {
	switch c {
	case '(', ')':
		return Parenthesis
	case '[', ']':
		return Square
	default:
		return Curly
	}
}

// Context is the indentation state in effect at one nesting level. The block
// stack saves one per open bracket and restores it when the bracket closes.
type Context struct {
	Indent     int
	TempIndent int
	Bracket    BlockType
}

// Open returns the context inside a bracket of type bt opened from c. offset
// is the width of the text in front of the bracket past the line's
// indentation; zero means the bracket is followed by a line break or starts
// the line.
func (c Context) Open(bt BlockType, offset int) Context {
	next := c
	next.Bracket = bt
	if bt == Parenthesis {
		if offset <= 0 {
			next.TempIndent = 1
		}
		next.Indent += next.TempIndent
		return next
	}
	next.Indent += c.TempIndent + 1
	return next
}

// Level returns the number of indent units for a line in this context.
func (c Context) Level() int {
	return max(c.Indent+c.TempIndent, 0)
}

// Block is the snapshot pushed for an opening bracket.
type Block struct {
	Saved       Context   // context of the enclosing level
	IndentCount int       // column of the opening bracket; 0 when broken
	Inline      bool      // content follows the bracket on the same line
	Opens       BlockType // bracket that opened this block
	SwitchBody  bool      // the '{' of a switch statement
	Clause      bool      // opened on a line of an "if let"/"guard let" clause list
}

// aligns reports whether continuation lines inside the block line up with
// the column after the opening bracket.
func (b Block) aligns() bool {
	return b.Inline && b.Opens != Curly
}

// blockStack is the LIFO history of open brackets.
type blockStack []Block

func (s *blockStack) push(b Block) {
	*s = append(*s, b)
}

func (s *blockStack) pop() (Block, bool) {
	n := len(*s)
	if n == 0 {
		return Block{}, false
	}
	b := (*s)[n-1]
	*s = (*s)[:n-1]
	return b, true
}

func (s blockStack) top() (Block, bool) {
	if len(s) == 0 {
		return Block{}, false
	}
	return s[len(s)-1], true
}

// switchState tracks whether the cursor is inside a switch body and how many
// curly levels deep.
type switchState struct {
	armed bool // the word "switch" was seen and its '{' is pending
	depth int
}

func (s *switchState) open(body bool) {
	if body || s.depth > 0 {
		s.depth++
	}
}

func (s *switchState) close() {
	if s.depth > 0 {
		s.depth--
	}
}

func (s switchState) active() bool {
	return s.depth > 0
}
