package format

import "strings"

// Options controls the layout of a single formatting run.
type Options struct {
	IndentWidth int
	UseTabs     bool

	// OnUnbalanced, when set, receives the source offset of every closing
	// bracket that had no matching opener.
	OnUnbalanced func(offset int)
}

func (o Options) withDefaults() Options {
	if o.IndentWidth <= 0 {
		o.IndentWidth = 4
	}
	return o
}

// Unit returns the text emitted for one indentation level.
func (o Options) Unit() string {
	o = o.withDefaults()
	if o.UseTabs {
		return "\t"
	}
	return strings.Repeat(" ", o.IndentWidth)
}
