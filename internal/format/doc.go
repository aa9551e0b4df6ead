// Package format is a single-pass reformatter for brace-delimited source text.
//
// It does not build a syntax tree. A dispatcher walks the input one character at
// a time, lookahead scanners consume compound constructs (string literals,
// comments, generic argument lists, ternaries, preprocessor lines) as atomic
// units, and a small indentation machine decides the indent of every new line
// from the bracket nesting, the tokens at the line boundary and the switch/case
// context.
//
// Назначение: нормализация отступов и пробелов вокруг операторов.
// Не делает: проверку синтаксиса, семантику, IO.
// Зависимости: только github.com/mattn/go-runewidth для ширины колонок.
package format
