package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"swimat/internal/driver"
	"swimat/internal/project"
	"swimat/internal/source"
)

var caretColor = color.New(color.FgRed, color.Bold)

// fmtPrinter renders formatting results for the terminal or as JSON.
type fmtPrinter struct {
	out     io.Writer
	errOut  io.Writer
	quiet   bool
	mode    string
	baseDir string
}

func newFmtPrinter(cmd *cobra.Command, args []string, mode string, quiet bool) *fmtPrinter {
	p := &fmtPrinter{
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
		quiet:  quiet,
		mode:   mode,
	}
	if mode == "relative" {
		// относительные пути считаем от корня проекта, если он найден
		if root, ok, err := project.FindProjectRoot(args[0]); err == nil && ok {
			p.baseDir = root
		}
	}
	return p
}

func (p *fmtPrinter) path(path string) string {
	if path == stdinName {
		return path
	}
	return source.DisplayPath(path, p.mode, p.baseDir)
}

// describe returns the one-line error for res.
func (p *fmtPrinter) describe(res driver.FormatResult) string {
	var fileErr *driver.FileError
	if errors.As(res.Err, &fileErr) {
		return fmt.Sprintf("%s:%d:%d: %s", p.path(fileErr.Path), fileErr.Pos.Line, fileErr.Pos.Col, fileErr.Message())
	}
	return fmt.Sprintf("%s: %v", p.path(res.Path), res.Err)
}

func (p *fmtPrinter) failure(res driver.FormatResult) {
	fmt.Fprintf(p.errOut, "fmt: %s\n", p.describe(res))
	var fileErr *driver.FileError
	if p.quiet || !errors.As(res.Err, &fileErr) || fileErr.Line == "" {
		return
	}
	fmt.Fprintf(p.errOut, "    %s\n    %s%s\n", fileErr.Line, caretPad(fileErr.Line, fileErr.Pos.Col), caretColor.Sprint("^"))
}

// caretPad returns the blanks that put a caret under column col (1-based) of
// line, keeping tabs so the caret lines up in a terminal.
func caretPad(line string, col uint32) string {
	var sb strings.Builder
	n := uint32(1)
	for _, r := range line {
		if n >= col {
			break
		}
		n += uint32(utf8.RuneLen(r)) // #nosec G115 -- at most 4
		if r == '\t' {
			sb.WriteByte('\t')
			continue
		}
		sb.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return sb.String()
}

func (p *fmtPrinter) unbalanced(results []driver.FormatResult) {
	for _, res := range results {
		for _, pos := range res.Unbalanced {
			fmt.Fprintf(p.errOut, "%s %s:%d:%d: closing bracket without an opener\n",
				warnColor.Sprint("warning:"), p.path(res.Path), pos.Line, pos.Col)
		}
	}
}

func (p *fmtPrinter) stdout(results []driver.FormatResult) (hasErrors bool) {
	for _, res := range results {
		if res.Err != nil {
			hasErrors = true
			p.failure(res)
			continue
		}
		_, _ = p.out.Write(res.Formatted)
	}
	return hasErrors
}

func (p *fmtPrinter) diff(results []driver.FormatResult) (hasErrors bool) {
	for _, res := range results {
		if res.Err != nil {
			hasErrors = true
			p.failure(res)
			continue
		}
		_, _ = io.WriteString(p.out, res.Diff)
	}
	return hasErrors
}

func (p *fmtPrinter) text(results []driver.FormatResult, check bool) (hasErrors, hasChanges bool) {
	for _, res := range results {
		if res.Err != nil {
			hasErrors = true
			p.failure(res)
			continue
		}

		if check {
			if res.Changed {
				hasChanges = true
				if !p.quiet {
					_, printErr := fmt.Fprintln(p.out, p.path(res.Path))
					if printErr != nil {
						panic(printErr)
					}
				}
			}
			continue
		}

		if res.Changed && !p.quiet {
			_, printErr := fmt.Fprintf(p.out, "reformatted %s\n", p.path(res.Path))
			if printErr != nil {
				panic(printErr)
			}
		}
	}
	return hasErrors, hasChanges
}

type jsonPosition struct {
	Line uint32 `json:"line"`
	Col  uint32 `json:"col"`
}

func (p *fmtPrinter) json(results []driver.FormatResult, check bool) error {
	type jsonResult struct {
		Path       string         `json:"path"`
		Changed    bool           `json:"changed"`
		Cached     bool           `json:"cached,omitempty"`
		Error      string         `json:"error,omitempty"`
		CheckRun   bool           `json:"check"`
		Diff       string         `json:"diff,omitempty"`
		Unbalanced []jsonPosition `json:"unbalanced,omitempty"`
	}

	payload := make([]jsonResult, 0, len(results))
	for _, res := range results {
		jr := jsonResult{
			Path:     p.path(res.Path),
			Changed:  res.Changed,
			Cached:   res.Cached,
			CheckRun: check,
			Diff:     res.Diff,
		}
		if res.Err != nil {
			jr.Error = p.describe(res)
		}
		for _, pos := range res.Unbalanced {
			jr.Unbalanced = append(jr.Unbalanced, jsonPosition{Line: pos.Line, Col: pos.Col})
		}
		payload = append(payload, jr)
	}

	encoder := json.NewEncoder(p.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func summarize(results []driver.FormatResult) (hasErrors, hasChanges bool) {
	for _, res := range results {
		if res.Err != nil {
			hasErrors = true
		} else if res.Changed {
			hasChanges = true
		}
	}
	return hasErrors, hasChanges
}
