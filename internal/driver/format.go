package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"swimat/internal/format"
	"swimat/internal/observ"
	"swimat/internal/source"
	"swimat/internal/trace"
)

// FormatOptions configures a formatting run. At most one of Check, Stdout and
// Diff may be set; with none of them changed files are rewritten in place.
type FormatOptions struct {
	Check   bool
	Stdout  bool
	Diff    bool
	Options format.Options

	// Jobs bounds the number of files formatted concurrently; <= 0 means
	// GOMAXPROCS.
	Jobs int
	// Extensions filters files found while walking directories.
	Extensions []string
	// Exclude lists file and directory names skipped while walking.
	Exclude []string

	Cache    *Cache
	Progress ProgressSink
	Timer    *observ.Timer
}

var defaultExtensions = []string{".swift"}

func (o FormatOptions) validate() error {
	n := 0
	for _, set := range []bool{o.Check, o.Stdout, o.Diff} {
		if set {
			n++
		}
	}
	if n > 1 {
		return errors.New("format: check, stdout and diff modes are mutually exclusive")
	}
	return nil
}

func (o FormatOptions) rewrites() bool {
	return !o.Check && !o.Stdout && !o.Diff
}

// FormatResult captures the result of formatting a single file.
type FormatResult struct {
	Path    string
	Changed bool
	// Cached is set when the cache proved the file formatted and the engine
	// did not run.
	Cached    bool
	Err       error
	Formatted []byte // Stdout mode and FormatReader
	Diff      string // Diff mode
	// Unbalanced lists closing brackets that had no opener.
	Unbalanced []source.LineCol
}

// FileError is a formatting failure located in a source file.
type FileError struct {
	Path string
	Pos  source.LineCol
	Line string // source line holding Pos
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Pos.Line, e.Pos.Col, e.Message())
}

// Message describes the failure without its location.
func (e *FileError) Message() string {
	var ferr *format.Error
	if errors.As(e.Err, &ferr) {
		return "unterminated " + ferr.What
	}
	return e.Err.Error()
}

func (e *FileError) Unwrap() error { return e.Err }

// FormatPaths formats provided files or directories (recursively collecting
// files with a matching extension). When opts.Check is true, files are not
// modified; Changed indicates whether formatting would update the file
// contents. Stdout and Diff return the formatted content or a unified diff
// without touching files on disk. Per-file failures land in FormatResult.Err;
// the returned error is reserved for failures of the run itself.
func FormatPaths(ctx context.Context, paths []string, opts FormatOptions) ([]FormatResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = defaultExtensions
	}

	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID

	collectSpan := trace.Begin(tracer, trace.ScopePass, "collect", parent)
	phase := opts.Timer.Begin("collect")
	files, err := collectSourceFiles(ctx, paths, exts, opts.Exclude)
	opts.Timer.End(phase, fmt.Sprintf("%d files", len(files)))
	collectSpan.WithExtra("files", strconv.Itoa(len(files))).End("")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("format: no source files found")
	}

	for _, path := range files {
		opts.Progress.emit(path, StatusQueued)
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	formatSpan := trace.Begin(tracer, trace.ScopePass, "format", parent)
	phase = opts.Timer.Begin("format")

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]FormatResult, len(files))
	var busy atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			results[i] = formatFile(gctx, path, opts, formatSpan.ID())
			busy.Add(int64(time.Since(start)))
			return nil
		})
	}
	err = g.Wait()

	changed, failed := 0, 0
	for _, res := range results {
		switch {
		case res.Err != nil:
			failed++
		case res.Changed:
			changed++
		}
	}
	opts.Timer.End(phase, fmt.Sprintf("%d changed, %d failed", changed, failed))
	opts.Timer.Add("format (cpu)", time.Duration(busy.Load()), fmt.Sprintf("%d jobs", jobs))
	formatSpan.
		WithExtra("changed", strconv.Itoa(changed)).
		WithExtra("failed", strconv.Itoa(failed)).
		End("")

	if err != nil {
		return nil, err
	}
	return results, nil
}

func formatFile(ctx context.Context, path string, opts FormatOptions, parent uint64) FormatResult {
	res := FormatResult{Path: path}
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeFile, "file:"+path, parent)
	opts.Progress.emit(path, StatusWorking)

	status := StatusError
	defer func() {
		span.WithExtra("status", status.String()).End("")
		opts.Progress.emit(path, status)
	}()

	f, err := source.Load(path)
	if err != nil {
		res.Err = err
		return res
	}
	span.WithExtra("bytes", strconv.Itoa(len(f.Content)))

	out, err := formatSource(ctx, f, opts, span.ID())
	if err != nil {
		res.Err = err
		return res
	}
	res.Changed = out.changed
	res.Cached = out.cached
	res.Unbalanced = out.unbalanced
	if len(out.unbalanced) > 0 {
		span.WithExtra("unbalanced", strconv.Itoa(len(out.unbalanced)))
	}

	switch {
	case opts.Stdout:
		res.Formatted = out.formatted
	case opts.Diff:
		res.Diff, err = unifiedDiff(path, f.Content, out.formatted)
		if err != nil {
			res.Err = err
			return res
		}
	case opts.rewrites() && out.changed:
		mode := os.FileMode(0o644)
		if info, statErr := os.Stat(path); statErr == nil {
			mode = info.Mode()
		}
		if err := os.WriteFile(path, out.formatted, mode.Perm()); err != nil {
			res.Err = err
			return res
		}
		// свежезаписанное содержимое уже отформатировано
		_ = opts.Cache.MarkFormatted(path, out.formatted, opts.Options)
	}
	if !out.changed && !out.cached {
		_ = opts.Cache.MarkFormatted(path, f.Content, opts.Options)
	}

	switch {
	case out.cached:
		status = StatusCached
	case out.changed:
		status = StatusChanged
	default:
		status = StatusUnchanged
	}
	return res
}

// FormatReader formats a single input stream, e.g. stdin. name labels the
// input in errors. The formatted text is always returned in Formatted; a
// formatting failure is reported in FormatResult.Err, a read failure as the
// returned error.
func FormatReader(ctx context.Context, r io.Reader, name string, opts FormatOptions) (FormatResult, error) {
	if err := opts.validate(); err != nil {
		return FormatResult{}, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return FormatResult{}, fmt.Errorf("read %s: %w", name, err)
	}
	f, err := source.FromBytes(name, data)
	if err != nil {
		return FormatResult{}, err
	}

	span := trace.Begin(trace.FromContext(ctx), trace.ScopeFile, "file:"+name, trace.CurrentSpan(ctx).SpanID)
	defer span.End("")

	// stdin is never looked up in the cache
	opts.Cache = nil
	res := FormatResult{Path: name}
	out, err := formatSource(ctx, f, opts, span.ID())
	if err != nil {
		res.Err = err
		return res, nil
	}
	res.Changed = out.changed
	res.Formatted = out.formatted
	res.Unbalanced = out.unbalanced
	if opts.Diff {
		if res.Diff, err = unifiedDiff(name, f.Content, out.formatted); err != nil {
			res.Err = err
		}
	}
	return res, nil
}

type outcome struct {
	formatted  []byte
	changed    bool
	cached     bool
	unbalanced []source.LineCol
}

func formatSource(ctx context.Context, f *source.File, opts FormatOptions, spanID uint64) (outcome, error) {
	if opts.Cache.Has(CacheKey(f.Hash, opts.Options)) {
		return outcome{formatted: f.Content, cached: true}, nil
	}

	res, err := format.Run(string(f.Content), opts.Options)
	if err != nil {
		var ferr *format.Error
		if errors.As(err, &ferr) {
			pos := f.Position(ferr.Offset)
			return outcome{}, &FileError{Path: f.Path, Pos: pos, Line: f.GetLine(pos.Line), Err: err}
		}
		return outcome{}, fmt.Errorf("%s: %w", f.Path, err)
	}

	out := outcome{formatted: withFinalNewline(res.Text)}
	tracer := trace.FromContext(ctx)
	for _, off := range res.Unbalanced {
		pos := f.Position(off)
		out.unbalanced = append(out.unbalanced, pos)
		trace.Point(tracer, trace.ScopeFile, "unbalanced", spanID,
			fmt.Sprintf("%s:%d:%d", f.Path, pos.Line, pos.Col), nil)
	}
	out.changed = f.Normalized() || !bytes.Equal(f.Content, out.formatted)
	return out, nil
}

// withFinalNewline terminates non-empty output with exactly one newline.
func withFinalNewline(text string) []byte {
	if text == "" {
		return []byte{}
	}
	out := make([]byte, 0, len(text)+1)
	out = append(out, text...)
	return append(out, '\n')
}
